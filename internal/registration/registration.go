// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package registration defines the registration record and the presence
// checks applied to it before it reaches the store.
package registration

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrMissingFields is returned (wrapped in a *ValidationError) when one or
// more required fields are empty after trimming.
var ErrMissingFields = errors.New("all fields are required")

// Registration holds the nine user-supplied fields of a record.
// Dates, emails and document numbers are opaque strings; only presence is checked.
type Registration struct {
	Nombres         string `form:"nombres" validate:"required"`
	Apellidos       string `form:"apellidos" validate:"required"`
	FechaNacimiento string `form:"fecha_nacimiento" validate:"required"`
	Sexo            string `form:"sexo" validate:"required"`
	Pais            string `form:"pais" validate:"required"`
	TipoDocumento   string `form:"tipo_documento" validate:"required"`
	NumeroDocumento string `form:"numero_documento" validate:"required"`
	Correo          string `form:"correo" validate:"required"`
	Departamento    string `form:"departamento" validate:"required"`
}

// Record is a stored registration.
type Record struct {
	ID int64
	Registration
	CreatedAt time.Time
}

// Columns lists the user-supplied column names in insert order.
var Columns = []string{
	"nombres",
	"apellidos",
	"fecha_nacimiento",
	"sexo",
	"pais",
	"tipo_documento",
	"numero_documento",
	"correo",
	"departamento",
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("form")
	})
}

// FromForm builds a Registration from submitted form values, trimming each field.
// Missing keys become empty strings.
func FromForm(values url.Values) Registration {
	return Registration{
		Nombres:         strings.TrimSpace(values.Get("nombres")),
		Apellidos:       strings.TrimSpace(values.Get("apellidos")),
		FechaNacimiento: strings.TrimSpace(values.Get("fecha_nacimiento")),
		Sexo:            strings.TrimSpace(values.Get("sexo")),
		Pais:            strings.TrimSpace(values.Get("pais")),
		TipoDocumento:   strings.TrimSpace(values.Get("tipo_documento")),
		NumeroDocumento: strings.TrimSpace(values.Get("numero_documento")),
		Correo:          strings.TrimSpace(values.Get("correo")),
		Departamento:    strings.TrimSpace(values.Get("departamento")),
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Registration) Trimmed() Registration {
	return FromForm(r.Values())
}

// Values returns the fields keyed by column name.
func (r Registration) Values() url.Values {
	v := make(url.Values, len(Columns))
	for i, value := range r.Args() {
		v.Set(Columns[i], value.(string))
	}
	return v
}

// Args returns the fields in Columns order, ready to bind to an insert statement.
func (r Registration) Args() []any {
	return []any{
		r.Nombres,
		r.Apellidos,
		r.FechaNacimiento,
		r.Sexo,
		r.Pais,
		r.TipoDocumento,
		r.NumeroDocumento,
		r.Correo,
		r.Departamento,
	}
}

// Validate reports every required field that is empty.
// Whitespace-only values count as empty.
func (r Registration) Validate() error {
	err := validate.Struct(r.Trimmed())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate registration: %w", err)
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return &ValidationError{Fields: missing}
}

// ValidationError lists the columns that failed the presence check.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: missing %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrMissingFields
}

// Fields returns the record as a column-name-to-value mapping, including id and created_at.
func (r Record) Fields() map[string]string {
	m := make(map[string]string, len(Columns)+2)
	for column, values := range r.Values() {
		m[column] = values[0]
	}
	m["id"] = strconv.FormatInt(r.ID, 10)
	m["created_at"] = r.CreatedAt.Format(time.DateTime)
	return m
}
