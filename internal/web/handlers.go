// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mdhender/registro/internal/registration"
)

const (
	flashOK    = "ok"
	flashError = "error"

	msgSaved         = "Registro guardado correctamente ✅"
	msgMissingFields = "Todos los campos son obligatorios."
)

type flash struct {
	Category string
	Message  string
}

type formPage struct {
	Flashes []flash
	Datos   registration.Registration
}

type listPage struct {
	Flashes []flash
	Datos   []registration.Record
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/registro", http.StatusFound)
}

func (h *Handler) handleRegistroForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.formTemplate, formPage{Flashes: h.popFlashes(w, r)})
}

func (h *Handler) handleRegistroSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "invalid registro form",
			"request_id", middleware.GetReqID(ctx),
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	datos := registration.FromForm(r.PostForm)
	if err := datos.Validate(); err != nil {
		var verr *registration.ValidationError
		if !errors.As(err, &verr) {
			h.serverError(w, r, err)
			return
		}
		h.metrics.IncrementValidationFailures()
		h.logger.InfoContext(ctx, "registro rejected",
			"request_id", middleware.GetReqID(ctx),
			"missing", verr.Fields,
		)
		page := formPage{
			Flashes: append(h.popFlashes(w, r), flash{Category: flashError, Message: msgMissingFields}),
			Datos:   datos,
		}
		h.render(w, r, h.formTemplate, page)
		return
	}

	id, err := h.store.Insert(ctx, datos)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.metrics.IncrementRegistrationsCreated()
	h.logger.InfoContext(ctx, "registro saved",
		"request_id", middleware.GetReqID(ctx),
		"id", id,
	)

	if err := h.addFlash(w, r, flashOK, msgSaved); err != nil {
		// the row is already committed
		h.logger.WarnContext(ctx, "failed to save flash", "error", err)
	}
	http.Redirect(w, r, "/registro", http.StatusFound)
}

func (h *Handler) handleListado(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, h.listTemplate, listPage{
		Flashes: h.popFlashes(w, r),
		Datos:   records,
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Version string `json:"version"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Backend: h.store.Backend(), Version: h.version}
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// render executes tmpl into a buffer so a template failure still yields a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// serverError logs err and answers with a generic 500.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	// Get returns a fresh session alongside the error when the cookie is stale or forged.
	sess, _ := h.sessions.Get(r, sessionName)
	sess.AddFlash(message, category)
	return sess.Save(r, w)
}

// popFlashes consumes pending flash messages, oldest first within each category.
func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []flash {
	sess, _ := h.sessions.Get(r, sessionName)

	var out []flash
	for _, category := range []string{flashOK, flashError} {
		for _, v := range sess.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := sess.Save(r, w); err != nil {
			h.logger.WarnContext(r.Context(), "failed to clear flashes", "error", err)
		}
	}
	return out
}
