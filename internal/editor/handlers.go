package editor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/invoice-generator/internal/common"
	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/render"
	"github.com/noah-isme/invoice-generator/internal/resilience"
)

// Handler wires the editor service to HTTP.
type Handler struct {
	Svc       *Service
	Pages     *render.HTML
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// Middlewares holds optional per-route middleware.
type Middlewares struct {
	// Idempotency guards item creation.
	Idempotency func(http.Handler) http.Handler
	// ExportLimit guards the PDF download.
	ExportLimit func(http.Handler) http.Handler
}

// Routes registers the pages and the JSON API on r.
func (h *Handler) Routes(r chi.Router, mw Middlewares) {
	r.Get("/", h.EditorPage)
	r.Get("/preview", h.PreviewFragment)
	r.Get("/print", h.PrintPage)
	r.With(orPassthrough(mw.ExportLimit)).Get("/export.pdf", h.ExportPDF)

	r.Route("/api/v1/invoice", func(api chi.Router) {
		api.Get("/", h.Get)
		api.Patch("/fields", h.UpdateField)
		api.Put("/adjustments/{target}", h.UpdateAdjustment)
		api.With(orPassthrough(mw.Idempotency)).Post("/items", h.AddItem)
		api.Patch("/items/{id}", h.UpdateItem)
		api.Delete("/items/{id}", h.RemoveItem)
		api.Post("/reset", h.Reset)
	})
}

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

func (h *Handler) validate() *validator.Validate {
	if h.Validator != nil {
		return h.Validator
	}
	return defaultValidator
}

func sessionID(r *http.Request) string {
	id, _ := common.SessionID(r.Context())
	return id
}

// EditorPage renders the form with the live preview.
func (h *Handler) EditorPage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Document(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeHTML(w, r, func(buf *bytes.Buffer) error {
		return h.Pages.Editor(buf, snap.Document, snap.Totals)
	})
}

// PreviewFragment renders only the invoice preview.
func (h *Handler) PreviewFragment(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Document(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeHTML(w, r, func(buf *bytes.Buffer) error {
		return h.Pages.Preview(buf, snap.Document, snap.Totals)
	})
}

// PrintPage renders the preview alone and opens the browser print dialog.
func (h *Handler) PrintPage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Document(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeHTML(w, r, func(buf *bytes.Buffer) error {
		return h.Pages.Print(buf, snap.Document, snap.Totals)
	})
}

// ExportPDF downloads the document as a PDF.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	export, err := h.Svc.ExportPDF(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "application/pdf")
	headers.Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	headers.Set("Content-Length", strconv.Itoa(len(export.Data)))
	headers.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

// Get returns the document with its totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Document(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, newSnapshotResponse(snap))
}

// UpdateField replaces one free-text field.
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var payload fieldPayload
	if err := h.decode(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	field, err := invoice.ParseTextField(payload.Field)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	value := string(payload.Value)
	switch {
	case field.IsDate():
		value = strings.TrimSpace(value)
		if err := h.validate().Var(value, "omitempty,datetime="+invoice.DateLayout); err != nil {
			h.writeError(w, r, errBadPayload("date must use YYYY-MM-DD", map[string]string{payload.Field: "datetime"}))
			return
		}
	case field.IsEmail():
		value = strings.TrimSpace(value)
	}
	snap, err := h.Svc.ApplyChange(r.Context(), sessionID(r), invoice.TextChange{Field: field, Value: value})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, newSnapshotResponse(snap))
}

// UpdateAdjustment changes the discount or tax amount and/or unit.
func (h *Handler) UpdateAdjustment(w http.ResponseWriter, r *http.Request) {
	target, err := invoice.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var payload adjustmentPayload
	if err := h.decode(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	var changes []invoice.Change
	if payload.Amount != nil {
		changes = append(changes, invoice.AdjustmentAmountChange{Target: target, Value: invoice.ParseAmount(string(*payload.Amount))})
	}
	if payload.Unit != nil {
		unit, err := invoice.ParseUnit(*payload.Unit)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		changes = append(changes, invoice.AdjustmentUnitChange{Target: target, Unit: unit})
	}
	if len(changes) == 0 {
		h.writeError(w, r, errBadPayload("amount or unit is required", nil))
		return
	}
	snap, err := h.Svc.ApplyChanges(r.Context(), sessionID(r), changes...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, newSnapshotResponse(snap))
}

// AddItem appends a default line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	item, snap, err := h.Svc.AddItem(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, newItemResponse(item, snap))
}

// UpdateItem changes the description, quantity or unit price of a line item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var payload fieldPayload
	if err := h.decode(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	change, err := invoice.ParseItemChange(payload.Field, string(payload.Value))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, snap, err := h.Svc.UpdateItem(r.Context(), sessionID(r), chi.URLParam(r, "id"), change)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, newItemResponse(item, snap))
}

// RemoveItem deletes a line item unless it is the last one.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.RemoveItem(r.Context(), sessionID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, newSnapshotResponse(snap))
}

// Reset discards the session document and starts over.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Reset(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, newSnapshotResponse(snap))
}

func (h *Handler) writeHTML(w http.ResponseWriter, r *http.Request, fn func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func errBadPayload(message string, details map[string]string) error {
	if len(details) == 0 {
		return common.BadRequest(message)
	}
	return common.BadRequest(message).WithDetails(details)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var exportErr *ExportError
	switch {
	case errors.Is(err, invoice.ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "line item not found", nil)
	case errors.Is(err, ErrLastItem):
		common.JSONError(w, http.StatusConflict, "LAST_ITEM", err.Error(), nil)
	case errors.Is(err, invoice.ErrUnknownField),
		errors.Is(err, invoice.ErrUnknownItemField),
		errors.Is(err, invoice.ErrUnknownTarget),
		errors.Is(err, invoice.ErrUnknownUnit):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.As(err, &exportErr):
		common.JSONError(w, http.StatusInternalServerError, "EXPORT_FAILED", "PDF tidak dapat dibuat, silakan coba lagi", nil)
	case errors.Is(err, resilience.ErrOpenCircuit):
		common.JSONError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "session storage is unavailable, try again shortly", nil)
	case errors.Is(err, context.DeadlineExceeded):
		common.JSONError(w, http.StatusServiceUnavailable, "SESSION_BUSY", "session is busy, try again", nil)
	default:
		if _, ok := common.AsAppError(err); !ok {
			h.Logger.Error().Ctx(r.Context()).Err(err).Str("path", r.URL.Path).Msg("editor request failed")
		}
		common.WriteError(w, err)
	}
}
