package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/lock"
	"github.com/noah-isme/invoice-generator/internal/obs"
	"github.com/noah-isme/invoice-generator/internal/render"
	"github.com/noah-isme/invoice-generator/internal/session"
)

var (
	// ErrLastItem is returned when removing the only remaining line item.
	ErrLastItem = errors.New("the last line item cannot be removed")
	// ErrNoSession is returned when a call carries no session id.
	ErrNoSession = errors.New("editor: session id required")
)

// ExportError wraps a failed PDF export.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string { return "export pdf: " + e.Err.Error() }

func (e *ExportError) Unwrap() error { return e.Err }

// Snapshot is the document state after an operation with its derived totals.
type Snapshot struct {
	Document *invoice.Document `json:"document"`
	Totals   invoice.Totals    `json:"totals"`
}

// Export is a rendered PDF ready for download.
type Export struct {
	Filename string
	Data     []byte
}

// Renderer turns a document into PDF bytes.
type Renderer func(doc *invoice.Document, totals invoice.Totals) ([]byte, error)

// Service applies edits to session documents. Calls for the same session are
// serialized through Locker so every edit sees the result of the previous one.
type Service struct {
	Store   session.Store
	Locker  lock.Locker
	Render  Renderer
	Now     func() time.Time
	LockTTL time.Duration
	Logger  zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return 10 * time.Second
	}
	return s.LockTTL
}

func (s *Service) renderer() Renderer {
	if s.Render != nil {
		return s.Render
	}
	return render.PDFBytes
}

func snapshot(doc *invoice.Document) Snapshot {
	return Snapshot{Document: doc, Totals: doc.Totals()}
}

// load returns the session document, creating and storing a fresh one when
// the session has none. Callers hold the session lock.
func (s *Service) load(ctx context.Context, sid string) (*invoice.Document, error) {
	doc, ok, err := s.Store.Load(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("load session document: %w", err)
	}
	if ok {
		return doc, nil
	}
	doc = invoice.New(s.now())
	if err := s.Store.Save(ctx, sid, doc); err != nil {
		return nil, fmt.Errorf("save new session document: %w", err)
	}
	obs.ObserveSessionCreated()
	s.Logger.Debug().Str("session_id", sid).Msg("invoice created")
	return doc, nil
}

// mutate runs fn on the session document under the session lock and saves the
// result unless fn fails.
func (s *Service) mutate(ctx context.Context, sid string, fn func(doc *invoice.Document) error) (Snapshot, error) {
	if sid == "" {
		return Snapshot{}, ErrNoSession
	}
	var snap Snapshot
	err := s.Locker.WithLock(ctx, "invoice:"+sid, s.lockTTL(), func(ctx context.Context) error {
		doc, err := s.load(ctx, sid)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		if err := s.Store.Save(ctx, sid, doc); err != nil {
			return fmt.Errorf("save session document: %w", err)
		}
		snap = snapshot(doc)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Document returns the session document, creating it on first access.
func (s *Service) Document(ctx context.Context, sid string) (Snapshot, error) {
	if sid == "" {
		return Snapshot{}, ErrNoSession
	}
	var snap Snapshot
	err := s.Locker.WithLock(ctx, "invoice:"+sid, s.lockTTL(), func(ctx context.Context) error {
		doc, err := s.load(ctx, sid)
		if err != nil {
			return err
		}
		snap = snapshot(doc)
		return nil
	})
	return snap, err
}

// ApplyChange applies a text or adjustment change.
func (s *Service) ApplyChange(ctx context.Context, sid string, change invoice.Change) (Snapshot, error) {
	return s.mutate(ctx, sid, func(doc *invoice.Document) error {
		return doc.Apply(change)
	})
}

// ApplyChanges applies several changes atomically: either all are stored or none.
func (s *Service) ApplyChanges(ctx context.Context, sid string, changes ...invoice.Change) (Snapshot, error) {
	return s.mutate(ctx, sid, func(doc *invoice.Document) error {
		for _, change := range changes {
			if err := doc.Apply(change); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddItem appends a default line item and returns it.
func (s *Service) AddItem(ctx context.Context, sid string) (invoice.LineItem, Snapshot, error) {
	var added invoice.LineItem
	snap, err := s.mutate(ctx, sid, func(doc *invoice.Document) error {
		added = doc.AddItem()
		return nil
	})
	if err != nil {
		return invoice.LineItem{}, Snapshot{}, err
	}
	obs.ObserveItemOperation("add")
	return added, snap, nil
}

// UpdateItem changes one field of a line item and returns the updated item.
func (s *Service) UpdateItem(ctx context.Context, sid, itemID string, change invoice.ItemChange) (invoice.LineItem, Snapshot, error) {
	var updated invoice.LineItem
	snap, err := s.mutate(ctx, sid, func(doc *invoice.Document) error {
		var err error
		updated, err = doc.UpdateItem(itemID, change)
		return err
	})
	if err != nil {
		return invoice.LineItem{}, Snapshot{}, err
	}
	obs.ObserveItemOperation("update")
	return updated, snap, nil
}

// RemoveItem deletes a line item. Removing the only item fails with
// ErrLastItem and leaves the document unchanged.
func (s *Service) RemoveItem(ctx context.Context, sid, itemID string) (Snapshot, error) {
	snap, err := s.mutate(ctx, sid, func(doc *invoice.Document) error {
		removed, err := doc.RemoveItem(itemID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrLastItem
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	obs.ObserveItemOperation("remove")
	return snap, nil
}

// Reset deletes the stored session document and starts a fresh one.
func (s *Service) Reset(ctx context.Context, sid string) (Snapshot, error) {
	if sid == "" {
		return Snapshot{}, ErrNoSession
	}
	var snap Snapshot
	err := s.Locker.WithLock(ctx, "invoice:"+sid, s.lockTTL(), func(ctx context.Context) error {
		if err := s.Store.Delete(ctx, sid); err != nil {
			return fmt.Errorf("delete session document: %w", err)
		}
		doc, err := s.load(ctx, sid)
		if err != nil {
			return err
		}
		snap = snapshot(doc)
		return nil
	})
	return snap, err
}

// ExportPDF renders the current session document. Failures are returned as
// *ExportError; nothing is retried.
func (s *Service) ExportPDF(ctx context.Context, sid string) (Export, error) {
	snap, err := s.Document(ctx, sid)
	if err != nil {
		return Export{}, err
	}

	ctx, span := otel.Tracer("invoice.editor").Start(ctx, "invoice.export_pdf")
	defer span.End()
	filename := render.Filename(snap.Document.Number)
	span.SetAttributes(
		attribute.String("invoice.filename", filename),
		attribute.Int("invoice.items", len(snap.Document.Items)),
	)

	start := s.now()
	data, err := s.renderer()(snap.Document, snap.Totals)
	elapsed := obs.DurationMillis(s.now().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render pdf")
		obs.ObserveExport(obs.ExportResultError, elapsed)
		s.Logger.Error().Ctx(ctx).Err(err).Str("session_id", sid).Str("filename", filename).Msg("pdf export failed")
		return Export{}, &ExportError{Err: err}
	}
	obs.ObserveExport(obs.ExportResultOK, elapsed)
	span.SetAttributes(attribute.Int("invoice.pdf_bytes", len(data)))
	return Export{Filename: filename, Data: data}, nil
}
