package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/lock"
	"github.com/noah-isme/invoice-generator/internal/session"
)

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newTestService() *Service {
	return &Service{
		Store:  session.NewMemoryStore(time.Hour),
		Locker: lock.NewLocal(),
		Now:    func() time.Time { return testNow },
		Logger: zerolog.Nop(),
	}
}

func TestDocumentCreatedOnce(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Document(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "2026-10-18", first.Document.IssueDate)
	require.Len(t, first.Document.Items, 1)

	_, err = svc.ApplyChange(ctx, "s1", invoice.TextChange{Field: invoice.FieldInvoiceNumber, Value: "INV-9"})
	require.NoError(t, err)

	again, err := svc.Document(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "INV-9", again.Document.Number)
}

func TestDocumentRequiresSession(t *testing.T) {
	svc := newTestService()
	_, err := svc.Document(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSession)
	_, _, err = svc.AddItem(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "a")
	require.NoError(t, err)

	a, err := svc.Document(ctx, "a")
	require.NoError(t, err)
	b, err := svc.Document(ctx, "b")
	require.NoError(t, err)
	require.Len(t, a.Document.Items, 2)
	require.Len(t, b.Document.Items, 1)
}

func TestItemLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	added, snap, err := svc.AddItem(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "2", added.ID)
	require.Len(t, snap.Document.Items, 2)

	_, _, err = svc.UpdateItem(ctx, "s1", "1", invoice.QuantityChange{Value: 2})
	require.NoError(t, err)
	_, _, err = svc.UpdateItem(ctx, "s1", "1", invoice.UnitPriceChange{Value: decimal.NewFromInt(50000)})
	require.NoError(t, err)
	updated, snap, err := svc.UpdateItem(ctx, "s1", "2", invoice.UnitPriceChange{Value: decimal.NewFromInt(150000)})
	require.NoError(t, err)
	require.True(t, updated.Total.Equal(decimal.NewFromInt(150000)))
	require.True(t, snap.Totals.Subtotal.Equal(decimal.NewFromInt(250000)))

	snap, err = svc.ApplyChanges(ctx, "s1",
		invoice.AdjustmentAmountChange{Target: invoice.TargetDiscount, Value: decimal.NewFromInt(10)},
		invoice.AdjustmentAmountChange{Target: invoice.TargetTax, Value: decimal.NewFromInt(11)},
	)
	require.NoError(t, err)
	require.True(t, snap.Totals.GrandTotal.Equal(decimal.NewFromInt(249750)), snap.Totals.GrandTotal.String())

	snap, err = svc.RemoveItem(ctx, "s1", "2")
	require.NoError(t, err)
	require.Len(t, snap.Document.Items, 1)
	require.True(t, snap.Totals.Subtotal.Equal(decimal.NewFromInt(100000)))
}

func TestRemoveLastItemLeavesDocument(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, "s1", "1")
	require.ErrorIs(t, err, ErrLastItem)

	snap, err := svc.Document(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Document.Items, 1)
	require.Equal(t, "1", snap.Document.Items[0].ID)
}

func TestUnknownItem(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, _, err := svc.UpdateItem(ctx, "s1", "42", invoice.DescriptionChange{Value: "x"})
	require.ErrorIs(t, err, invoice.ErrItemNotFound)
	_, err = svc.RemoveItem(ctx, "s1", "42")
	require.ErrorIs(t, err, invoice.ErrItemNotFound)
}

func TestFailedChangeIsNotSaved(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ApplyChanges(ctx, "s1",
		invoice.AdjustmentAmountChange{Target: invoice.TargetDiscount, Value: decimal.NewFromInt(10)},
		invoice.AdjustmentUnitChange{Target: invoice.TargetDiscount, Unit: invoice.Unit("bogus")},
	)
	require.ErrorIs(t, err, invoice.ErrUnknownUnit)

	snap, err := svc.Document(ctx, "s1")
	require.NoError(t, err)
	require.True(t, snap.Document.Discount.Amount.IsZero())
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Document(ctx, "s1")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	ids := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, _, err := svc.AddItem(ctx, "s1")
			if err == nil {
				ids <- item.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	require.Len(t, seen, workers)

	snap, err := svc.Document(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Document.Items, workers+1)
}

func TestReset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "s1")
	require.NoError(t, err)
	_, err = svc.ApplyChange(ctx, "s1", invoice.TextChange{Field: invoice.FieldNotes, Value: "catatan"})
	require.NoError(t, err)

	snap, err := svc.Reset(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Document.Items, 1)
	require.Empty(t, snap.Document.Notes)
	require.Equal(t, "1", snap.Document.Items[0].ID)
}

type deleteRecorder struct {
	session.Store
	deleted []string
	err     error
}

func (d *deleteRecorder) Delete(ctx context.Context, id string) error {
	d.deleted = append(d.deleted, id)
	if d.err != nil {
		return d.err
	}
	return d.Store.Delete(ctx, id)
}

func TestResetDeletesStoredDocument(t *testing.T) {
	store := &deleteRecorder{Store: session.NewMemoryStore(time.Hour)}
	svc := newTestService()
	svc.Store = store
	ctx := context.Background()

	_, err := svc.ApplyChange(ctx, "s1", invoice.TextChange{Field: invoice.FieldInvoiceNumber, Value: "INV-3"})
	require.NoError(t, err)
	_, err = svc.Reset(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, store.deleted)

	doc, ok, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok, "reset stores the fresh document")
	require.Empty(t, doc.Number)

	store.err = errors.New("redis down")
	_, err = svc.Reset(ctx, "s1")
	require.ErrorContains(t, err, "redis down")
	doc, _, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, doc)
}

func TestExportPDF(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	export, err := svc.ExportPDF(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "Invoice-draft.pdf", export.Filename)
	require.Equal(t, "%PDF", string(export.Data[:4]))

	_, err = svc.ApplyChange(ctx, "s1", invoice.TextChange{Field: invoice.FieldInvoiceNumber, Value: "INV-007"})
	require.NoError(t, err)
	export, err = svc.ExportPDF(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "Invoice-INV-007.pdf", export.Filename)
}

func TestExportPDFFailure(t *testing.T) {
	svc := newTestService()
	boom := errors.New("font missing")
	svc.Render = func(*invoice.Document, invoice.Totals) ([]byte, error) { return nil, boom }

	_, err := svc.ExportPDF(context.Background(), "s1")
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	require.ErrorIs(t, err, boom)
}

func TestServiceOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := &Service{
		Store:  session.NewRedisStore(client, time.Hour),
		Locker: lock.Redis{R: client, Prefix: "invoice:lock:", RetryBackoff: time.Millisecond},
		Now:    func() time.Time { return testNow },
		Logger: zerolog.Nop(),
	}
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "s1")
	require.NoError(t, err)
	_, _, err = svc.UpdateItem(ctx, "s1", "2", invoice.UnitPriceChange{Value: decimal.NewFromInt(1250)})
	require.NoError(t, err)

	snap, err := svc.Document(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Document.Items, 2)
	require.True(t, snap.Totals.GrandTotal.Equal(decimal.NewFromInt(1250)))
	require.True(t, mr.Exists("invoice:session:s1"))
}
