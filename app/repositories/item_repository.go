package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/clouddrive/app/models"
	"github.com/shashiranjanraj/clouddrive/pkg/docstore"
	"github.com/shashiranjanraj/clouddrive/pkg/logger"
	"github.com/shashiranjanraj/clouddrive/pkg/metrics"
)

var (
	// ErrDuplicateID is returned by Append when a record with the same id is
	// already stored.
	ErrDuplicateID = errors.New("item store: duplicate id")

	// ErrUnreadable means the backend could not be read. Writes stop rather
	// than save over records they could not see.
	ErrUnreadable = errors.New("item store: unreadable")
)

// ItemRepository is the single authority over the drive's item records.
// The whole collection is read on every Load and replaced on every Save.
type ItemRepository struct {
	doc docstore.Document

	// writeMu serialises load-modify-save cycles inside this process.
	writeMu sync.Mutex
}

func NewItemRepository(doc docstore.Document) *ItemRepository {
	return &ItemRepository{doc: doc}
}

// Backend names the document backend ("file", "redis").
func (r *ItemRepository) Backend() string { return r.doc.Name() }

// Load returns every record in stored order. A missing or unreadable
// document is an empty drive, not an error.
func (r *ItemRepository) Load(ctx context.Context) []models.Item {
	items, err := r.load(ctx)
	if err != nil {
		logger.WithCtx(ctx).Warn("item store unreadable, serving empty list",
			"backend", r.doc.Name(), "error", err)
		return []models.Item{}
	}
	return items
}

func (r *ItemRepository) load(ctx context.Context) (items []models.Item, err error) {
	defer metrics.ObserveStore(r.doc.Name(), "load", time.Now(), &err)

	data, err := r.doc.Read(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return []models.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return models.UnmarshalItems(data)
}

// current is the collection a write builds on. A document that cannot be
// read fails the write so records are never dropped. A document that reads
// but does not decode is replaced.
func (r *ItemRepository) current(ctx context.Context) ([]models.Item, error) {
	items, err := r.load(ctx)
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, ErrUnreadable):
		return nil, err
	default:
		logger.WithCtx(ctx).Warn("item store corrupt, overwriting",
			"backend", r.doc.Name(), "error", err)
		return []models.Item{}, nil
	}
}

// Save replaces the stored collection with items.
func (r *ItemRepository) Save(ctx context.Context, items []models.Item) (err error) {
	defer metrics.ObserveStore(r.doc.Name(), "save", time.Now(), &err)

	data, err := models.MarshalItems(items)
	if err != nil {
		return fmt.Errorf("item store: encode: %w", err)
	}
	if err := r.doc.Write(ctx, data); err != nil {
		return fmt.Errorf("item store: %w", err)
	}
	return nil
}

// Append adds rec at the end of the collection. Ids must be unique.
func (r *ItemRepository) Append(ctx context.Context, rec models.Item) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	items, err := r.current(ctx)
	if err != nil {
		return err
	}
	if _, i := Find(items, rec.ItemID()); i >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ItemID())
	}
	if err := r.Save(ctx, append(items, rec)); err != nil {
		return err
	}
	metrics.ItemsCreated.WithLabelValues(string(rec.Kind())).Inc()
	return nil
}

// Upsert replaces the record sharing rec's id, or appends rec.
func (r *ItemRepository) Upsert(ctx context.Context, rec models.Item) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	items, err := r.current(ctx)
	if err != nil {
		return err
	}
	items = UpsertByKey(items, rec.ItemID(), rec)
	if err := r.Save(ctx, items); err != nil {
		return err
	}
	metrics.ItemsCreated.WithLabelValues(string(rec.Kind())).Inc()
	return nil
}

// Get finds the record with id in the current collection.
func (r *ItemRepository) Get(ctx context.Context, id models.ID) (models.Item, bool) {
	it, idx := Find(r.Load(ctx), id)
	return it, idx >= 0
}

// Find returns the first record whose id equals key and its index, or
// (nil, -1).
func Find(items []models.Item, key models.ID) (models.Item, int) {
	for i, it := range items {
		if it.ItemID() == key {
			return it, i
		}
	}
	return nil, -1
}

// UpsertByKey replaces the first record whose id equals key with rec, or
// appends rec when there is none. items may be modified in place.
func UpsertByKey(items []models.Item, key models.ID, rec models.Item) []models.Item {
	if _, i := Find(items, key); i >= 0 {
		items[i] = rec
		return items
	}
	return append(items, rec)
}
