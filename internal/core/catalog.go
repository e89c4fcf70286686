package core

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/valter-silva-au/flowfolio/internal/storage"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// CatalogSlot is the subset of storage.Slot that the catalog needs.
type CatalogSlot interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// CatalogStore owns the ordered list of workflow records and keeps the
// durable slot in sync with it.
type CatalogStore interface {
	// Load replaces the in-memory list with the slot contents, falling back
	// to DefaultWorkflows when the slot is absent or unreadable.
	Load(ctx context.Context)
	// Save writes the whole list to the slot. The in-memory list stays
	// authoritative when the write fails.
	Save(ctx context.Context) error
	// Upsert replaces the record with the same id in place, or prepends it.
	Upsert(ctx context.Context, record models.WorkflowRecord) error
	// Insert prepends record and fails with ErrDuplicateID when the id is
	// already taken. The check and the insert happen under one lock.
	Insert(ctx context.Context, record models.WorkflowRecord) error
	// Remove deletes the record with id after confirmer approves. It
	// reports whether a record was removed. A nil confirmer uses the
	// store default.
	Remove(ctx context.Context, id string, confirmer Confirmer) (bool, error)
	// FilteredBy yields the records in category, or every record for "All".
	FilteredBy(category string) iter.Seq[models.WorkflowRecord]
	// Categories returns "All" followed by the distinct categories present,
	// in first-seen order.
	Categories() []string
	All() []models.WorkflowRecord
	Get(id string) (models.WorkflowRecord, error)
	Len() int
}

// CatalogStoreOptions configures a CatalogStore.
type CatalogStoreOptions struct {
	// Key is the slot key. Defaults to storage.DefaultKey.
	Key string
	// Confirmer is used by Remove when the caller passes nil. Defaults to
	// AlwaysConfirm.
	Confirmer Confirmer
	Logger    hclog.Logger
	Events    EventLogger
}

type catalogStore struct {
	slot      CatalogSlot
	key       string
	confirmer Confirmer
	logger    hclog.Logger
	events    EventLogger

	mu      sync.RWMutex
	records []models.WorkflowRecord

	// saveMu orders snapshots and slot writes so the last write always
	// carries the latest list.
	saveMu sync.Mutex
}

// NewCatalogStore creates a CatalogStore backed by slot. The store starts
// empty; call Load to populate it.
func NewCatalogStore(slot CatalogSlot, opts CatalogStoreOptions) CatalogStore {
	if opts.Key == "" {
		opts.Key = storage.DefaultKey
	}
	if opts.Confirmer == nil {
		opts.Confirmer = AlwaysConfirm
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &catalogStore{
		slot:      slot,
		key:       opts.Key,
		confirmer: opts.Confirmer,
		logger:    opts.Logger.Named("catalog"),
		events:    opts.Events,
		records:   []models.WorkflowRecord{},
	}
}

func (s *catalogStore) Load(ctx context.Context) {
	records := s.read(ctx)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

func (s *catalogStore) read(ctx context.Context) []models.WorkflowRecord {
	value, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.fallback("read_error", err)
		return DefaultWorkflows()
	}
	if !ok || value == "" {
		s.logger.Debug("catalog slot is empty, using defaults", "key", s.key)
		return DefaultWorkflows()
	}

	records, err := storage.UnmarshalCatalog(value)
	if err != nil {
		s.fallback("malformed", err)
		return DefaultWorkflows()
	}
	return s.sanitize(records)
}

func (s *catalogStore) fallback(reason string, err error) {
	s.logger.Warn("catalog slot unreadable, using defaults", "key", s.key, "reason", reason, "error", err)
	s.logEvent("catalog.load_fallback", map[string]any{
		"key":    s.key,
		"reason": reason,
		"error":  err.Error(),
	})
}

// sanitize coerces stored records into valid ones: unknown enum values fall
// back to AI Agents and Medium, negative node counts become zero, duplicate
// tags collapse, and records without an id or with a repeated id are dropped.
func (s *catalogStore) sanitize(records []models.WorkflowRecord) []models.WorkflowRecord {
	out := make([]models.WorkflowRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	fixed := 0

	for _, r := range records {
		if r.ID == "" || seen[r.ID] {
			fixed++
			continue
		}
		seen[r.ID] = true

		if !r.Category.IsValid() {
			r.Category = models.CategoryAIAgents
			fixed++
		}
		if !r.Complexity.IsValid() {
			r.Complexity = models.ComplexityMedium
			fixed++
		}
		if r.NodesCount < 0 {
			r.NodesCount = 0
			fixed++
		}
		r.Tags = dedupeTags(r.Tags)
		out = append(out, r)
	}

	if fixed > 0 {
		s.logger.Warn("repaired stored catalog", "key", s.key, "fixes", fixed)
	}
	return out
}

func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *catalogStore) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snapshot := s.All()
	value, err := storage.MarshalCatalog(snapshot)
	if err == nil {
		err = s.slot.Put(ctx, s.key, value)
	}
	if err != nil {
		s.logger.Error("saving catalog", "key", s.key, "error", err)
		s.logEvent("catalog.save_failed", map[string]any{"key": s.key, "error": err.Error()})
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.logEvent("catalog.saved", map[string]any{"key": s.key, "count": len(snapshot)})
	return nil
}

func (s *catalogStore) Upsert(ctx context.Context, record models.WorkflowRecord) error {
	return s.put(ctx, record, true)
}

func (s *catalogStore) Insert(ctx context.Context, record models.WorkflowRecord) error {
	return s.put(ctx, record, false)
}

func (s *catalogStore) put(ctx context.Context, record models.WorkflowRecord, replace bool) error {
	if record.ID == "" {
		return fmt.Errorf("storing workflow: %w: id is empty", ErrValidation)
	}
	record = record.Clone()
	record.Tags = dedupeTags(record.Tags)

	s.mu.Lock()
	idx := slices.IndexFunc(s.records, func(r models.WorkflowRecord) bool { return r.ID == record.ID })
	if idx >= 0 && !replace {
		s.mu.Unlock()
		return fmt.Errorf("inserting workflow %s: %w", record.ID, ErrDuplicateID)
	}
	if idx >= 0 {
		s.records[idx] = record
	} else {
		s.records = slices.Insert(s.records, 0, record)
	}
	s.mu.Unlock()

	eventType := "workflow.created"
	if idx >= 0 {
		eventType = "workflow.updated"
	}
	s.logger.Info("workflow stored", "id", record.ID, "created", idx < 0)
	s.logEvent(eventType, map[string]any{
		"id":       record.ID,
		"title":    record.Title,
		"category": string(record.Category),
	})

	return s.Save(ctx)
}

func (s *catalogStore) Remove(ctx context.Context, id string, confirmer Confirmer) (bool, error) {
	existing, err := s.Get(id)
	if err != nil {
		return false, nil
	}

	if confirmer == nil {
		confirmer = s.confirmer
	}
	if !confirmer.Confirm(DeletePrompt) {
		s.logger.Debug("delete declined", "id", id)
		return false, nil
	}

	s.mu.Lock()
	before := len(s.records)
	s.records = slices.DeleteFunc(s.records, func(r models.WorkflowRecord) bool { return r.ID == id })
	removed := len(s.records) < before
	s.mu.Unlock()

	if !removed {
		return false, nil
	}

	s.logger.Info("workflow removed", "id", id)
	s.logEvent("workflow.deleted", map[string]any{
		"id":       id,
		"title":    existing.Title,
		"category": string(existing.Category),
	})

	if err := s.Save(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (s *catalogStore) FilteredBy(category string) iter.Seq[models.WorkflowRecord] {
	return func(yield func(models.WorkflowRecord) bool) {
		for _, r := range s.All() {
			if category != models.AllCategories && string(r.Category) != category {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func (s *catalogStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []string{models.AllCategories}
	for _, r := range s.records {
		if !slices.Contains(out, string(r.Category)) {
			out = append(out, string(r.Category))
		}
	}
	return out
}

// All returns a deep copy of the records in display order.
func (s *catalogStore) All() []models.WorkflowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WorkflowRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

func (s *catalogStore) Get(id string) (models.WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return models.WorkflowRecord{}, fmt.Errorf("workflow %q: %w", id, ErrNotFound)
}

func (s *catalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *catalogStore) logEvent(eventType string, data map[string]any) {
	emit(s.events, s.logger, eventType, data)
}
