package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// PlaceholderImageURL is the image a new workflow starts with.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1518770660439-4636190af475?auto=format&fit=crop&q=80&w=1200"

// Editable field names accepted by CatalogEditor.SetField. They match the
// JSON field names of models.WorkflowRecord.
const (
	FieldTitle            = "title"
	FieldShortDescription = "shortDescription"
	FieldFullDescription  = "fullDescription"
	FieldCategory         = "category"
	FieldImageURL         = "imageUrl"
	FieldNodesCount       = "nodesCount"
	FieldComplexity       = "complexity"
)

// CatalogEditor holds a draft workflow and commits it to a CatalogStore.
type CatalogEditor interface {
	// Initialize resets the draft. A nil existing record starts create mode
	// with defaults; otherwise the draft is a copy of existing.
	Initialize(existing *models.WorkflowRecord)
	Draft() models.WorkflowRecord
	IsEditing() bool
	SetField(name, value string) error
	// IngestImageFile converts data to a data URI in the background and
	// sets it as the draft image. The channel receives the outcome once and
	// is then closed. A result that arrives after Initialize is discarded.
	IngestImageFile(ctx context.Context, data []byte) <-chan error
	AddTag(text string)
	RemoveTag(text string)
	// Submit validates the draft and upserts it. Validation failures wrap
	// ErrValidation and leave both the draft and the store untouched.
	Submit(ctx context.Context) (models.WorkflowRecord, error)
}

// EditorOptions configures a CatalogEditor.
type EditorOptions struct {
	// Now supplies the clock used to mint ids. Defaults to time.Now.
	Now    func() time.Time
	Logger hclog.Logger
}

type catalogEditor struct {
	store    CatalogStore
	validate *validator.Validate
	now      func() time.Time
	logger   hclog.Logger

	mu         sync.Mutex
	draft      models.WorkflowRecord
	editing    bool
	generation uint64
}

// NewCatalogEditor creates an editor bound to store and initialises it with
// existing (nil for a new workflow).
func NewCatalogEditor(store CatalogStore, existing *models.WorkflowRecord, opts EditorOptions) CatalogEditor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	e := &catalogEditor{
		store:    store,
		validate: newWorkflowValidator(),
		now:      opts.Now,
		logger:   opts.Logger.Named("editor"),
	}
	e.Initialize(existing)
	return e
}

func newWorkflowValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("complexity", func(fl validator.FieldLevel) bool {
		return models.Complexity(fl.Field().String()).IsValid()
	})
	return v
}

func newDraft() models.WorkflowRecord {
	return models.WorkflowRecord{
		Category:   models.CategoryAIAgents,
		Complexity: models.ComplexityMedium,
		NodesCount: 5,
		ImageURL:   PlaceholderImageURL,
		Tags:       []string{},
	}
}

func (e *catalogEditor) Initialize(existing *models.WorkflowRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	if existing == nil {
		e.draft = newDraft()
		e.editing = false
		return
	}
	e.draft = existing.Clone()
	if e.draft.Tags == nil {
		e.draft.Tags = []string{}
	}
	e.editing = true
}

func (e *catalogEditor) Draft() models.WorkflowRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

func (e *catalogEditor) IsEditing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing
}

func (e *catalogEditor) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch name {
	case FieldTitle:
		e.draft.Title = value
	case FieldShortDescription:
		e.draft.ShortDescription = value
	case FieldFullDescription:
		e.draft.FullDescription = value
	case FieldImageURL:
		e.draft.ImageURL = value
	case FieldCategory:
		c, ok := models.ParseCategory(value)
		if !ok {
			return fmt.Errorf("category %q: %w", value, ErrInvalidField)
		}
		e.draft.Category = c
	case FieldComplexity:
		c, ok := models.ParseComplexity(value)
		if !ok {
			return fmt.Errorf("complexity %q: %w", value, ErrInvalidField)
		}
		e.draft.Complexity = c
	case FieldNodesCount:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("nodesCount %q: %w", value, ErrInvalidField)
		}
		e.draft.NodesCount = max(n, 0)
	default:
		return fmt.Errorf("unknown field %q: %w", name, ErrInvalidField)
	}
	return nil
}

func (e *catalogEditor) IngestImageFile(ctx context.Context, data []byte) <-chan error {
	done := make(chan error, 1)

	e.mu.Lock()
	gen := e.generation
	e.mu.Unlock()

	go func() {
		defer close(done)

		uri, err := imageDataURI(data)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			done <- err
			return
		}

		e.mu.Lock()
		stale := gen != e.generation
		if !stale {
			e.draft.ImageURL = uri
		}
		e.mu.Unlock()

		if stale {
			e.logger.Debug("discarding image for a replaced draft")
		}
		done <- nil
	}()

	return done
}

// imageDataURI encodes data as a data: URI after sniffing its media type.
func imageDataURI(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file: %w", ErrNotImage)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("detected %s: %w", mtype.String(), ErrNotImage)
	}
	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (e *catalogEditor) AddTag(text string) {
	tag := strings.TrimSpace(text)
	if tag == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.draft.Tags, tag) {
		e.draft.Tags = append(e.draft.Tags, tag)
	}
}

func (e *catalogEditor) RemoveTag(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Tags = slices.DeleteFunc(e.draft.Tags, func(t string) bool { return t == text })
}

func (e *catalogEditor) Submit(ctx context.Context) (models.WorkflowRecord, error) {
	e.mu.Lock()
	draft := e.draft.Clone()
	editing := e.editing
	gen := e.generation
	e.mu.Unlock()

	if err := e.validate.Struct(draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return models.WorkflowRecord{}, fmt.Errorf("%w: %s", ErrValidation, describeFieldErrors(fieldErrs))
		}
		return models.WorkflowRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var err error
	if !editing || draft.ID == "" {
		draft.ID, err = e.insertWithMintedID(ctx, draft)
	} else {
		err = e.store.Upsert(ctx, draft)
	}

	// A submitted draft keeps editing the record it created.
	e.mu.Lock()
	if gen == e.generation {
		e.draft.ID = draft.ID
		e.editing = true
	}
	e.mu.Unlock()

	if err != nil {
		// The record is in the catalog; only the write failed.
		return draft, err
	}
	return draft, nil
}

// insertWithMintedID derives an id from the current time in milliseconds
// and inserts draft under it, stepping forward while the id is taken.
func (e *catalogEditor) insertWithMintedID(ctx context.Context, draft models.WorkflowRecord) (string, error) {
	ms := e.now().UnixMilli()
	for {
		draft.ID = strconv.FormatInt(ms, 10)
		err := e.store.Insert(ctx, draft)
		if !errors.Is(err, ErrDuplicateID) {
			return draft.ID, err
		}
		ms++
	}
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "notblank":
			parts = append(parts, fe.Field()+" is required")
		case "gte":
			parts = append(parts, fe.Field()+" must not be negative")
		default:
			parts = append(parts, fmt.Sprintf("%s %q is not a valid %s", fe.Field(), fe.Value(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
