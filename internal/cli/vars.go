package cli

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/internal/observability"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Catalog  core.CatalogStore
	Logger   hclog.Logger

	// NewEditor opens a catalog editor; nil existing starts create mode.
	NewEditor func(existing *models.WorkflowRecord) core.CatalogEditor
	// NewAssistant starts a fresh assistant conversation.
	NewAssistant func() core.AssistantSession
)

// Settings from .folioconfig.
var (
	ConfirmDelete = true
	CreatorMode   bool
	ServerAddr    = ":8080"

	ChatSessionTTL  time.Duration
	MaxChatSessions int
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
