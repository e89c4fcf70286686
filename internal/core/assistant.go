package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// Fixed assistant texts shown to the visitor.
const (
	AssistantGreeting = "Hi! I am the AI Portfolio Assistant. Ask me anything about these workflows!"
	EmptyReplyText    = "I'm sorry, I couldn't process that."
	FailureReplyText  = "Error connecting to AI. Please try again later."
)

const systemInstructionPreamble = "You are an AI Portfolio Assistant. Use the following workflow data to answer " +
	"questions about the developer's work. Be professional, concise, and helpful.\nPortfolio Workflows:\n"

// CompletionRequest is one call to the text-generation service.
type CompletionRequest struct {
	Model             string
	UserText          string
	SystemInstruction string
}

// Completer is the subset of the completion client that the assistant
// needs. Defining it here avoids importing the integration package.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// WorkflowSource supplies the catalog snapshot used to ground replies.
type WorkflowSource interface {
	All() []models.WorkflowRecord
}

// AssistantState reports whether a request is in flight.
type AssistantState int

const (
	AssistantIdle AssistantState = iota
	AssistantSending
)

func (s AssistantState) String() string {
	if s == AssistantSending {
		return "sending"
	}
	return "idle"
}

// AssistantSession is one visitor conversation with the portfolio assistant.
type AssistantSession interface {
	// SendTurn appends the user turn and asks the completion service for a
	// reply. It returns false without side effects when text is blank or a
	// request is already in flight. The returned channel delivers the
	// assistant turn once it has been appended, then closes.
	SendTurn(ctx context.Context, text string) (<-chan models.ChatTurn, bool)
	// Transcript returns a copy of the turns so far.
	Transcript() []models.ChatTurn
	State() AssistantState
}

// AssistantOptions configures an AssistantSession.
type AssistantOptions struct {
	Model string
	// Timeout bounds a single completion call. Zero means no limit beyond
	// the caller's context.
	Timeout time.Duration
	Logger  hclog.Logger
	Events  EventLogger
}

type assistantSession struct {
	source    WorkflowSource
	completer Completer
	model     string
	timeout   time.Duration
	logger    hclog.Logger
	events    EventLogger

	mu         sync.Mutex
	transcript []models.ChatTurn
	state      AssistantState
}

// NewAssistantSession creates a session whose transcript starts with the
// greeting.
func NewAssistantSession(source WorkflowSource, completer Completer, opts AssistantOptions) AssistantSession {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &assistantSession{
		source:    source,
		completer: completer,
		model:     opts.Model,
		timeout:   opts.Timeout,
		logger:    opts.Logger.Named("assistant"),
		events:    opts.Events,
		transcript: []models.ChatTurn{
			{Speaker: models.SpeakerAssistant, Text: AssistantGreeting},
		},
		state: AssistantIdle,
	}
}

func (a *assistantSession) SendTurn(ctx context.Context, text string) (<-chan models.ChatTurn, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	a.mu.Lock()
	if a.state == AssistantSending {
		a.mu.Unlock()
		a.logger.Debug("turn dropped while a request is in flight")
		return nil, false
	}
	a.state = AssistantSending
	a.transcript = append(a.transcript, models.ChatTurn{Speaker: models.SpeakerUser, Text: text})
	a.mu.Unlock()

	req := CompletionRequest{
		Model:             a.model,
		UserText:          text,
		SystemInstruction: BuildSystemInstruction(a.source.All()),
	}

	done := make(chan models.ChatTurn, 1)
	go func() {
		defer close(done)
		done <- a.resolve(ctx, req)
	}()
	return done, true
}

func (a *assistantSession) resolve(ctx context.Context, req CompletionRequest) models.ChatTurn {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := a.completer.Complete(ctx, req)
	elapsed := time.Since(start)

	turn := models.ChatTurn{Speaker: models.SpeakerAssistant}
	switch {
	case err != nil:
		turn.Text = FailureReplyText
		a.logger.Error("completion failed", "model", req.Model, "elapsed", elapsed, "error", err)
		a.logEvent("assistant.failed", map[string]any{
			"model":      req.Model,
			"error":      err.Error(),
			"elapsed_ms": elapsed.Milliseconds(),
		})
	case strings.TrimSpace(reply) == "":
		turn.Text = EmptyReplyText
		a.logger.Warn("completion returned no text", "model", req.Model)
		a.logEvent("assistant.replied", map[string]any{
			"model":      req.Model,
			"empty":      true,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	default:
		turn.Text = reply
		a.logEvent("assistant.replied", map[string]any{
			"model":      req.Model,
			"empty":      false,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}

	a.mu.Lock()
	a.transcript = append(a.transcript, turn)
	a.state = AssistantIdle
	a.mu.Unlock()

	return turn
}

func (a *assistantSession) Transcript() []models.ChatTurn {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.ChatTurn, len(a.transcript))
	copy(out, a.transcript)
	return out
}

func (a *assistantSession) State() AssistantState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *assistantSession) logEvent(eventType string, data map[string]any) {
	emit(a.events, a.logger, eventType, data)
}

// BuildSystemInstruction renders the grounding instruction for records, one
// "- title: short (full)" line per workflow.
func BuildSystemInstruction(records []models.WorkflowRecord) string {
	var b strings.Builder
	b.WriteString(systemInstructionPreamble)
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s (%s)", r.Title, r.ShortDescription, r.FullDescription)
	}
	return b.String()
}
