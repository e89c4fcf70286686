// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the workflow portfolio and its assistant as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/internal/observability"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// Catalog is the read side of core.CatalogStore used by the tools.
type Catalog interface {
	FilteredBy(category string) iter.Seq[models.WorkflowRecord]
	Categories() []string
	Get(id string) (models.WorkflowRecord, error)
}

// AssistantFactory starts a fresh assistant conversation.
type AssistantFactory func() core.AssistantSession

// Server wraps the portfolio services and exposes them as MCP tools.
type Server struct {
	server       *gomcp.Server
	catalog      Catalog
	newAssistant AssistantFactory
	metricsCalc  observability.MetricsCalculator
}

// NewServer creates a new MCP server. newAssistant and metricsCalc may be nil
// when the assistant or the event log is unavailable.
func NewServer(catalog Catalog, newAssistant AssistantFactory, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		catalog:      catalog,
		newAssistant: newAssistant,
		metricsCalc:  metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "folio", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type workflowOutput struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description"`
	FullDescription  string   `json:"full_description,omitempty"`
	Category         string   `json:"category"`
	Complexity       string   `json:"complexity"`
	Severity         string   `json:"severity"`
	NodesCount       int      `json:"nodes_count"`
	ImageURL         string   `json:"image_url,omitempty"`
	Tags             []string `json:"tags"`
}

type listWorkflowsInput struct {
	Category string `json:"category,omitempty" jsonschema:"filter by category (AI Agents, Data Extraction, Business Ops, Marketing). Defaults to All."`
}

type listWorkflowsOutput struct {
	Workflows []workflowOutput `json:"workflows"`
	Count     int              `json:"count"`
}

type getWorkflowInput struct {
	ID string `json:"id" jsonschema:"required,the workflow identifier"`
}

type listCategoriesInput struct{}

type listCategoriesOutput struct {
	Categories []string `json:"categories"`
}

type askAssistantInput struct {
	Question string `json:"question" jsonschema:"required,the question to ask about the portfolio workflows"`
}

type askAssistantOutput struct {
	Reply string `json:"reply"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	WorkflowsCreated  int            `json:"workflows_created"`
	WorkflowsUpdated  int            `json:"workflows_updated"`
	WorkflowsDeleted  int            `json:"workflows_deleted"`
	CreatedByCategory map[string]int `json:"created_by_category"`
	Saves             int            `json:"saves"`
	SaveFailures      int            `json:"save_failures"`
	LoadFallbacks     int            `json:"load_fallbacks"`
	AssistantReplies  int            `json:"assistant_replies"`
	AssistantFailures int            `json:"assistant_failures"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_workflows",
		Description: "List portfolio workflows, optionally filtered by category. Returns summaries in display order.",
	}, s.handleListWorkflows)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_workflow",
		Description: "Get a workflow case study by id, including its full description and tags.",
	}, s.handleGetWorkflow)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_categories",
		Description: "List the category filters: All followed by every category present in the catalog.",
	}, s.handleListCategories)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "ask_assistant",
		Description: "Ask the portfolio assistant a question. The answer is grounded in the current catalog.",
	}, s.handleAskAssistant)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: catalog edits, saves, and assistant replies.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListWorkflows(_ context.Context, _ *gomcp.CallToolRequest, input listWorkflowsInput) (*gomcp.CallToolResult, listWorkflowsOutput, error) {
	category := input.Category
	if category == "" {
		category = models.AllCategories
	}
	if category != models.AllCategories {
		if _, ok := models.ParseCategory(category); !ok {
			return errorResult(fmt.Sprintf("unknown category %q", category)), emptyListOutput(), nil
		}
	}

	out := emptyListOutput()
	for r := range s.catalog.FilteredBy(category) {
		w := workflowToOutput(r)
		w.FullDescription = ""
		out.Workflows = append(out.Workflows, w)
	}
	out.Count = len(out.Workflows)

	return nil, out, nil
}

func (s *Server) handleGetWorkflow(_ context.Context, _ *gomcp.CallToolRequest, input getWorkflowInput) (*gomcp.CallToolResult, workflowOutput, error) {
	if input.ID == "" {
		return errorResult("id is required"), workflowOutput{}, nil
	}

	r, err := s.catalog.Get(input.ID)
	if isNotFound(err) {
		return errorResult(fmt.Sprintf("workflow %s not found", input.ID)), workflowOutput{}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("getting workflow %s: %s", input.ID, err)), workflowOutput{}, nil
	}
	return nil, workflowToOutput(r), nil
}

func (s *Server) handleListCategories(_ context.Context, _ *gomcp.CallToolRequest, _ listCategoriesInput) (*gomcp.CallToolResult, listCategoriesOutput, error) {
	return nil, listCategoriesOutput{Categories: s.catalog.Categories()}, nil
}

func (s *Server) handleAskAssistant(ctx context.Context, _ *gomcp.CallToolRequest, input askAssistantInput) (*gomcp.CallToolResult, askAssistantOutput, error) {
	if s.newAssistant == nil {
		return errorResult("assistant not available"), askAssistantOutput{}, nil
	}

	session := s.newAssistant()
	done, ok := session.SendTurn(ctx, input.Question)
	if !ok {
		return errorResult("question must not be blank"), askAssistantOutput{}, nil
	}

	select {
	case turn := <-done:
		return nil, askAssistantOutput{Reply: turn.Text}, nil
	case <-ctx.Done():
		return errorResult(fmt.Sprintf("waiting for assistant: %s", ctx.Err())), askAssistantOutput{}, nil
	}
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		WorkflowsCreated:  metrics.WorkflowsCreated,
		WorkflowsUpdated:  metrics.WorkflowsUpdated,
		WorkflowsDeleted:  metrics.WorkflowsDeleted,
		CreatedByCategory: metrics.CreatedByCategory,
		Saves:             metrics.Saves,
		SaveFailures:      metrics.SaveFailures,
		LoadFallbacks:     metrics.LoadFallbacks,
		AssistantReplies:  metrics.AssistantReplies,
		AssistantFailures: metrics.AssistantFailures,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func workflowToOutput(r models.WorkflowRecord) workflowOutput {
	image := r.ImageURL
	if r.HasInlineImage() {
		image = "(inline image)"
	}
	tags := slices.Clone(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return workflowOutput{
		ID:               r.ID,
		Title:            r.Title,
		ShortDescription: r.ShortDescription,
		FullDescription:  r.FullDescription,
		Category:         string(r.Category),
		Complexity:       string(r.Complexity),
		Severity:         r.Complexity.Severity(),
		NodesCount:       r.NodesCount,
		ImageURL:         image,
		Tags:             tags,
	}
}

func emptyListOutput() listWorkflowsOutput {
	return listWorkflowsOutput{Workflows: []workflowOutput{}}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{CreatedByCategory: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// isNotFound reports whether err means the workflow does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
