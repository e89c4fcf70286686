package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// maxImageBytes bounds an uploaded image body.
const maxImageBytes = 10 << 20

// WorkflowList is the body of GET /api/v1/workflows.
type WorkflowList struct {
	Workflows []models.WorkflowRecord `json:"workflows"`
	Count     int                     `json:"count"`
}

// WorkflowRequest is the body of PUT /api/v1/workflows. An empty ID creates
// a workflow; fields left nil keep the existing (or default) value.
type WorkflowRequest struct {
	ID               string   `json:"id"`
	Title            *string  `json:"title"`
	ShortDescription *string  `json:"shortDescription"`
	FullDescription  *string  `json:"fullDescription"`
	Category         *string  `json:"category"`
	ImageURL         *string  `json:"imageUrl"`
	NodesCount       *int     `json:"nodesCount"`
	Complexity       *string  `json:"complexity"`
	Tags             []string `json:"tags"`
}

// ListWorkflows returns the catalog, optionally filtered by category
// (GET /api/v1/workflows?category=)
func (s *Server) ListWorkflows(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		category = models.AllCategories
	}
	if category != models.AllCategories {
		if _, ok := models.ParseCategory(category); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown category %q", category))
		}
	}

	list := WorkflowList{Workflows: []models.WorkflowRecord{}}
	for r := range s.store.FilteredBy(category) {
		list.Workflows = append(list.Workflows, r)
	}
	list.Count = len(list.Workflows)

	return c.JSON(http.StatusOK, list)
}

// GetWorkflow returns one workflow
// (GET /api/v1/workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	r, err := s.lookup(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// ListCategories returns "All" followed by the categories in use
// (GET /api/v1/categories)
func (s *Server) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"categories": s.store.Categories()})
}

// ExportCatalog downloads the catalog as TypeScript, JSON or YAML
// (GET /api/v1/export?format=)
func (s *Server) ExportCatalog(c echo.Context) error {
	format, err := core.ParseExportFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	data, err := core.ExportCatalog(s.store.All(), format)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "exporting catalog").SetInternal(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", format.Filename()))
	return c.Blob(http.StatusOK, format.ContentType(), data)
}

// PutWorkflow creates or updates a workflow through the catalog editor
// (PUT /api/v1/workflows)
func (s *Server) PutWorkflow(c echo.Context) error {
	var req WorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	var existing *models.WorkflowRecord
	if req.ID != "" {
		r, err := s.lookup(req.ID)
		if err != nil {
			return err
		}
		existing = &r
	}

	editor := core.NewCatalogEditor(s.store, existing, core.EditorOptions{Now: s.opts.Now, Logger: s.logger})
	if err := applyRequest(editor, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return s.submit(c, editor, existing == nil)
}

// PutWorkflowImage replaces a workflow image with the uploaded file, stored
// inline as a data URI
// (PUT /api/v1/workflows/:id/image)
func (s *Server) PutWorkflowImage(c echo.Context) error {
	r, err := s.lookup(c.Param("id"))
	if err != nil {
		return err
	}

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImageBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "reading image body: "+err.Error())
	}
	if len(data) > maxImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds 10 MiB")
	}

	ctx := c.Request().Context()
	editor := core.NewCatalogEditor(s.store, &r, core.EditorOptions{Now: s.opts.Now, Logger: s.logger})
	if err := <-editor.IngestImageFile(ctx, data); err != nil {
		if errors.Is(err, core.ErrNotImage) {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return s.submit(c, editor, false)
}

// DeleteWorkflow removes a workflow. The caller confirms with ?confirm=true
// (DELETE /api/v1/workflows/:id)
func (s *Server) DeleteWorkflow(c echo.Context) error {
	id := c.Param("id")
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	if !confirmed {
		return echo.NewHTTPError(http.StatusPreconditionRequired, core.DeletePrompt+" Repeat the request with confirm=true.")
	}

	removed, err := s.store.Remove(c.Request().Context(), id, core.AlwaysConfirm)
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("workflow %s not found", id))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "workflow removed but the catalog could not be saved").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) submit(c echo.Context, editor core.CatalogEditor, created bool) error {
	record, err := editor.Submit(c.Request().Context())
	if errors.Is(err, core.ErrValidation) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "workflow updated but the catalog could not be saved").SetInternal(err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, record)
}

func (s *Server) lookup(id string) (models.WorkflowRecord, error) {
	r, err := s.store.Get(id)
	if errors.Is(err, core.ErrNotFound) {
		return r, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("workflow %s not found", id))
	}
	if err != nil {
		return r, echo.NewHTTPError(http.StatusInternalServerError, "reading workflow").SetInternal(err)
	}
	return r, nil
}

// applyRequest copies the provided fields onto the editor draft.
func applyRequest(editor core.CatalogEditor, req WorkflowRequest) error {
	fields := []struct {
		name  string
		value *string
	}{
		{core.FieldTitle, req.Title},
		{core.FieldShortDescription, req.ShortDescription},
		{core.FieldFullDescription, req.FullDescription},
		{core.FieldCategory, req.Category},
		{core.FieldImageURL, req.ImageURL},
		{core.FieldComplexity, req.Complexity},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := editor.SetField(f.name, *f.value); err != nil {
			return err
		}
	}
	if req.NodesCount != nil {
		if err := editor.SetField(core.FieldNodesCount, strconv.Itoa(*req.NodesCount)); err != nil {
			return err
		}
	}

	if req.Tags != nil {
		for _, t := range editor.Draft().Tags {
			editor.RemoveTag(t)
		}
		for _, t := range req.Tags {
			editor.AddTag(t)
		}
	}
	return nil
}
