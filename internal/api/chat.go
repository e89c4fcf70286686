package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/valter-silva-au/flowfolio/internal/core"
	"github.com/valter-silva-au/flowfolio/pkg/models"
)

// ChatSession is the body returned by the chat session endpoints.
type ChatSession struct {
	ID         string            `json:"id"`
	State      string            `json:"state"`
	Transcript []models.ChatTurn `json:"transcript"`
}

// TurnRequest is the body of POST /api/v1/chat/sessions/:id/turns.
type TurnRequest struct {
	Text string `json:"text"`
}

// TurnResponse carries the assistant reply and the updated transcript.
type TurnResponse struct {
	Reply      models.ChatTurn   `json:"reply"`
	Transcript []models.ChatTurn `json:"transcript"`
}

// CreateChatSession starts a conversation seeded with the greeting
// (POST /api/v1/chat/sessions)
func (s *Server) CreateChatSession(c echo.Context) error {
	if s.opts.NewAssistant == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant not available")
	}

	id := uuid.NewString()
	session := s.opts.NewAssistant()
	s.addSession(id, session)

	return c.JSON(http.StatusCreated, ChatSession{
		ID:         id,
		State:      session.State().String(),
		Transcript: session.Transcript(),
	})
}

// GetChatSession returns the transcript of a conversation
// (GET /api/v1/chat/sessions/:id)
func (s *Server) GetChatSession(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.session(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "chat session "+id+" not found")
	}
	return c.JSON(http.StatusOK, ChatSession{
		ID:         id,
		State:      session.State().String(),
		Transcript: session.Transcript(),
	})
}

// PostChatTurn sends a question and waits for the reply
// (POST /api/v1/chat/sessions/:id/turns)
func (s *Server) PostChatTurn(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.session(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "chat session "+id+" not found")
	}

	var req TurnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be blank")
	}
	if len(session.Transcript()) >= s.opts.MaxTurns {
		return echo.NewHTTPError(http.StatusConflict, "chat session reached its turn limit; start a new session")
	}

	ctx := c.Request().Context()
	done, accepted := session.SendTurn(ctx, req.Text)
	if !accepted {
		return echo.NewHTTPError(http.StatusConflict, core.ErrAssistantBusy.Error())
	}

	select {
	case turn := <-done:
		s.touchSession(id)
		return c.JSON(http.StatusOK, TurnResponse{Reply: turn, Transcript: session.Transcript()})
	case <-ctx.Done():
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request cancelled while waiting for the assistant")
	}
}

// DeleteChatSession ends a conversation
// (DELETE /api/v1/chat/sessions/:id)
func (s *Server) DeleteChatSession(c echo.Context) error {
	id := c.Param("id")
	if !s.removeSession(id) {
		return echo.NewHTTPError(http.StatusNotFound, "chat session "+id+" not found")
	}
	return c.NoContent(http.StatusNoContent)
}
