package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bitebot/internal/agent"
	"bitebot/internal/agent/ports"
	"bitebot/internal/history"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleIndex(c *gin.Context) {
	// touching the page is what creates a session, matching the cookie
	// the chat endpoint will look for
	if _, err := s.currentSession(c); err != nil {
		s.logger.Error("Failed to establish session: %v", err)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// handleChat runs one turn: append the user message, invoke the agent over
// the trimmed window, reconcile reservations and tool context back into the
// session, and return the scrubbed reply.
func (s *Server) handleChat(c *gin.Context) {
	start := time.Now()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	userMessage := strings.TrimSpace(req.Message)
	if userMessage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty message"})
		return
	}

	if !s.ready || s.runner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Agent not initialized. Please check your configuration.",
		})
		return
	}

	sess, err := s.currentSession(c)
	if err != nil {
		s.logger.Error("Session lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
		return
	}

	sess.Messages = append(sess.Messages, ports.Message{
		Role:    ports.RoleUser,
		Content: userMessage,
	})

	window := history.Window(sess.Messages, history.DefaultWindowSize)
	if len(window) < len(sess.Messages) {
		s.logger.Debug("Trimmed history for session %s: %d of %d messages, ~%d tokens",
			sess.ID, len(window), len(sess.Messages), history.TokenCount(window))
	}
	result, err := s.runner.Run(c.Request.Context(), agent.TurnInput{
		Messages:    window,
		ToolContext: sess.ToolContext,
	})
	if err != nil {
		// nothing from this turn is persisted, including the user message
		s.logger.Error("Agent turn failed: %v", err)
		s.metrics.RecordTurn(c.Request.Context(), "error", time.Since(start), 0, 0)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("An error occurred: %v", err),
		})
		return
	}

	if result.ReservationJSON != "" {
		s.storeReservation(c, sess, result.ReservationJSON)
	}

	reply := result.Reply
	if reply == "" {
		reply = agent.FallbackReply
	}
	clean := agent.Scrub(reply)

	// Only the final user/assistant pair is persisted. Intermediate
	// assistant/tool messages carry tool-call metadata that is invalid
	// input when replayed on a later turn.
	sess.Messages = append(sess.Messages, ports.Message{
		Role:    ports.RoleAssistant,
		Content: clean,
	})
	sess.ToolContext = result.ToolContext

	if err := s.store.Save(c.Request.Context(), sess); err != nil {
		s.logger.Error("Failed to save session %s: %v", sess.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist session"})
		return
	}

	s.metrics.RecordTurn(c.Request.Context(), "ok", time.Since(start),
		result.Usage.PromptTokens, result.Usage.CompletionTokens)

	c.JSON(http.StatusOK, gin.H{
		"message":      clean,
		"reservations": sess.Reservations,
	})
}

// storeReservation parses and dedups a reservation payload. Malformed JSON
// or a missing id drops the payload with a log line; the turn still succeeds.
func (s *Server) storeReservation(c *gin.Context, sess *ports.Session, payload string) {
	var res ports.Reservation
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		s.logger.Warn("Dropping malformed reservation payload: %v", err)
		return
	}
	if res.ReservationID == "" {
		s.logger.Warn("Dropping reservation payload without reservation_id")
		return
	}
	if sess.AddReservation(res) {
		s.metrics.RecordReservation(c.Request.Context())
		s.logger.Info("Stored reservation %s in session %s", res.ReservationID, sess.ID)
	} else {
		s.logger.Info("Duplicate reservation %s ignored", res.ReservationID)
	}
}

func (s *Server) handleReset(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.logger.Error("Session lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
		return
	}
	sess.Reset()
	if err := s.store.Save(c.Request.Context(), sess); err != nil {
		s.logger.Error("Failed to save session %s: %v", sess.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReservations(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.logger.Error("Session lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": sess.Reservations})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"agent_initialized": s.ready,
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

// currentSession resolves the caller's session from the signed cookie,
// creating a fresh one (and setting the cookie) when absent, invalid, or
// pointing at a session the store no longer has.
func (s *Server) currentSession(c *gin.Context) (*ports.Session, error) {
	if sessionID, err := s.cookies.Read(c.Request); err == nil {
		if sess, err := s.store.Get(c.Request.Context(), sessionID); err == nil {
			return sess, nil
		}
		s.logger.Warn("Cookie referenced unknown session %s, starting fresh", sessionID)
	}

	sess, err := s.store.Create(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if err := s.cookies.Write(c.Writer, sess.ID); err != nil {
		return nil, err
	}
	s.metrics.IncrementActiveSessions(c.Request.Context())
	return sess, nil
}
