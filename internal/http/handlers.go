// README: Session handlers for the conversational booking flow.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tailwind/internal/flights"
	"tailwind/internal/modules/booking"
	"tailwind/internal/modules/dialogue"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeDialogueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dialogue.ErrNoSuchOffer):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, dialogue.ErrInvalidState):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrUnavailable), errors.Is(err, flights.ErrProvider):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) conversation(c *gin.Context) (*dialogue.Conversation, bool) {
	conv, ok := s.store.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "no such session")
		return nil, false
	}
	return conv, true
}

func (s *Server) CreateSession(c *gin.Context) {
	conv := s.store.Create()
	state, _ := conv.Status()
	c.JSON(http.StatusCreated, gin.H{
		"session_id": conv.ID,
		"state":      state,
		"message":    "Hi! Tell me about the trip you want to book.",
	})
}

func (s *Server) GetSession(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	state, req := conv.Status()
	c.JSON(http.StatusOK, gin.H{
		"session_id": conv.ID,
		"state":      state,
		"complete":   req.Complete,
		"trip":       json.RawMessage(req.SnapshotJSON()),
	})
}

func (s *Server) DeleteSession(c *gin.Context) {
	if _, ok := s.conversation(c); !ok {
		return
	}
	s.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type messageReq struct {
	Text string `json:"text"`
}

func (s *Server) PostMessage(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		writeError(c, http.StatusBadRequest, "missing message text")
		return
	}
	res, err := s.ctrl.HandleTurn(c.Request.Context(), conv, req.Text)
	if err != nil {
		writeDialogueError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  res.Message,
		"state":    res.State,
		"complete": res.Complete,
		"trip":     json.RawMessage(res.Snapshot),
	})
}

func (s *Server) Search(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	res, err := s.ctrl.StartSearch(c.Request.Context(), conv)
	if err != nil {
		writeDialogueError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchView(res))
}

type selectReq struct {
	Index *int `json:"index"`
}

func (s *Server) Select(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		writeError(c, http.StatusBadRequest, "missing offer index")
		return
	}
	res, err := s.ctrl.SelectOutbound(c.Request.Context(), conv, *req.Index)
	if err != nil {
		writeDialogueError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchView(res))
}

func (s *Server) Book(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		writeError(c, http.StatusBadRequest, "missing offer index")
		return
	}
	ref, err := s.ctrl.ResolveBooking(c.Request.Context(), conv, *req.Index)
	if err != nil {
		writeDialogueError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book_with":    ref.BookWith,
		"price":        money(ref.Price),
		"url":          ref.URL,
		"fallback_url": ref.FallbackURL,
	})
}

func (s *Server) Reset(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	s.ctrl.Reset(conv)
	state, _ := conv.Status()
	c.JSON(http.StatusOK, gin.H{
		"state":   state,
		"message": "Fresh start. Where are we flying?",
	})
}
