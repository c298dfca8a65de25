// README: API gateway; registers HTTP routes and delegates to the dialogue controller.
package http

import (
	"github.com/gin-gonic/gin"

	"tailwind/internal/http/middleware"
	"tailwind/internal/logger"
	"tailwind/internal/modules/dialogue"
)

type ServerDeps struct {
	Store      *dialogue.Store
	Controller *dialogue.Controller
	Log        logger.Logger
}

type Server struct {
	store *dialogue.Store
	ctrl  *dialogue.Controller
	log   logger.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{store: deps.Store, ctrl: deps.Controller, log: deps.Log}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.log))
	r.Use(middleware.Logging(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/api")
	api.POST("/sessions", s.CreateSession)
	api.GET("/sessions/:id", s.GetSession)
	api.DELETE("/sessions/:id", s.DeleteSession)
	api.POST("/sessions/:id/messages", s.PostMessage)
	api.POST("/sessions/:id/search", s.Search)
	api.POST("/sessions/:id/select", s.Select)
	api.POST("/sessions/:id/book", s.Book)
	api.POST("/sessions/:id/reset", s.Reset)
	return r
}
