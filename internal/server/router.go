package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"https://www.youtube.com",
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", s.healthCheck)

	// Public, identity optional
	api := router.Group("/api")
	api.Use(s.identify())
	{
		api.POST("/transcript", s.fetchTranscript)
		api.GET("/metadata", s.fetchMetadata)
		api.GET("/auth/session", s.session)
		api.GET("/transcript/check", s.checkTranscript)
	}

	// Protected
	protected := api.Group("")
	protected.Use(s.requireAuth())
	{
		protected.POST("/transcript/save", s.saveTranscript)
		protected.POST("/transcript/delete", s.deleteTranscripts)
		protected.GET("/history", s.listHistory)
		protected.GET("/history/:id", s.getHistory)
		protected.GET("/history/:id/search", s.searchHistory)
		protected.POST("/summarize", s.summarize)
	}

	return router
}
