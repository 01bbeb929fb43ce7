package web

import (
	"context"
	"net/http"

	"evidence-agent/config"
	"evidence-agent/database"
	"evidence-agent/web/handlers"
	"evidence-agent/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	config   *config.Config
	store    *database.PostgresStore
	evidence *services.EvidenceService
	analysis *services.AnalysisService
	chat     *services.ChatService
}

func NewServer(
	cfg *config.Config,
	store *database.PostgresStore,
	evidence *services.EvidenceService,
	analysisService *services.AnalysisService,
	chat *services.ChatService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})

	server := &Server{
		router:   router,
		logger:   logger,
		config:   cfg,
		store:    store,
		evidence: evidence,
		analysis: analysisService,
		chat:     chat,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	evidenceHandler := handlers.NewEvidenceHandler(s.evidence, s.store, s.logger)
	factsHandler := handlers.NewFactsHandler(s.store, s.logger)
	analysisHandler := handlers.NewAnalysisHandler(s.analysis, s.store, s.logger)
	chatHandler := handlers.NewChatHandler(s.chat, s.logger)

	api := s.router.Group("/api")

	api.POST("/evidence", evidenceHandler.Upload)
	api.GET("/evidence", evidenceHandler.List)
	api.DELETE("/evidence/:id", evidenceHandler.Delete)
	api.GET("/evidence/:id/transcript", evidenceHandler.Transcript)
	api.POST("/evidence/process", evidenceHandler.Process)
	api.POST("/evidence/process/stop", evidenceHandler.StopProcessing)

	api.POST("/facts", factsHandler.Create)
	api.GET("/facts", factsHandler.List)
	api.PUT("/facts/:id", factsHandler.Update)
	api.DELETE("/facts/:id", factsHandler.Delete)

	api.POST("/analysis", analysisHandler.Run)
	api.GET("/reports", analysisHandler.List)
	api.GET("/reports/:id", analysisHandler.Get)
	api.GET("/reports/:id/export", analysisHandler.Export)
	api.PATCH("/reports/:id", analysisHandler.Update)
	api.DELETE("/reports/:id", analysisHandler.Delete)

	api.POST("/chat", chatHandler.Send)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
