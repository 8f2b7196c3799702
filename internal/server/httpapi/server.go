// Package httpapi exposes the user and file services over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/config"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Users is the part of services.UserService the handlers use.
type Users interface {
	Register(ctx context.Context, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, name, password string) (*services.Token, error)
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// Files is the part of services.FileService the handlers use.
type Files interface {
	Upload(ctx context.Context, req services.UploadRequest) (*models.File, error)
	List(ctx context.Context, ownerID int64) ([]*models.File, error)
	Open(ctx context.Context, ownerID int64, ref string) (*services.Download, error)
	Delete(ctx context.Context, ownerID int64, ref string) error
	Ping(ctx context.Context) (bool, time.Duration)
}

type Server struct {
	address       string
	engine        *gin.Engine
	users         Users
	files         Files
	maxUploadSize int64
	logger        logging.Logger
}

func NewServer(cfg *config.Config, users Users, files Files, logger logging.Logger) *Server {
	s := &Server{
		address:       cfg.EndpointAddrHTTP,
		users:         users,
		files:         files,
		maxUploadSize: cfg.MaxUploadSize,
		logger:        logger.With("module", "http_server"),
	}
	s.engine = s.newRouter(cfg.CORSAllowOrigins)
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) newRouter(allowOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", requestIDHeader}
	engine.Use(cors.New(corsConfig))

	api := engine.Group("/api/v1")

	user := api.Group("/user")
	user.POST("/register", s.register)
	user.POST("/auth", s.authenticate)
	user.GET("/me", s.requireUser(), s.me)

	files := api.Group("/files")
	files.GET("/ping", s.ping)
	files.GET("", s.requireUser(), s.listFiles)
	files.DELETE("", s.requireUser(), s.deleteFile)
	files.POST("/upload", s.requireUser(), s.upload)
	files.GET("/download", s.requireUser(), s.download)

	return engine
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
