package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"anoa.com/codediary/internal/config"
	"anoa.com/codediary/internal/middleware"
	"anoa.com/codediary/internal/web"
	"anoa.com/codediary/pkg/logger"
	"anoa.com/codediary/pkg/storage"

	adminHttp "anoa.com/codediary/internal/modules/admin/delivery/http"
	adminService "anoa.com/codediary/internal/modules/admin/service"

	entryHttp "anoa.com/codediary/internal/modules/entry/delivery/http"
	entryRepo "anoa.com/codediary/internal/modules/entry/repository"
	entryService "anoa.com/codediary/internal/modules/entry/service"

	followHttp "anoa.com/codediary/internal/modules/follow/delivery/http"
	followRepo "anoa.com/codediary/internal/modules/follow/repository"
	followService "anoa.com/codediary/internal/modules/follow/service"

	notifHttp "anoa.com/codediary/internal/modules/notification/delivery/http"
	notifService "anoa.com/codediary/internal/modules/notification/service"

	profileHttp "anoa.com/codediary/internal/modules/profile/delivery/http"
	profileService "anoa.com/codediary/internal/modules/profile/service"

	readRepo "anoa.com/codediary/internal/modules/readstate/repository"
	readService "anoa.com/codediary/internal/modules/readstate/service"

	searchHttp "anoa.com/codediary/internal/modules/search/delivery/http"
	searchService "anoa.com/codediary/internal/modules/search/service"

	userHttp "anoa.com/codediary/internal/modules/user/delivery/http"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	userService "anoa.com/codediary/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external resources the server runs against. Redis, Search and
// ImageStorage are optional; the features backed by them switch off when nil.
type Deps struct {
	DB           *gorm.DB
	Redis        *redis.Client
	Search       searchService.SearchService
	ImageStorage storage.ImageStorage
}

type Server struct {
	engine *gin.Engine
	addr   string
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	userRepository := userRepo.NewUserRepository(deps.DB)
	followRepository := followRepo.NewFollowRepository(deps.DB)
	entryRepository := entryRepo.NewEntryRepository(deps.DB)
	readRepository := readRepo.NewReadStateRepository(deps.DB)

	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL)
	followSvc := followService.NewFollowService(followRepository)
	readSvc := readService.NewReadStateService(readRepository, followSvc)
	notificationSvc := notifService.NewNotificationService(followSvc, entryRepository, readRepository, deps.Redis)

	entryOpts := entryService.Options{
		Redis:     deps.Redis,
		RateLimit: cfg.RateLimitEntry,
		Notifier:  notificationSvc,
	}
	if deps.Search != nil {
		entryOpts.Indexer = deps.Search
	}
	entrySvc := entryService.NewEntryService(entryRepository, readSvc, entryOpts)

	profileSvc := profileService.NewProfileService(userRepository, deps.ImageStorage, followSvc, entrySvc)
	adminSvc := adminService.NewAdminService(userRepository, authSvc)

	renderer := web.NewRenderer(notificationSvc)

	authHandler := userHttp.NewAuthHandler(authSvc, renderer, cfg.IsProduction())
	followHandler := followHttp.NewFollowHandler(followSvc, userRepository, renderer)
	entryHandler := entryHttp.NewEntryHandler(entrySvc, userRepository, followSvc, renderer)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, deps.Redis, originChecker(cfg.AllowedOrigins))
	profileHandler := profileHttp.NewProfileHandler(profileSvc)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)
	searchHandler := searchHttp.NewSearchHandler(deps.Search)

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)

	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/notifications/ws"})))

	authMiddleware := middleware.NewAuthMiddleware(authSvc, userRepository)
	router.Use(authMiddleware.Authenticate())

	// Pages
	router.GET("/", entryHandler.Home)
	router.GET("/signup", authHandler.SignupPage)
	router.POST("/signup", authHandler.Signup)
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	router.GET("/entries/:id", entryHandler.Detail)
	router.GET("/users/:username/entries", entryHandler.AuthorList)

	pages := router.Group("")
	pages.Use(authMiddleware.RequireAuth())
	{
		pages.GET("/entries", entryHandler.List)
		pages.GET("/entries/new", entryHandler.NewForm)
		pages.POST("/entries/new", entryHandler.Create)
		pages.GET("/entries/:id/edit", entryHandler.EditForm)
		pages.POST("/entries/:id/edit", entryHandler.Update)
		pages.GET("/entries/:id/delete", entryHandler.DeleteConfirm)
		pages.POST("/entries/:id/delete", entryHandler.Delete)

		pages.POST("/users/:username/follow", followHandler.Follow)
		pages.POST("/users/:username/unfollow", followHandler.Unfollow)
	}

	// The poll endpoint answers anonymous callers itself with 400.
	router.GET("/notifications/new-entries", notificationHandler.NewEntries)
	router.GET("/notifications/ws", notificationHandler.HandleWebSocket)

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.APILogin)
	api.GET("/search", searchHandler.Search)
	api.GET("/users/:username/followers", followHandler.Followers)
	api.GET("/users/:username/following", followHandler.Following)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAPIAuth())
	{
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.GET("/profile/:username", profileHandler.GetProfileByUsername)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	return &Server{
		engine: router,
		addr:   ":" + cfg.Port,
	}, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// originChecker accepts same-host websocket upgrades and any configured origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
