package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/wheeldeal/wheeldeal-backend/internal/ai"
	"github.com/wheeldeal/wheeldeal-backend/internal/handler"
	appmw "github.com/wheeldeal/wheeldeal-backend/internal/middleware"
	"github.com/wheeldeal/wheeldeal-backend/internal/repository"
	"github.com/wheeldeal/wheeldeal-backend/internal/service"
	"github.com/wheeldeal/wheeldeal-backend/internal/storage"
	"gorm.io/gorm"
)

type Server struct {
	e            *echo.Echo
	vehicleRepo  repository.VehicleRepository
	convRepo     repository.ConversationRepository
	offerRepo    repository.OfferRepository
	tdRepo       repository.TestDriveRepository
	notifRepo    repository.NotificationRepository
}

func New(db *gorm.DB, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	vehicleRepo := repository.NewVehicleRepository(db)
	convRepo := repository.NewConversationRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	tdRepo := repository.NewTestDriveRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	notifSvc := service.NewNotificationService(notifRepo)
	vehicleSvc := service.NewVehicleService(vehicleRepo)
	convSvc := service.NewConversationService(convRepo, vehicleRepo)
	offerSvc := service.NewOfferService(offerRepo, convRepo, vehicleRepo, notifSvc)
	tdSvc := service.NewTestDriveService(tdRepo, convRepo, notifSvc)

	var photos *storage.PhotoStore
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		ps, err := storage.NewPhotoStore(context.Background(), bucket)
		if err != nil {
			log.Printf("[server] photo store unavailable: %v", err)
		} else {
			photos = ps
		}
	}

	vehicleHandler := handler.NewVehicleHandler(vehicleSvc, photos)
	convHandler := handler.NewConversationHandler(convSvc)
	offerHandler := handler.NewOfferHandler(offerSvc)
	tdHandler := handler.NewTestDriveHandler(tdSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	aiHandler := handler.NewAIHandler(ai.NewSuggestClient(nil), vehicleSvc, convSvc, offerSvc)

	authMw, err := appmw.NewAuthMiddleware(context.Background(), os.Getenv("FIREBASE_PROJECT_ID"))
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}
	var userHandler *handler.UserHandler
	if authMw != nil && authMw.Client() != nil {
		userHandler = handler.NewUserHandler(authMw.Client())
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	// passthrough keeps local development working when Firebase credentials
	// are absent; uid then comes from the X-Debug-UID header.
	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("uid", c.Request().Header.Get("X-Debug-UID"))
			return next(c)
		}
	}
	requireAdmin := requireAuth
	if authMw != nil {
		requireAuth = authMw.RequireAuth
		requireAdmin = authMw.RequireAdmin
	}

	api := e.Group("/api")
	api.GET("/vehicles", vehicleHandler.List)
	api.GET("/vehicles/:id", vehicleHandler.Get)
	api.POST("/vehicles", vehicleHandler.Create, requireAuth)
	api.POST("/vehicles/:id/photo", vehicleHandler.UploadPhoto, requireAuth)
	api.GET("/me/vehicles", vehicleHandler.ListMine, requireAuth)

	api.POST("/vehicles/:id/conversations", convHandler.CreateFromVehicle, requireAuth)
	api.GET("/conversations", convHandler.List, requireAuth)
	api.GET("/conversations/:id", convHandler.Get, requireAuth)
	api.GET("/conversations/:id/messages", convHandler.ListMessages, requireAuth)
	api.POST("/conversations/:id/messages", convHandler.PostMessage, requireAuth)
	api.POST("/conversations/:id/read", convHandler.MarkRead, requireAuth)
	api.POST("/conversations/:id/flag", convHandler.Flag, requireAdmin)

	api.POST("/conversations/:id/offers", offerHandler.Create, requireAuth)
	api.GET("/conversations/:id/offers/latest", offerHandler.Latest, requireAuth)
	api.POST("/conversations/:id/offers/:offerId/respond", offerHandler.Respond, requireAuth)

	api.POST("/conversations/:id/test-drives", tdHandler.Request, requireAuth)
	api.POST("/conversations/:id/test-drives/:tdId/respond", tdHandler.Respond, requireAuth)

	api.POST("/vehicles/:id/suggest-price", aiHandler.SuggestPrice, requireAuth)
	api.POST("/conversations/:id/suggest-reply", aiHandler.SuggestReply, requireAuth)

	api.GET("/notifications", notifHandler.List, requireAuth)
	api.POST("/notifications/read", notifHandler.MarkAllRead, requireAuth)

	if userHandler != nil {
		api.GET("/users/:uid/public", userHandler.GetPublic)
	}

	return &Server{
		e:           e,
		vehicleRepo: vehicleRepo,
		convRepo:    convRepo,
		offerRepo:   offerRepo,
		tdRepo:      tdRepo,
		notifRepo:   notifRepo,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB swaps the live connection into every repository once the async
// connect finishes.
func (s *Server) SetDB(db *gorm.DB) {
	s.vehicleRepo.SetDB(db)
	s.convRepo.SetDB(db)
	s.offerRepo.SetDB(db)
	s.tdRepo.SetDB(db)
	s.notifRepo.SetDB(db)
}
