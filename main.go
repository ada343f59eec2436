package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/racematch/config"
	"github.com/padraicbc/racematch/db"
	"github.com/padraicbc/racematch/handlers"
	"github.com/padraicbc/racematch/importer"
	applog "github.com/padraicbc/racematch/logger"
	"github.com/padraicbc/racematch/matching"
	mw "github.com/padraicbc/racematch/middleware"
	"github.com/padraicbc/racematch/store"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()
	bdb, err := db.Setup(ctx, cfg)
	if err != nil {
		logger.Fatal("database setup failed", zap.Error(err))
	}
	defer bdb.Close()

	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	repo := store.NewPGStore(bdb)
	resolver, err := matching.NewResolver(repo, cfg.Matching(), cfg.MatchUseBlocking, logger)
	if err != nil {
		logger.Fatal("resolver setup failed", zap.Error(err))
	}
	imp := importer.New(repo, resolver, cfg.ImportConcurrency, logger)
	h := handlers.New(repo, resolver, imp, cfg.JWTKey(), logger)

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = handlers.JSONSerializer{}
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if u := mw.Username(c); u != "" {
				fields = append(fields, zap.String("user", u))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signin", h.Signin)
	e.GET("/api/series/:id/leaderboard", h.Leaderboard)
	e.GET("/api/races/:id", h.GetRace)
	e.GET("/api/races/:id/results", h.RaceResults)
	e.GET("/api/runners/:id", h.GetRunner)

	// Reviewers – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(cfg.JWTKey()))
	api.POST("/import", h.Import)
	api.POST("/match/preview", h.PreviewMatch)
	api.GET("/matches", h.ListMatches)
	api.POST("/matches/:id/approve", h.ApproveMatch)
	api.POST("/matches/:id/reject", h.RejectMatch)

	// Admins
	admin := api.Group("", mw.RequireAdmin(cfg.AdminUsers))
	admin.POST("/races", h.CreateRace)
	admin.POST("/series", h.CreateSeries)
	admin.POST("/series/:id/races", h.AddSeriesRace)
	admin.POST("/series/:id/participants", h.AddParticipant)
	admin.POST("/users", h.CreateUser)

	if cfg.Debug || len(cfg.TLSDomains) == 0 {
		logger.Info("starting server", zap.Bool("debug", cfg.Debug), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	logger.Info("starting tls server", zap.Strings("domains", cfg.TLSDomains))
	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
