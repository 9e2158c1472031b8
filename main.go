package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentengine/auth"
	"contentengine/completion"
	"contentengine/config"
	"contentengine/handlers/api"
	"contentengine/middleware"
	"contentengine/services"
	"contentengine/storage"
	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	utils.ConfigureLogger(utils.LogOptions{
		Level:      utils.ParseLogLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer utils.Log.Sync()

	if err := cfg.ValidateSSL(); err != nil {
		utils.Log.Error("Invalid SSL configuration: %v", err)
		os.Exit(1)
	}

	cache := utils.NewMemoryCache(time.Minute)
	defer cache.Close()

	// Storage and auth are chosen together: the bolt store only pairs with local accounts
	var (
		opener  storage.Opener
		gateway auth.Gateway
	)
	switch cfg.Store.Driver {
	case config.StoreHosted:
		opener = storage.NewHostedStore(cfg.Hosted.URL, cfg.Hosted.AnonKey, cfg.Hosted.Timeout.Duration)
	default:
		db, err := storage.InitDB(cfg.Store.DataDir)
		if err != nil {
			utils.Log.Error("Failed to open database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		opener = storage.NewBoltStore(db)

		if cfg.Auth.Mode == config.AuthLocal {
			tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
			gateway = auth.NewLocalGateway(storage.NewUserStorage(db), tokens, cache)
		}
	}
	if gateway == nil {
		var tokens *auth.TokenIssuer
		if cfg.Auth.JWTSecret != "" {
			tokens = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
		}
		gateway = auth.NewHostedGateway(cfg.Hosted.URL, cfg.Hosted.AnonKey, cfg.Hosted.Timeout.Duration,
			tokens, cache, cfg.Auth.CacheTTL.Duration)
	}

	completer, err := newCompleter(cfg.Completion)
	if err != nil {
		utils.Log.Error("Failed to configure completion provider: %v", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:               "contentengine",
		ErrorHandler:          middleware.ErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout.Duration,
		WriteTimeout:          cfg.Server.WriteTimeout.Duration,
		DisableStartupMessage: true,
	})

	// Add global middleware
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	if headers := cfg.GetSecurityHeaders(); len(headers) > 0 {
		app.Use(func(c *fiber.Ctx) error {
			for k, v := range headers {
				c.Set(k, v)
			}
			return c.Next()
		})
	}
	app.Use(middleware.LocaleMiddleware())
	app.Use(middleware.RequestLogger(utils.Log))

	globalLimit := middleware.NewRateLimiter(cfg.Server.RateLimit, time.Minute)
	defer globalLimit.Stop()
	app.Use(globalLimit.Handler())

	aiLimit := middleware.NewRateLimiter(cfg.Server.AIRateLimit, time.Minute)
	defer aiLimit.Stop()
	if globalLimit.Disabled() || aiLimit.Disabled() {
		utils.Log.Warn("Rate limiting is off (rate_limit=%d, ai_rate_limit=%d)", cfg.Server.RateLimit, cfg.Server.AIRateLimit)
	}

	api.RegisterRoutes(app, api.Handlers{
		Auth:        api.NewAuthHandler(gateway),
		Content:     api.NewContentHandler(services.NewGenerator(completer), services.NewAnalyzer(completer)),
		Drafts:      api.NewDraftHandler(services.NewDrafts()),
		Profile:     api.NewProfileHandler(services.NewProfiles()),
		I18n:        &api.I18nHandler{},
		RequireAuth: middleware.RequireAuth(gateway, opener),
		AILimit:     aiLimit.Handler(),
	})

	// 404 Handler for undefined routes
	app.Use(middleware.NotFound)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		utils.Log.Info("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			utils.Log.Error("Shutdown failed: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	utils.Log.WithFields(map[string]interface{}{
		"auth":     cfg.Auth.Mode,
		"store":    cfg.Store.Driver,
		"provider": cfg.Completion.Provider,
	}).Info("Starting server on port %d...", cfg.Server.Port)

	if cfg.SSL.Enabled {
		err = app.ListenTLS(addr, cfg.SSL.CertFile, cfg.SSL.KeyFile)
	} else {
		err = app.Listen(addr)
	}
	if err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}

func newCompleter(cfg config.CompletionConfig) (completion.Completer, error) {
	if cfg.APIKey == "" {
		utils.Log.Warn("No API key configured for %s; generate and analyze will fail", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return completion.NewGeminiClient(context.Background(), completion.GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Duration,
		})
	default:
		oc := completion.DefaultOpenAIConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			oc.Model = cfg.Model
		}
		if cfg.Timeout.Duration > 0 {
			oc.Timeout = cfg.Timeout.Duration
		}
		return completion.NewOpenAIClient(oc), nil
	}
}
