package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/alexmorbo/bttn-relay/application/port"
	"github.com/alexmorbo/bttn-relay/application/usecase"
	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/infrastructure/config"
	"github.com/alexmorbo/bttn-relay/infrastructure/memory"
	"github.com/alexmorbo/bttn-relay/infrastructure/ratelimit"
	"github.com/alexmorbo/bttn-relay/infrastructure/twilio"
	"github.com/alexmorbo/bttn-relay/infrastructure/valkey"
	"github.com/alexmorbo/bttn-relay/infrastructure/webex"
	httpInterface "github.com/alexmorbo/bttn-relay/interface/http"
	"github.com/alexmorbo/bttn-relay/interface/http/handler"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

func main() {
	log := logger.New("info")
	slog.SetDefault(log)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log = logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	settings, err := config.LoadSettings(cfg.Paths.Settings)
	if err != nil {
		log.Error("failed to load settings", "path", cfg.Paths.Settings, "error", err)
		os.Exit(1)
	}
	cfg.ApplyFileConfig(settings)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	log.Info("starting bttn-relay", "addr", cfg.Server.Addr())

	codec := token.NewCodec(cfg.Server.SigningKey)

	var redisClient *redis.Client
	var roomStore port.RoomStore
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			log.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		cancel()
		log.Info("connected to valkey", "addr", cfg.Redis.Addr)

		roomStore = valkey.NewRoomRepository(redisClient, log.With("component", "valkey"))
	} else {
		log.Info("REDIS_ADDR not set, caching room ids in memory")
		roomStore = memory.NewRoomRepository()
	}

	var limiter port.PressLimiter = ratelimit.Unlimited{}
	if cfg.Press.RateLimit > 0 {
		pressLimiter, err := ratelimit.NewPressLimiter(cfg.Press.RateLimit, cfg.Press.RateBurst)
		if err != nil {
			log.Error("failed to create press limiter", "error", err)
			os.Exit(1)
		}
		limiter = pressLimiter
	}

	webexClient := webex.NewClient(
		cfg.Messaging.URL,
		cfg.Messaging.Token,
		cfg.Paths.Attachments,
		cfg.OutboundTimeout,
		log.With("component", "webex_client"),
	)
	twilioClient := twilio.NewClient(
		cfg.Twilio.URL,
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.OutboundTimeout,
		log.With("component", "twilio_client"),
	)

	loader := config.NewButtonLoader(settings, cfg.Paths.Buttons, log.With("component", "button_loader"))
	registry := usecase.NewRegistry(loader, codec, config.NewTokenFile(cfg.Paths.Tokens), log)
	if _, err := registry.LoadAll(); err != nil {
		log.Error("failed to load buttons", "dir", cfg.Paths.Buttons, "error", err)
		os.Exit(1)
	}
	if cfg.Server.DefaultButton != "" {
		if _, err := registry.Load(cfg.Server.DefaultButton); err != nil {
			log.Warn("default button cannot be loaded", "button", cfg.Server.DefaultButton, "error", err)
		}
	}

	rooms := usecase.NewRoomManager(webexClient, roomStore, log)
	dispatcher := usecase.NewDispatcher(webexClient, twilioClient, codec, cfg.Server.PublicURL, log)

	pressUC := usecase.NewHandlePressUseCase(registry, rooms, dispatcher, codec, limiter, log)
	callUC := usecase.NewHandleCallUseCase(registry, codec, log)
	manageUC := usecase.NewManageButtonUseCase(registry, rooms, codec, log)
	indexUC := usecase.NewIndexUseCase(registry, codec, cfg.Server.PublicURL)

	errs := handler.NewErrorResponder(cfg.Server.Debug(), log.With("component", "http_errors"))
	defaults := handler.NewDefaultTokens(codec, cfg.Server.DefaultButton)
	requestTimeout := 2 * cfg.OutboundTimeout

	gin.SetMode(gin.ReleaseMode)
	router := httpInterface.NewRouter(log, httpInterface.Handlers{
		Press:  handler.NewPressHandler(pressUC, defaults, errs, requestTimeout),
		Call:   handler.NewCallHandler(callUC, defaults, errs),
		Admin:  handler.NewAdminHandler(manageUC, errs, requestTimeout),
		Index:  handler.NewIndexHandler(indexUC, errs),
		Health: handler.NewHealthHandler(roomStore),
	}, cfg.Paths.Files)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("server started", "addr", cfg.Server.Addr(), "buttons", len(registry.Names()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
	case <-quit:
		log.Info("shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis client", "error", err)
		}
	}

	log.Info("server stopped")
}
