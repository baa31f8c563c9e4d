package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/config"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/handlers"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/permissions"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/services"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/storage"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/web"
	"github.com/aliafrazeh/alamor-vpn-bot/pkg/panelclient"
	"github.com/aliafrazeh/alamor-vpn-bot/pkg/telegrambot"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration:", err)
	}

	// Open database
	store, err := storage.NewStore(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open database:", err)
	}

	// Initialize services
	stateService := services.NewUserStateService(logger)
	qrService := services.NewQRService(logger)
	provisioner := services.NewProvisioner(store, logger)
	orderService := services.NewOrderService(store, provisioner, cfg.Sub.PublicBase, logger)
	subService := services.NewSubscriptionService(store, logger)
	syncService := services.NewSyncService(store, func(server models.Server) panelclient.PanelClient {
		return panelclient.New(server, logger)
	}, logger)

	// Setup permission controller
	permController := permissions.NewController(cfg.Telegram.AdminIDs, logger)

	// Initialize bot
	factory := handlers.NewHandlerFactory(store, stateService, orderService, syncService, qrService, cfg, logger)
	bot, err := telegrambot.NewBot(cfg, factory, permController, logger)
	if err != nil {
		logger.Fatal("Failed to create bot:", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start subscription feed server
	webServer := web.NewServer(cfg.Sub.Listen, subService, logger)
	go func() {
		if err := webServer.Start(); err != nil {
			logger.Errorf("Subscription server failed: %v", err)
			cancel()
		}
	}()
	defer webServer.Stop(context.Background())

	// Schedule profile template sync
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Sub.SyncSpec, func() {
		syncService.SyncAll(ctx)
	}); err != nil {
		logger.Fatal("Invalid sync schedule:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start bot
	logger.Info("Starting Alamor VPN bot")
	if err := bot.Start(ctx); err != nil {
		logger.Fatal("Bot failed:", err)
	}
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}
