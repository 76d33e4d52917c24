package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"aetherticket/bot"
	"aetherticket/config"
	"aetherticket/events"
	"aetherticket/handlers"
	"aetherticket/lang"
	"aetherticket/logging"
	"aetherticket/storage"
	"aetherticket/ticket"
	"aetherticket/web"
)

func main() {
	cleanup := flag.Bool("cleanup", false, "Remove slash commands on shutdown")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	logger, err := logging.New(settings.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := lang.Load(settings.LangPath); err != nil {
		logger.Warn("failed to load language file, using built-in strings",
			zap.String("path", settings.LangPath), zap.Error(err))
	}

	store, err := storage.New(settings.Database, logger)
	if err != nil {
		logger.Fatal("failed to create ticket store", zap.Error(err))
	}
	if err := store.Init(); err != nil {
		logger.Warn("ticket store init failed, tickets will not be persisted", zap.Error(err))
	}
	defer store.Shutdown()

	var publisher events.Publisher = events.NopPublisher{}
	if settings.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(settings.AMQPURL, logger)
		if err != nil {
			logger.Warn("event publisher unavailable", zap.Error(err))
		} else {
			publisher = amqpPub
		}
	}
	defer publisher.Close()

	b, err := bot.New(settings, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	ctrl := ticket.NewController(handlers.NewGateway(b.Session), store, publisher, logger)
	h := handlers.New(ctrl, settings.ConfigPath, logger)
	h.Register(b.Session)

	if err := b.Start(); err != nil {
		logger.Fatal("failed to connect to Discord", zap.Error(err))
	}
	defer b.Stop()

	b.RegisterCommands(h.Commands())
	if cfg, err := config.Load(settings.ConfigPath); err == nil {
		go b.SyncIdentity(cfg)
	}

	port, err := web.FindAvailablePort(settings.Web.Host, settings.Web.Port)
	if err != nil {
		logger.Warn("panel disabled, no port available", zap.Error(err))
	} else {
		if port != settings.Web.Port {
			logger.Info("panel port in use, using next free port",
				zap.Int("requested", settings.Web.Port), zap.Int("port", port))
		}
		settings.Web.Port = port
		srv := web.NewServer(settings.Web, settings.ConfigPath, b, logger)
		go func() {
			logger.Info("panel listening",
				zap.String("host", settings.Web.Host), zap.Int("port", port))
			if err := srv.Listen(settings.Web.Host, port); err != nil {
				logger.Error("panel stopped", zap.Error(err))
			}
		}()
		defer srv.Shutdown()
	}

	logger.Info("bot is running, press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if *cleanup {
		b.CleanupCommands()
	}
}
