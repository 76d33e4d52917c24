package web

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"aetherticket/config"
)

const maxAvatarSize = 5 * 1024 * 1024

// IdentitySyncer applies branding changes to the running bot account.
type IdentitySyncer interface {
	SyncIdentity(cfg config.Config)
}

// Server is the local config panel. It binds to a loopback address by default
// and edits the same config file the command handlers re-read per command.
type Server struct {
	app        *fiber.App
	settings   config.WebSettings
	configPath string
	syncer     IdentitySyncer
	log        *zap.Logger
	started    time.Time
}

func NewServer(settings config.WebSettings, configPath string, syncer IdentitySyncer, log *zap.Logger) *Server {
	s := &Server{
		settings:   settings,
		configPath: configPath,
		syncer:     syncer,
		log:        log,
		started:    time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "AetherPanel",
		DisableStartupMessage: true,
		BodyLimit:             maxAvatarSize + 64*1024,
	})

	app.Use(helmet.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store")
		return c.Next()
	})

	if settings.Password != "" {
		app.Use(basicauth.New(basicauth.Config{
			Users: map[string]string{settings.Username: settings.Password},
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return p == "/health" || p == "/diagnostic"
			},
		}))
	} else {
		log.Warn("panel authentication disabled, set WEBUI_PASSWORD to enable it")
	}

	app.Use("/api", limiter.New(limiter.Config{
		Max:        settings.RateLimitMax,
		Expiration: settings.RateLimitWindow,
	}))

	app.Get("/", s.handleIndex)
	app.Get("/health", s.handleHealth)
	app.Get("/diagnostic", s.handleDiagnostic)
	app.Get("/avatar.png", s.handleAvatarImage)
	app.Get("/api/config", s.handleGetConfig)
	app.Post("/api/config", s.handlePostConfig)
	app.Post("/api/avatar", s.handlePostAvatar)

	s.app = app
	return s
}

// App exposes the fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(host string, port int) error {
	return s.app.Listen(net.JoinHostPort(host, fmt.Sprintf("%d", port)))
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

func (s *Server) loadConfig() config.Config {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		s.log.Warn("failed to load config for panel", zap.Error(err))
	}
	return cfg
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := panelTemplate.Execute(&buf, panelData{Config: s.loadConfig()}); err != nil {
		s.log.Error("failed to render panel", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleDiagnostic(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"host":      s.settings.Host,
		"port":      s.settings.Port,
		"addresses": localIPv4Addresses(),
	})
}

func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	return c.JSON(s.loadConfig())
}

func (s *Server) handlePostConfig(c *fiber.Ctx) error {
	var cfg config.Config
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := config.Save(cfg, s.configPath); err != nil {
		s.log.Error("failed to save config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save config"})
	}

	saved := s.loadConfig()
	s.log.Info("config updated via panel", zap.String("bot_name", saved.BotName))
	if s.syncer != nil {
		go s.syncer.SyncIdentity(saved)
	}
	return c.JSON(saved)
}

func (s *Server) handlePostAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing avatar file"})
	}
	if file.Size > maxAvatarSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "avatar exceeds 5 MB"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable avatar file"})
	}
	defer src.Close()

	data := make([]byte, file.Size)
	if _, err := io.ReadFull(src, data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable avatar file"})
	}

	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "avatar must be PNG, JPEG or WebP"})
	}

	cfg := s.loadConfig()
	path := cfg.AvatarPath()
	if path == "" {
		path, _ = filepath.Abs("avatar.png")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.log.Error("failed to write avatar", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store avatar"})
	}

	s.log.Info("avatar updated via panel", zap.Int("bytes", len(data)))
	if s.syncer != nil {
		go s.syncer.SyncIdentity(cfg)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleAvatarImage(c *fiber.Ctx) error {
	path := s.loadConfig().AvatarPath()
	if path == "" {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(path)
}

func localIPv4Addresses() []string {
	addrs := []string{}
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return addrs
	}
	for _, a := range ifaceAddrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.To4() == nil {
			continue
		}
		addrs = append(addrs, ipNet.IP.String())
	}
	return addrs
}
