// Package server provides the HTTP surface of the robot5320 backend:
// the voice, text, and reset endpoints plus static serving of web
// assets and synthesized audio.
package server

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ntquoc/robot5320/pkg/convo"
	"github.com/ntquoc/robot5320/pkg/pipeline"
)

// MaxUploadBytes caps multipart voice uploads.
const MaxUploadBytes = 25 * 1024 * 1024

// Options configures the HTTP server.
type Options struct {
	// Pipeline handles the conversation flows.
	Pipeline *pipeline.Orchestrator

	// AudioDir is served under /tts.
	AudioDir string

	// WebDir is served at the root for web clients. Empty disables it.
	WebDir string

	// Debug enables the request logger middleware.
	Debug bool

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Server is the robot5320 HTTP server.
type Server struct {
	app    *fiber.App
	orch   *pipeline.Orchestrator
	logger *slog.Logger
}

// New creates the server and registers all routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		orch:   opts.Pipeline,
		logger: log.With("component", "server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "robot5320-backend",
		DisableStartupMessage: true,
		BodyLimit:             MaxUploadBytes,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,x-device-id",
	}))
	if opts.Debug {
		app.Use(logger.New())
	}

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Post("/voice", s.handleVoice)
	api.Post("/text", s.handleText)
	api.Post("/reset", s.handleReset)

	app.Static(pipeline.PublicPrefix, opts.AudioDir)
	if opts.WebDir != "" {
		app.Static("/", opts.WebDir)
	}

	s.app = app
	return s
}

// Listen starts serving on the given port.
func (s *Server) Listen(port string) error {
	s.logger.Info("backend listening", "port", port)
	return s.app.Listen(":" + port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.SendString("RoBot5320 XiaoZhi backend OK")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleVoice(c *fiber.Ctx) error {
	deviceID := deviceID(c)

	fh, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "missing audio file")
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable audio file")
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "unreadable audio file")
	}

	result, err := s.orch.Voice(c.UserContext(), pipeline.VoiceRequest{
		Audio:    audio,
		MIMEType: fh.Header.Get("Content-Type"),
		DeviceID: deviceID,
	})
	if err != nil {
		return s.pipelineError(c, "voice", err)
	}

	return c.JSON(result)
}

func (s *Server) handleText(c *fiber.Ctx) error {
	deviceID := deviceID(c)

	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if body.Text == "" {
		return badRequest(c, "missing text")
	}

	result, err := s.orch.Text(c.UserContext(), pipeline.TextRequest{
		Text:     body.Text,
		DeviceID: deviceID,
	})
	if err != nil {
		return s.pipelineError(c, "text", err)
	}

	return c.JSON(result)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.orch.Reset(deviceID(c))
	return c.JSON(fiber.Map{"ok": true})
}

// pipelineError maps pipeline failures to HTTP statuses: validation and
// domain errors are the caller's fault (400), everything else is a
// server-side failure with the underlying message surfaced.
func (s *Server) pipelineError(c *fiber.Ctx, flow string, err error) error {
	if pipeline.IsClientError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	s.logger.Error("pipeline failed", "flow", flow, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// deviceID reads the x-device-id header, defaulting to the web sentinel.
func deviceID(c *fiber.Ctx) string {
	if id := c.Get("x-device-id"); id != "" {
		return id
	}
	return convo.DefaultDevice
}
