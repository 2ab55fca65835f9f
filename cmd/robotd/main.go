// robotd: HTTP backend for the RoBot5320 voice assistant.
// Accepts recorded speech or typed text, replies via a chat model with
// per-device short-term memory, and returns synthesized speech.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ntquoc/robot5320/internal/config"
	"github.com/ntquoc/robot5320/internal/log"
	"github.com/ntquoc/robot5320/internal/server"
	"github.com/ntquoc/robot5320/pkg/chat"
	"github.com/ntquoc/robot5320/pkg/convo"
	"github.com/ntquoc/robot5320/pkg/pipeline"
	"github.com/ntquoc/robot5320/pkg/stt"
	"github.com/ntquoc/robot5320/pkg/tts"
)

var (
	version = "1.0.0"
	port    = flag.String("port", "", "HTTP server port (overrides PORT)")
	debug   = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	log.Init(cfg.LogLevel)
	logger := log.With("service", "robotd")

	fmt.Println()
	fmt.Println("🤖 RoBot5320 backend v" + version)
	fmt.Println()

	sttClient, err := stt.NewOpenAI(
		sttOptions(cfg)...,
	)
	if err != nil {
		logger.Error("create stt client", "error", err)
		os.Exit(1)
	}
	defer sttClient.Close()

	chatClient, err := chat.NewClient(
		chatOptions(cfg)...,
	)
	if err != nil {
		logger.Error("create chat client", "error", err)
		os.Exit(1)
	}
	defer chatClient.Close()

	ttsClient, err := tts.NewOpenAI(
		ttsOptions(cfg)...,
	)
	if err != nil {
		logger.Error("create tts client", "error", err)
		os.Exit(1)
	}
	defer ttsClient.Close()

	sink, err := pipeline.NewSink(cfg.AudioDir, string(tts.FormatOpus))
	if err != nil {
		logger.Error("create audio sink", "error", err)
		os.Exit(1)
	}

	orch := pipeline.New(pipeline.Deps{
		Store:       convo.NewStore(),
		Transcriber: sttClient,
		Completer:   chatClient,
		Synthesizer: ttsClient,
		Sink:        sink,
		Timeout:     cfg.PipelineTimeout,
		Logger:      logger,
	})

	srv := server.New(server.Options{
		Pipeline: orch,
		AudioDir: cfg.AudioDir,
		WebDir:   cfg.WebDir,
		Debug:    *debug,
		Logger:   logger,
	})

	go func() {
		if err := srv.Listen(cfg.Port); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func sttOptions(cfg *config.Config) []stt.Option {
	opts := []stt.Option{
		stt.WithAPIKey(cfg.OpenAIKey),
		stt.WithLogger(log.L()),
	}
	if cfg.STTModel != "" {
		opts = append(opts, stt.WithModel(cfg.STTModel))
	}
	return opts
}

func chatOptions(cfg *config.Config) []chat.Option {
	opts := []chat.Option{
		chat.WithAPIKey(cfg.OpenAIKey),
		chat.WithLogger(log.L()),
	}
	if cfg.ChatModel != "" {
		opts = append(opts, chat.WithModel(cfg.ChatModel))
	}
	return opts
}

func ttsOptions(cfg *config.Config) []tts.Option {
	opts := []tts.Option{
		tts.WithAPIKey(cfg.OpenAIKey),
		tts.WithLogger(log.L()),
	}
	if cfg.TTSModel != "" {
		opts = append(opts, tts.WithModel(cfg.TTSModel))
	}
	if cfg.TTSVoice != "" {
		opts = append(opts, tts.WithVoice(cfg.TTSVoice))
	}
	return opts
}
