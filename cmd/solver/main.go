/**
 * CAPTCHA Solver Worker - Main Entry Point
 *
 * Stateless HTTP service that transcribes image captchas.
 *
 * Architecture:
 * - Deterministic preprocessing pipeline (grayscale, CLAHE, adaptive
 *   threshold, morphological cleanup, upscale)
 * - Multi-strategy Tesseract recognition, one attempt per configured mode
 * - Majority vote over normalized candidates with deterministic tie-break
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ameyrk/captcha-solver/internal/config"
	"github.com/ameyrk/captcha-solver/internal/logging"
	"github.com/ameyrk/captcha-solver/internal/recognize"
	"github.com/ameyrk/captcha-solver/internal/server"
	"github.com/ameyrk/captcha-solver/internal/solver"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(".env.solver"); err != nil {
		log.Printf("Warning: .env.solver not found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger("solver-worker", cfg.LogLevel)
	defer logger.Sync()

	logger.Info("captcha solver worker starting",
		"addr", cfg.HTTPAddr,
		"modes", cfg.OCRModes,
		"simple_pass", cfg.EnableSimplePass,
		"min_candidate_length", cfg.MinCandidateLength,
		"ocr_timeout_ms", cfg.OCRTimeoutMs)

	// Initialize the recognition engine and solve pipeline
	engine := recognize.NewTesseract(cfg.TesseractLang)

	solv, err := solver.New(cfg, engine, logger.With("subsystem", "pipeline"))
	if err != nil {
		log.Fatalf("Failed to initialize solver: %v", err)
	}

	// Initialize HTTP transport
	srv := server.New(cfg.HTTPAddr, solv, cfg.MaxImageBytes, logger.With("subsystem", "http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("captcha solver worker is ready",
		"addr", cfg.HTTPAddr,
		"endpoints", []string{"GET /", "GET /health", "POST /solve"},
		"attempts_per_request", len(solv.Modes()))

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	} else {
		logger.Info("shutdown complete")
	}
}
