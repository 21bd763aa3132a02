/**
 * CAPTCHA Solver Pipeline
 *
 * Orchestrates a single solve operation:
 * decode -> preprocess -> N recognition attempts -> normalize -> vote.
 *
 * All state is request-scoped; a Solver is safe for concurrent use once
 * constructed. Per-mode recognition failures are absorbed as empty
 * candidates so one bad attempt never aborts the request.
 */

package solver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ameyrk/captcha-solver/internal/config"
	"github.com/ameyrk/captcha-solver/internal/decode"
	solveerrors "github.com/ameyrk/captcha-solver/internal/errors"
	"github.com/ameyrk/captcha-solver/internal/logging"
	"github.com/ameyrk/captcha-solver/internal/preprocess"
	"github.com/ameyrk/captcha-solver/internal/recognize"
)

// Engine runs one recognition attempt over PNG-encoded image data
type Engine interface {
	Recognize(ctx context.Context, imageData []byte, mode recognize.Mode) (string, error)
}

// Request is one solve operation's input. Exactly one of ImageBytes or
// ImageString should be set; ImageBytes wins when both are.
type Request struct {
	RequestID   string
	ImageBytes  []byte
	ImageString string
}

// Result is the structured outcome of a solve operation.
// Success is false when the pipeline ran but no candidate qualified;
// Err then carries the NO_WINNER error.
type Result struct {
	Success  bool
	Text     string
	Support  int
	Attempts int
	Duration time.Duration
	Err      *solveerrors.SolveError
}

// Solver runs the image-to-text pipeline
type Solver struct {
	modes      []recognize.Mode
	engine     Engine
	normalizer *Normalizer
	params     preprocess.Params
	minLength  int
	timeout    time.Duration
	logger     *logging.Logger
}

// New creates a solver from worker configuration.
// The engine is the external OCR capability; tests supply a fake.
func New(cfg *config.Config, engine Engine, logger *logging.Logger) (*Solver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("recognition engine is required")
	}

	modes, err := recognize.ParseModes(cfg.OCRModes, cfg.AllowedCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recognition modes: %w", err)
	}

	// Supplementary global-threshold pass, unless already configured
	if cfg.EnableSimplePass && !hasMode(modes, recognize.SimpleLineMode) {
		simple, err := recognize.ParseModes([]string{recognize.SimpleLineMode}, cfg.AllowedCharset)
		if err != nil {
			return nil, err
		}
		modes = append(modes, simple[0])
	}

	return &Solver{
		modes:      modes,
		engine:     engine,
		normalizer: NewNormalizer(cfg.AllowedCharset),
		params: preprocess.Params{
			CLAHETileSize:   cfg.CLAHETileSize,
			CLAHEClipLimit:  cfg.CLAHEClipLimit,
			ThresholdWindow: cfg.ThresholdWindow,
			ThresholdOffset: cfg.ThresholdOffset,
			MorphKernelSize: cfg.MorphKernelSize,
			ScaleFactor:     cfg.ScaleFactor,
		},
		minLength: cfg.MinCandidateLength,
		timeout:   time.Duration(cfg.OCRTimeoutMs) * time.Millisecond,
		logger:    logger,
	}, nil
}

// Modes returns the configured recognition modes in evaluation order
func (s *Solver) Modes() []recognize.Mode {
	return s.modes
}

// Solve runs the full pipeline for one request.
//
// Hard failures (decode, preprocess) are returned as the error; an
// inconclusive result is not an error and comes back as a Result with
// Success=false.
func (s *Solver) Solve(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	// Step 1: decode the encoded image into a raster
	img, format, err := s.decodeRequest(req)
	if err != nil {
		s.logger.Warn("image decode failed", "request_id", req.RequestID, "error", err)
		return nil, solveerrors.NewDecodeFailedError(req.RequestID, err)
	}
	s.logger.Debug("image decoded", "request_id", req.RequestID, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	// Step 2: preprocess once per image source the modes need
	sources, err := s.prepareSources(img)
	if err != nil {
		s.logger.Warn("preprocessing failed", "request_id", req.RequestID, "error", err)
		return nil, solveerrors.NewPreprocessFailedError(req.RequestID, err)
	}

	// Step 3: run all recognition attempts concurrently; results are
	// collected positionally so the voter sees configured mode order
	candidates := s.runAttempts(ctx, req.RequestID, sources)

	// Step 4: vote
	result := &Result{Attempts: len(s.modes), Duration: time.Since(start)}

	winner, ok := Vote(candidates, s.minLength)
	if !ok {
		s.logger.Info("no winning candidate", "request_id", req.RequestID,
			"attempts", len(s.modes), "duration_ms", result.Duration.Milliseconds())
		result.Err = solveerrors.NewNoWinnerError(req.RequestID, len(s.modes))
		return result, nil
	}

	result.Success = true
	result.Text = winner.Text
	result.Support = winner.Support

	s.logger.Info("captcha solved", "request_id", req.RequestID, "text", winner.Text,
		"support", winner.Support, "attempts", len(s.modes),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

func (s *Solver) decodeRequest(req *Request) (image.Image, string, error) {
	if len(req.ImageBytes) > 0 {
		return decode.Bytes(req.ImageBytes)
	}
	if req.ImageString != "" {
		return decode.String(req.ImageString)
	}
	return nil, "", fmt.Errorf("no image provided")
}

// prepareSources runs each preprocessing variant the configured modes read
// and encodes the results as PNG for the recognition engine
func (s *Solver) prepareSources(img image.Image) (map[recognize.Source][]byte, error) {
	sources := make(map[recognize.Source][]byte, 2)

	for _, mode := range s.modes {
		if _, done := sources[mode.Source]; done {
			continue
		}

		var processed *image.Gray
		var err error

		switch mode.Source {
		case recognize.SourceSimple:
			processed, err = preprocess.RunSimple(img, s.params.ScaleFactor)
		default:
			processed, err = preprocess.Run(img, s.params)
		}
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, processed, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
		}

		sources[mode.Source] = buf.Bytes()
	}

	return sources, nil
}

// runAttempts fans out one recognition attempt per mode and returns the
// normalized candidates in configured mode order. Failed attempts
// contribute an empty candidate.
func (s *Solver) runAttempts(ctx context.Context, requestID string, sources map[recognize.Source][]byte) []Candidate {
	candidates := make([]Candidate, len(s.modes))

	var wg sync.WaitGroup
	for i, mode := range s.modes {
		wg.Add(1)
		go func(i int, mode recognize.Mode) {
			defer wg.Done()

			attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			raw, err := s.engine.Recognize(attemptCtx, sources[mode.Source], mode)
			if err != nil {
				// Absorbed: this mode contributes no candidate
				recErr := solveerrors.NewRecognitionFailedError(requestID, mode.Name, err)
				s.logger.Warn("recognition attempt failed", "request_id", requestID,
					"mode", mode.Name, "error", recErr)
				candidates[i] = Candidate{Mode: mode.Name}
				return
			}

			candidates[i] = Candidate{Text: s.normalizer.Normalize(raw), Mode: mode.Name}
		}(i, mode)
	}
	wg.Wait()

	return candidates
}

func hasMode(modes []recognize.Mode, name string) bool {
	for _, m := range modes {
		if m.Name == name {
			return true
		}
	}
	return false
}
