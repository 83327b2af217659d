package ocrtoken

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"

	"matchrecap/pkg/geometry"
)

// ErrOCRFailure is wrapped by every error the adapter returns, so callers
// can test with errors.Is(err, ocrtoken.ErrOCRFailure).
var ErrOCRFailure = errors.New("ocr: recognition failed")

// Engine drives the document-OCR backend. It isolates gosseract's client
// handle from the rest of the pipeline, the way the teacher's
// internal/ocr.Engine isolates Tesseract from component detection.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates an OCR engine configured for general document text
// (no electronics-style whitelist: match result screens carry Japanese
// label text, not alphanumeric part numbers).
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("jpn", "eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set language: %v", ErrOCRFailure, err)
	}
	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Recognize runs OCR over a decoded image and returns its tokens.
//
// The recognizer call always runs on a dedicated worker goroutine rather
// than the caller's own goroutine: if the caller is itself running inside
// a latency-sensitive loop (an HTTP handler, a bot event dispatcher) the
// blocking Tesseract call never occupies it directly. If ctx is cancelled
// or its deadline (ocr_timeout_seconds) elapses first, Recognize returns
// OCRFailure immediately; the worker goroutine is allowed to run to
// completion in the background and its result is discarded, never sent
// anywhere because nothing is left to read it but its own buffered slot.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]Token, error) {
	type outcome struct {
		tokens []Token
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		tokens, err := e.recognizeSync(img)
		done <- outcome{tokens, err}
	}()

	select {
	case res := <-done:
		return res.tokens, res.err
	case <-ctx.Done():
		log.Warn().Msg("ocr: context deadline exceeded, discarding in-flight recognition result")
		return nil, fmt.Errorf("%w: %v", ErrOCRFailure, ctx.Err())
	}
}

func (e *Engine) recognizeSync(img image.Image) ([]Token, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode image: %v", ErrOCRFailure, err)
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: set image: %v", ErrOCRFailure, err)
	}

	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("%w: set page segmentation mode: %v", ErrOCRFailure, err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("%w: word boxes: %v", ErrOCRFailure, err)
	}

	if len(boxes) == 0 {
		log.Debug().Msg("ocr: no word-level boxes, falling back to paragraph granularity")
		boxes, err = e.client.GetBoundingBoxes(gosseract.RIL_PARA)
		if err != nil {
			return nil, fmt.Errorf("%w: paragraph boxes: %v", ErrOCRFailure, err)
		}
	}

	tokens := make([]Token, 0, len(boxes))
	for _, box := range boxes {
		text := box.Word
		if text == "" {
			continue
		}
		poly, ok := geometry.NormalizePolygon([]float64{
			float64(box.Box.Min.X), float64(box.Box.Min.Y),
			float64(box.Box.Max.X), float64(box.Box.Max.Y),
		})
		if !ok {
			continue
		}
		tokens = append(tokens, Token{
			Polygon: poly,
			Text:    text,
			Score:   box.Confidence / 100.0,
		})
	}

	log.Debug().Int("tokens", len(tokens)).Msg("ocr: recognition complete")
	return tokens, nil
}
