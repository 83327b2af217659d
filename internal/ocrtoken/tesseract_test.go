package ocrtoken

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"
)

// TestRecognizeRespectsContextCancellation requires a working Tesseract
// installation (gosseract links against libtesseract); skip rather than
// fail when the engine can't be constructed in this environment.
func TestRecognizeRespectsContextCancellation(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Skipf("skipping: tesseract engine unavailable: %v", err)
	}
	defer engine.Close()

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.White)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err = engine.Recognize(ctx, img)
	if err == nil {
		t.Error("expected an error from an already-expired context")
	}
}
