// Package ocrtoken provides the OCR detection type and the adapter that
// drives the document-OCR backend, isolating the rest of the pipeline
// from the recognizer's native result shape.
package ocrtoken

import "matchrecap/pkg/geometry"

// Token is one OCR detection: an immutable polygon/text/score triple.
type Token struct {
	Polygon geometry.Polygon4
	Text    string
	Score   float64
}

// VerticalMid returns the token's vertical midpoint, the coordinate
// MatchParser sorts on and TextAssembler buckets rows by.
func (t Token) VerticalMid() float64 {
	return t.Polygon.VerticalMid()
}

// HorizontalMid returns the token's horizontal midpoint.
func (t Token) HorizontalMid() float64 {
	return t.Polygon.HorizontalMid()
}
