package redaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid marks values that cannot be parsed into a known enum member.
var ErrInvalid = errors.New("invalid redaction value")

// Effect selects how a redacted rectangle is rendered.
type Effect string

const (
	EffectBlur     Effect = "blur"
	EffectPixelate Effect = "pixelate"
	EffectBlackout Effect = "blackout"
)

// Effects lists every supported effect in display order.
var Effects = []Effect{EffectBlur, EffectPixelate, EffectBlackout}

// Valid reports whether e is a supported effect.
func (e Effect) Valid() bool {
	switch e {
	case EffectBlur, EffectPixelate, EffectBlackout:
		return true
	default:
		return false
	}
}

// ParseEffect converts user input into an Effect.
func ParseEffect(value string) (Effect, error) {
	effect := Effect(strings.ToLower(strings.TrimSpace(value)))
	if !effect.Valid() {
		return "", fmt.Errorf("%w: unknown effect %q", ErrInvalid, value)
	}
	return effect, nil
}

// Strength scales blur and pixelate effects. Blackout ignores it.
type Strength string

const (
	StrengthSoft   Strength = "soft"
	StrengthMedium Strength = "medium"
	StrengthHard   Strength = "hard"
)

// Valid reports whether s is a supported strength.
func (s Strength) Valid() bool {
	switch s {
	case StrengthSoft, StrengthMedium, StrengthHard:
		return true
	default:
		return false
	}
}

// ParseStrength converts user input into a Strength.
func ParseStrength(value string) (Strength, error) {
	strength := Strength(strings.ToLower(strings.TrimSpace(value)))
	if !strength.Valid() {
		return "", fmt.Errorf("%w: unknown strength %q", ErrInvalid, value)
	}
	return strength, nil
}

// Shape is kept for forward compatibility; only rectangles exist today.
type Shape string

const ShapeRectangle Shape = "rectangle"

// Region is an integer rectangle in source pixel space.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Clip intersects r with a frame of the given size.
func (r Region) Clip(frameWidth, frameHeight int) Region {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.Width, frameWidth), min(r.Y+r.Height, frameHeight)
	if x1 <= x0 || y1 <= y0 {
		return Region{X: x0, Y: y0}
	}
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Redaction is a user-defined masking instruction.
type Redaction struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Effect    Effect    `json:"effect"`
	Strength  Strength  `json:"strength"`
	Color     string    `json:"color"`
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	Region    Region    `json:"region"`
	Enabled   bool      `json:"enabled"`
	Shape     Shape     `json:"shape"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the redaction takes part in compilation: it must be
// enabled, span a positive interval and cover a non-empty rectangle.
func (r Redaction) Active() bool {
	return r.Enabled && r.End > r.Start && !r.Region.Empty()
}

// Duration returns the length of the redaction interval in seconds.
func (r Redaction) Duration() float64 {
	return r.End - r.Start
}

// Annotation is a free-text note anchored to a time point.
type Annotation struct {
	ID          string  `json:"id"`
	Time        float64 `json:"time"`
	Text        string  `json:"text"`
	Color       string  `json:"color"`
	RedactionID string  `json:"redactionId,omitempty"`
}

// References reports whether the annotation points at the redaction id.
func (a Annotation) References(redactionID string) bool {
	return a.RedactionID != "" && a.RedactionID == redactionID
}

// DefaultAnnotationColor is applied when an annotation is created without one.
const DefaultAnnotationColor = "#3ba7fe"
