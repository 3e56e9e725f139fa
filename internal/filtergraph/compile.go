package filtergraph

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"redactor/internal/redaction"
)

// BlackoutOpacity is the alpha applied to solid blackout fills.
const BlackoutOpacity = 0.92

const basePixelFormat = "yuv420p"

// ErrInvalidDimensions is returned when the output size is not positive.
var ErrInvalidDimensions = errors.New("output dimensions must be positive")

// Result is a compiled graph plus the distinct effects it applies.
type Result struct {
	Graph   Graph
	Effects []string
}

// String returns the engine description of the compiled graph.
func (r Result) String() string {
	return r.Graph.String()
}

// Compile translates redactions into a processing graph scaled to the output
// size. Only active redactions whose rectangle survives clipping to the frame
// take part; their relative order is kept and decides which one wins where
// they overlap.
func Compile(redactions []redaction.Redaction, width, height int) (Result, error) {
	if width <= 0 || height <= 0 {
		return Result{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	active := activeRedactions(redactions, width, height)
	if len(active) == 0 {
		return Result{
			Graph: Graph{
				Statements: []Statement{scaleStatement(width, height, OutputLabel)},
				Output:     OutputLabel,
			},
			Effects: []string{},
		}, nil
	}

	b := &builder{current: BaseLabel}
	b.emit(scaleStatement(width, height, BaseLabel))

	var effects []string
	seen := make(map[redaction.Effect]bool)
	for i, r := range active {
		switch r.Effect {
		case redaction.EffectBlackout:
			b.blackout(i, r)
		case redaction.EffectPixelate:
			b.pixelate(i, r)
		default:
			b.blur(i, r)
		}
		effect := normalizedEffect(r.Effect)
		if !seen[effect] {
			seen[effect] = true
			effects = append(effects, string(effect))
		}
	}

	b.emit(Statement{
		Kind:    KindFinalize,
		Index:   -1,
		Inputs:  []string{b.current},
		Filters: []Filter{{Name: "copy"}},
		Outputs: []string{OutputLabel},
	})

	return Result{
		Graph:   Graph{Statements: b.statements, Output: OutputLabel},
		Effects: effects,
	}, nil
}

func activeRedactions(redactions []redaction.Redaction, width, height int) []redaction.Redaction {
	active := make([]redaction.Redaction, 0, len(redactions))
	for _, r := range redactions {
		if !r.Active() {
			continue
		}
		r.Region = r.Region.Clip(width, height)
		if r.Region.Empty() {
			continue
		}
		active = append(active, r)
	}
	return active
}

func normalizedEffect(effect redaction.Effect) redaction.Effect {
	if effect.Valid() {
		return effect
	}
	return redaction.EffectBlur
}

func scaleStatement(width, height int, out string) Statement {
	return Statement{
		Kind:   KindScale,
		Index:  -1,
		Inputs: []string{SourceVideo},
		Filters: []Filter{
			{Name: "scale", Args: fmt.Sprintf("%d:%d", width, height)},
			{Name: "format", Args: basePixelFormat},
		},
		Outputs: []string{out},
	}
}

type builder struct {
	statements []Statement
	current    string
}

func (b *builder) emit(st Statement) {
	b.statements = append(b.statements, st)
}

func (b *builder) blackout(i int, r redaction.Redaction) {
	mask := label("mask", i)
	b.emit(Statement{
		Kind:  KindFill,
		Index: i,
		Filters: []Filter{
			{Name: "color", Args: fmt.Sprintf("c=%s@%s:s=%dx%d", EngineColor(r.Color), formatFloat(BlackoutOpacity), r.Region.Width, r.Region.Height)},
			{Name: "format", Args: "rgba"},
		},
		Outputs: []string{mask},
	})
	b.composite(i, b.current, mask, r)
}

func (b *builder) pixelate(i int, r redaction.Redaction) {
	w, h := r.Region.Width, r.Region.Height
	block := ceilDiv(max(w, h), redaction.PixelateDivisor(r.Strength))
	dw, dh := max(1, ceilDiv(w, block)), max(1, ceilDiv(h, block))
	b.patch(i, r, []Filter{
		cropFilter(r.Region),
		{Name: "scale", Args: fmt.Sprintf("%d:%d:flags=neighbor", dw, dh)},
		{Name: "scale", Args: fmt.Sprintf("%d:%d:flags=neighbor", w, h)},
	})
}

func (b *builder) blur(i int, r redaction.Redaction) {
	b.patch(i, r, []Filter{
		cropFilter(r.Region),
		{Name: "boxblur", Args: fmt.Sprintf("%d:1", blurRadius(r))},
	})
}

// patch splits the current chain so one branch can be cropped and processed
// while the other stays the composite background.
func (b *builder) patch(i int, r redaction.Redaction, filters []Filter) {
	background, src, mask := label("r", i), label("src", i), label("mask", i)
	b.emit(Statement{
		Kind:    KindSplit,
		Index:   i,
		Inputs:  []string{b.current},
		Filters: []Filter{{Name: "split", Args: "2"}},
		Outputs: []string{background, src},
	})
	b.emit(Statement{
		Kind:    KindEffect,
		Index:   i,
		Inputs:  []string{src},
		Filters: filters,
		Outputs: []string{mask},
	})
	b.composite(i, background, mask, r)
}

func (b *builder) composite(i int, background, mask string, r redaction.Redaction) {
	out := label("ov", i)
	b.emit(Statement{
		Kind:   KindComposite,
		Index:  i,
		Inputs: []string{background, mask},
		Filters: []Filter{{
			Name: "overlay",
			Args: fmt.Sprintf("%d:%d:enable='between(t,%s,%s)'", r.Region.X, r.Region.Y, formatSeconds(r.Start), formatSeconds(r.End)),
		}},
		Outputs: []string{out},
	})
	b.current = out
}

func cropFilter(region redaction.Region) Filter {
	return Filter{Name: "crop", Args: fmt.Sprintf("%d:%d:%d:%d", region.Width, region.Height, region.X, region.Y)}
}

// blurRadius caps the strength radius at a quarter of the shorter side so the
// subsampled chroma planes of small rectangles stay within boxblur's limits.
func blurRadius(r redaction.Redaction) int {
	limit := max(1, min(r.Region.Width, r.Region.Height)/4)
	return min(redaction.BlurRadius(r.Strength), limit)
}

func label(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// formatSeconds rounds to millisecond precision, clamps at zero and prints
// the shortest representation.
func formatSeconds(value float64) string {
	if math.IsNaN(value) || value < 0 {
		value = 0
	}
	return formatFloat(math.Round(value*1000) / 1000)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
