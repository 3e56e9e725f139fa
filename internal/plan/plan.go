package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"redactor/internal/redaction"
)

// ErrInvalidPlan marks plans that fail validation.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan is the decoded plan file.
type Plan struct {
	Video       string       `toml:"video"`
	Export      Export       `toml:"export"`
	Redactions  []Redaction  `toml:"redactions"`
	Annotations []Annotation `toml:"annotations"`

	baseDir string
}

// Export overrides session export settings. Unset fields keep the session
// values.
type Export struct {
	Filename     *string `toml:"filename"`
	Preset       *string `toml:"preset"`
	CRF          *int    `toml:"crf"`
	IncludeAudio *bool   `toml:"include_audio"`
}

// Redaction is one plan entry. Key is local to the plan and only used to
// link annotations.
type Redaction struct {
	Key      string  `toml:"key"`
	Label    string  `toml:"label"`
	X        int     `toml:"x"`
	Y        int     `toml:"y"`
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Start    float64 `toml:"start"`
	End      float64 `toml:"end"`
	Effect   string  `toml:"effect"`
	Strength string  `toml:"strength"`
	Color    string  `toml:"color"`
	Enabled  *bool   `toml:"enabled"`
}

// Region returns the rectangle of the entry.
func (r Redaction) Region() redaction.Region {
	return redaction.Region{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Annotation is a timeline note. Redaction names a plan key.
type Annotation struct {
	Time      float64 `toml:"time"`
	Text      string  `toml:"text"`
	Color     string  `toml:"color"`
	Redaction string  `toml:"redaction"`
}

// Load reads and validates the plan at path. A relative video path is
// resolved against the plan's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.baseDir = filepath.Dir(path)
	return p, nil
}

// Decode parses and validates a plan.
func Decode(r io.Reader) (*Plan, error) {
	var p Plan
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// VideoPath returns the video referenced by the plan, if any.
func (p *Plan) VideoPath() string {
	video := strings.TrimSpace(p.Video)
	if video == "" || filepath.IsAbs(video) || p.baseDir == "" {
		return video
	}
	return filepath.Join(p.baseDir, video)
}

// Validate checks enum values, key uniqueness and annotation references.
func (p *Plan) Validate() error {
	var problems []string
	keys := make(map[string]bool, len(p.Redactions))
	for i, r := range p.Redactions {
		where := fmt.Sprintf("redactions[%d]", i)
		if r.Effect != "" {
			if _, err := redaction.ParseEffect(r.Effect); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", where, err))
			}
		}
		if r.Strength != "" {
			if _, err := redaction.ParseStrength(r.Strength); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", where, err))
			}
		}
		if key := strings.TrimSpace(r.Key); key != "" {
			if keys[key] {
				problems = append(problems, fmt.Sprintf("%s: duplicate key %q", where, key))
			}
			keys[key] = true
		}
	}
	for i, a := range p.Annotations {
		ref := strings.TrimSpace(a.Redaction)
		if ref != "" && !keys[ref] {
			problems = append(problems, fmt.Sprintf("annotations[%d]: unknown redaction key %q", i, ref))
		}
	}
	if p.Export.Preset != nil && !redaction.Preset(strings.ToLower(strings.TrimSpace(*p.Export.Preset))).Valid() {
		problems = append(problems, fmt.Sprintf("export: unknown preset %q", *p.Export.Preset))
	}
	if p.Export.CRF != nil && (*p.Export.CRF < redaction.MinCRF || *p.Export.CRF > redaction.MaxCRF) {
		problems = append(problems, fmt.Sprintf("export: crf %d outside %d-%d", *p.Export.CRF, redaction.MinCRF, redaction.MaxCRF))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return nil
}
