package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"redactor/internal/redaction"
	"redactor/internal/session"
)

const samplePlan = `
video = "clips/interview.mp4"

[export]
filename = "interview-redacted.mp4"
preset = "Faster"
include_audio = false

[[redactions]]
key = "face"
label = "Guest face"
x = 120
y = 40
width = 200
height = 220
start = 0
end = 12.5
effect = "pixelate"
strength = "hard"

[[redactions]]
x = 0
y = 400
width = 640
height = 80
start = 3
end = 9
effect = "blackout"
enabled = false

[[annotations]]
time = 4
text = "guest turns to camera"
redaction = "face"

[[annotations]]
time = 10
text = "general note"
`

func newSession(t *testing.T) *session.Session {
	t.Helper()
	seq := 0
	s := session.New(session.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}))
	if err := s.SetVideo(redaction.VideoAsset{Name: "interview.mp4", Duration: 20, Width: 640, Height: 480}); err != nil {
		t.Fatalf("SetVideo: %v", err)
	}
	return s
}

func TestLoadResolvesVideoRelativeToPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.toml")
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := p.VideoPath(), filepath.Join(dir, "clips", "interview.mp4"); got != want {
		t.Fatalf("VideoPath = %q, want %q", got, want)
	}
	if len(p.Redactions) != 2 || len(p.Annotations) != 2 {
		t.Fatalf("unexpected plan %+v", p)
	}
}

func TestApply(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePlan))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s := newSession(t)

	applied, err := p.Apply(s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if applied.Export.Filename != "interview-redacted.mp4" || applied.Export.Preset != redaction.PresetFaster || applied.Export.IncludeAudio {
		t.Fatalf("unexpected export settings %+v", applied.Export)
	}
	if applied.Export.CRF != redaction.DefaultExportSettings().CRF {
		t.Fatalf("unset crf should keep the session value, got %d", applied.Export.CRF)
	}

	redactions := s.Redactions()
	if len(redactions) != 2 {
		t.Fatalf("expected 2 redactions, got %d", len(redactions))
	}
	face := redactions[0]
	if face.Label != "Guest face" || face.Effect != redaction.EffectPixelate || face.Strength != redaction.StrengthHard {
		t.Fatalf("unexpected first redaction %+v", face)
	}
	if face.Color != redaction.StrengthColor(redaction.StrengthHard) {
		t.Fatalf("colour should default from strength, got %s", face.Color)
	}
	if redactions[1].Enabled {
		t.Fatal("second redaction should be disabled")
	}
	if redactions[1].Label != "Redaction 2" {
		t.Fatalf("default label = %q", redactions[1].Label)
	}
	if applied.RedactionIDs["face"] != face.ID {
		t.Fatalf("key map = %v", applied.RedactionIDs)
	}

	annotations := s.Annotations()
	if len(annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(annotations))
	}
	if !annotations[0].References(face.ID) {
		t.Fatalf("first annotation should reference %s, got %+v", face.ID, annotations[0])
	}
	if annotations[1].RedactionID != "" {
		t.Fatalf("second annotation should be free-standing, got %+v", annotations[1])
	}
}

func TestApplyRequiresVideo(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePlan))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := p.Apply(session.New()); !errors.Is(err, session.ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
}

func TestDecodeRejectsInvalidPlans(t *testing.T) {
	cases := map[string]string{
		"unknown field":    "[[redactions]]\nshape = \"ellipse\"\n",
		"bad effect":       "[[redactions]]\neffect = \"smudge\"\n",
		"bad strength":     "[[redactions]]\nstrength = \"extreme\"\n",
		"duplicate key":    "[[redactions]]\nkey = \"a\"\n[[redactions]]\nkey = \"a\"\n",
		"dangling ref":     "[[annotations]]\ntext = \"x\"\nredaction = \"missing\"\n",
		"bad preset":       "[export]\npreset = \"placebo\"\n",
		"crf out of range": "[export]\ncrf = 60\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(input)); !errors.Is(err, ErrInvalidPlan) {
				t.Fatalf("expected ErrInvalidPlan, got %v", err)
			}
		})
	}
}

func TestEmptyPlanIsValid(t *testing.T) {
	p, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	applied, err := p.Apply(newSession(t))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied.Export != redaction.DefaultExportSettings() || len(applied.Redactions) != 0 {
		t.Fatalf("empty plan changed the session: %+v", applied)
	}
}
