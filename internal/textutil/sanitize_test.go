package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  clip.mp4  ", "clip.mp4"},
		{"../etc/passwd", "..-etc-passwd"},
		{`a\b:c*d`, "a-b-c-d"},
		{`what?"<>|.mp4`, "what.mp4"},
		{"tab\there\x00.mp4", "tabhere.mp4"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keeps extension", "interview.mp4", "interview.mp4"},
		{"extension case", "CLIP.MP4", "CLIP.MP4"},
		{"adds extension", "interview", "interview.mp4"},
		{"strips traversal", "../../out.mp4", "-..-out.mp4"},
		{"hidden", ".secret.mp4", "secret.mp4"},
		{"empty", "  ", "redacted.mp4"},
		{"only unsafe", "???", "redacted.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExportFileName(tt.in, "redacted.mp4", ".mp4"); got != tt.want {
				t.Fatalf("ExportFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
