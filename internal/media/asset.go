package media

import (
	"context"
	"fmt"
	"path/filepath"

	"redactor/internal/media/ffprobe"
	"redactor/internal/redaction"
	"redactor/internal/services"
)

// Inspector abstracts ffprobe for tests.
type Inspector func(ctx context.Context, binary, path string) (ffprobe.Probe, error)

// Prober builds video assets from files on disk.
type Prober struct {
	Binary  string
	Inspect Inspector
}

// NewProber returns a prober that shells out to binary.
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary, Inspect: ffprobe.Inspect}
}

// Open probes path and returns an asset backed by a borrowed file handle.
// Media without a video stream or with non-positive dimensions is rejected.
func (p *Prober) Open(ctx context.Context, path string) (redaction.VideoAsset, error) {
	inspect := p.Inspect
	if inspect == nil {
		inspect = ffprobe.Inspect
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return redaction.VideoAsset{}, services.Wrap(services.ErrValidation, "media", "resolve path", path, err)
	}
	result, err := inspect(ctx, p.Binary, abs)
	if err != nil {
		return redaction.VideoAsset{}, services.Wrap(services.ErrExternalTool, "media", "ffprobe", filepath.Base(abs), err)
	}
	asset, err := AssetFromProbe(filepath.Base(abs), result)
	if err != nil {
		return redaction.VideoAsset{}, err
	}
	asset.Source = Borrow(abs)
	return asset, nil
}

// AssetFromProbe converts probe output into asset metadata. Dimensions are
// the displayed size after rotation. The container duration wins over the
// stream duration when both are present. A frame rate of zero means ffprobe
// did not report one.
func AssetFromProbe(name string, probe ffprobe.Probe) (redaction.VideoAsset, error) {
	stream, ok := probe.Video()
	if !ok {
		return redaction.VideoAsset{}, services.Wrap(services.ErrValidation, "media", "probe", fmt.Sprintf("%s has no video stream", name), nil)
	}
	width, height := stream.DisplaySize()
	if width <= 0 || height <= 0 {
		return redaction.VideoAsset{}, services.Wrap(services.ErrValidation, "media", "probe", fmt.Sprintf("%s reports %dx%d", name, width, height), nil)
	}
	duration, ok := probe.Seconds()
	if !ok || duration == 0 {
		duration, _ = stream.Seconds()
	}
	return redaction.VideoAsset{
		Name:      name,
		Duration:  duration,
		Width:     width,
		Height:    height,
		FrameRate: stream.FPS(),
		HasAudio:  probe.HasAudio(),
	}, nil
}
