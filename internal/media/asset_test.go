package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"redactor/internal/media/ffprobe"
	"redactor/internal/services"
)

func TestAssetFromProbe(t *testing.T) {
	result := ffprobe.Probe{
		Streams: []ffprobe.Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 1280, Height: 720, Duration: "9.5", FrameRate: "25/1"},
		},
		Format: ffprobe.Container{Duration: "10.0"},
	}
	asset, err := AssetFromProbe("clip.mp4", result)
	if err != nil {
		t.Fatalf("AssetFromProbe: %v", err)
	}
	if asset.Name != "clip.mp4" || asset.Width != 1280 || asset.Height != 720 || asset.Duration != 10 {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if asset.FrameRate != 25 || !asset.HasAudio {
		t.Fatalf("frame rate %v audio %v", asset.FrameRate, asset.HasAudio)
	}

	result.Format.Duration = "N/A"
	asset, err = AssetFromProbe("clip.mp4", result)
	if err != nil {
		t.Fatalf("AssetFromProbe: %v", err)
	}
	if asset.Duration != 9.5 {
		t.Fatalf("expected stream duration fallback, got %v", asset.Duration)
	}

	result.Streams[1].Tags = map[string]string{"rotate": "90"}
	asset, err = AssetFromProbe("clip.mp4", result)
	if err != nil {
		t.Fatalf("AssetFromProbe: %v", err)
	}
	if asset.Width != 720 || asset.Height != 1280 {
		t.Fatalf("expected rotated geometry, got %dx%d", asset.Width, asset.Height)
	}

	result.Streams = result.Streams[1:]
	result.Streams[0].FrameRate = "N/A"
	asset, err = AssetFromProbe("clip.mp4", result)
	if err != nil {
		t.Fatalf("AssetFromProbe: %v", err)
	}
	if asset.HasAudio || asset.FrameRate != 0 {
		t.Fatalf("silent clip reported frame rate %v audio %v", asset.FrameRate, asset.HasAudio)
	}
}

func TestAssetFromProbeRejectsAudioOnly(t *testing.T) {
	_, err := AssetFromProbe("song.mp3", ffprobe.Probe{Streams: []ffprobe.Stream{{CodecType: "audio"}}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = AssetFromProbe("odd.mp4", ffprobe.Probe{Streams: []ffprobe.Stream{{CodecType: "video"}}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero dimensions, got %v", err)
	}
}

func TestProberOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("frames"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var gotBinary string
	prober := &Prober{
		Binary: "ffprobe-test",
		Inspect: func(_ context.Context, binary, p string) (ffprobe.Probe, error) {
			gotBinary = binary
			return ffprobe.Probe{
				Streams: []ffprobe.Stream{{CodecType: "video", Width: 64, Height: 48}},
				Format:  ffprobe.Container{Duration: "3"},
			}, nil
		},
	}
	asset, err := prober.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotBinary != "ffprobe-test" {
		t.Fatalf("binary = %q", gotBinary)
	}
	data, err := asset.Source.ReadAll()
	if err != nil || string(data) != "frames" {
		t.Fatalf("ReadAll = %q, %v", data, err)
	}
	if err := asset.Source.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("borrowed input must survive release")
	}
	if _, err := asset.Source.ReadAll(); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
}

func TestProberOpenWrapsInspectFailure(t *testing.T) {
	prober := &Prober{Inspect: func(context.Context, string, string) (ffprobe.Probe, error) {
		return ffprobe.Probe{}, errors.New("exit status 1")
	}}
	if _, err := prober.Open(context.Background(), "missing.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestOwnedFileRemovedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp4")
	if err := os.WriteFile(path, []byte("rendered"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := Own(path)
	dst := filepath.Join(t.TempDir(), "copy.mp4")
	n, err := f.CopyTo(dst)
	if err != nil || n != int64(len("rendered")) {
		t.Fatalf("CopyTo = %d, %v", n, err)
	}
	if err := f.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := f.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("owned file should be removed, stat err = %v", err)
	}
}
