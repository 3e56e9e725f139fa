package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"redactor/internal/deps"
	"redactor/internal/engine"
	"redactor/internal/export"
	"redactor/internal/history"
	"redactor/internal/media"
	"redactor/internal/redaction"
	"redactor/internal/services"
	"redactor/internal/session"
)

type openerFunc func(ctx context.Context, path string) (redaction.VideoAsset, error)

func (f openerFunc) Open(ctx context.Context, path string) (redaction.VideoAsset, error) {
	return f(ctx, path)
}

type stubEngine struct {
	gate   chan struct{}
	output []byte
}

func (e *stubEngine) Loaded() bool { return true }

func (e *stubEngine) Load(context.Context) error { return nil }

func (e *stubEngine) Subscribe(func(engine.Progress)) func() { return func() {} }

func (e *stubEngine) Exec(ctx context.Context, _ engine.Job) ([]byte, error) {
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return e.output, nil
}

type memoryHistory struct {
	entries []history.Entry
}

func (m *memoryHistory) List(_ context.Context, limit int) ([]history.Entry, error) {
	return m.entries[:min(limit, len(m.entries))], nil
}

func (m *memoryHistory) Get(_ context.Context, id string) (history.Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return history.Entry{}, fmt.Errorf("%s: %w", id, history.ErrNotFound)
}

type harness struct {
	server *httptest.Server
	loop   *session.Loop
	engine *stubEngine
	token  string
}

func newHarness(t *testing.T, mutate func(*ServerConfig)) *harness {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(source, []byte("source"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	loop := session.NewLoop(session.New())
	loop.Start(context.Background())
	t.Cleanup(loop.Stop)

	eng := &stubEngine{output: []byte("rendered-mp4")}
	cfg := ServerConfig{
		Loop: loop,
		Videos: openerFunc(func(_ context.Context, path string) (redaction.VideoAsset, error) {
			if path != "clip.mp4" {
				return redaction.VideoAsset{}, services.Wrap(services.ErrValidation, "media", "open", path, errors.New("no video stream"))
			}
			return redaction.VideoAsset{Name: "clip.mp4", Duration: 30, Width: 640, Height: 480, Source: media.Borrow(source)}, nil
		}),
		Exporter: export.New(loop, eng, filepath.Join(dir, "staging")),
		MinLanes: 2,
		MaxLanes: 4,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	server := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(server.Close)
	return &harness{server: server, loop: loop, engine: eng, token: cfg.Token}
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) expect(t *testing.T, method, path string, body any, status int, out any) {
	t.Helper()
	resp := h.do(t, method, path, body)
	if resp.StatusCode != status {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d (%s)", method, path, resp.StatusCode, status, data)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func (h *harness) loadVideo(t *testing.T) {
	t.Helper()
	h.expect(t, http.MethodPut, "/session/video", VideoRequest{Path: "clip.mp4"}, http.StatusOK, nil)
}

func (h *harness) addRedaction(t *testing.T, start, end float64) redaction.Redaction {
	t.Helper()
	var created redaction.Redaction
	h.expect(t, http.MethodPost, "/redactions", session.NewRedaction{
		Region: redaction.Region{X: 0, Y: 0, Width: 100, Height: 50},
		Start:  start,
		End:    end,
		Effect: redaction.EffectBlackout,
	}, http.StatusCreated, &created)
	return created
}

func TestHealthBypassesAuth(t *testing.T) {
	h := newHarness(t, func(cfg *ServerConfig) { cfg.Token = "secret" })

	resp, err := http.Get(h.server.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}

	unauth, err := http.Get(h.server.URL + "/session")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer unauth.Body.Close()
	if unauth.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", unauth.StatusCode)
	}

	h.expect(t, http.MethodGet, "/session", nil, http.StatusOK, nil)

	h.token = "wrong"
	h.expect(t, http.MethodGet, "/session", nil, http.StatusUnauthorized, nil)
}

func TestLoadVideo(t *testing.T) {
	h := newHarness(t, nil)

	var errResp ErrorResponse
	h.expect(t, http.MethodPut, "/session/video", VideoRequest{Path: "notes.txt"}, http.StatusBadRequest, &errResp)
	if errResp.Code != "BAD_REQUEST" {
		t.Fatalf("code = %s", errResp.Code)
	}
	h.expect(t, http.MethodPut, "/session/video", VideoRequest{}, http.StatusBadRequest, nil)

	var snap session.Snapshot
	h.expect(t, http.MethodGet, "/session", nil, http.StatusOK, &snap)
	if snap.Video != nil {
		t.Fatal("rejected media must not touch the session")
	}

	h.loadVideo(t)
	h.expect(t, http.MethodGet, "/session", nil, http.StatusOK, &snap)
	if snap.Video == nil || snap.Video.Width != 640 || snap.Video.Height != 480 {
		t.Fatalf("unexpected video %+v", snap.Video)
	}
}

func TestRedactionLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	var errResp ErrorResponse
	h.expect(t, http.MethodPost, "/redactions", session.NewRedaction{End: 1}, http.StatusConflict, &errResp)
	if errResp.Code != "NO_VIDEO" {
		t.Fatalf("code = %s", errResp.Code)
	}

	h.loadVideo(t)
	first := h.addRedaction(t, 0, 5)
	second := h.addRedaction(t, 2, 6)
	if first.Label != "Redaction 1" || !first.Enabled {
		t.Fatalf("unexpected defaults %+v", first)
	}

	label := "Plate"
	var updated redaction.Redaction
	h.expect(t, http.MethodPatch, "/redactions/"+first.ID, session.RedactionPatch{Label: &label}, http.StatusOK, &updated)
	if updated.Label != "Plate" {
		t.Fatalf("label = %s", updated.Label)
	}

	var toggled redaction.Redaction
	h.expect(t, http.MethodPost, "/redactions/"+first.ID+"/toggle", nil, http.StatusOK, &toggled)
	if toggled.Enabled {
		t.Fatal("toggle should disable")
	}

	var ordered []redaction.Redaction
	h.expect(t, http.MethodPut, "/redactions/order", OrderRequest{IDs: []string{second.ID, first.ID}}, http.StatusOK, &ordered)
	if ordered[0].ID != second.ID {
		t.Fatalf("order = %v", ordered)
	}

	var note redaction.Annotation
	h.expect(t, http.MethodPost, "/annotations", session.NewAnnotation{Time: 1, Text: "plate", RedactionID: first.ID}, http.StatusCreated, &note)
	h.expect(t, http.MethodPost, "/annotations", session.NewAnnotation{Text: "bad", RedactionID: "missing"}, http.StatusNotFound, nil)

	h.expect(t, http.MethodDelete, "/redactions/"+first.ID, nil, http.StatusNoContent, nil)
	h.expect(t, http.MethodDelete, "/redactions/"+first.ID, nil, http.StatusNotFound, nil)

	var notes []redaction.Annotation
	h.expect(t, http.MethodGet, "/annotations", nil, http.StatusOK, &notes)
	if len(notes) != 0 {
		t.Fatalf("annotation should cascade with its redaction: %v", notes)
	}

	h.expect(t, http.MethodPut, "/session/selection", SelectRequest{ID: second.ID}, http.StatusOK, nil)
	h.expect(t, http.MethodPut, "/session/selection", SelectRequest{ID: "missing"}, http.StatusNotFound, nil)
}

func TestDraftCommit(t *testing.T) {
	h := newHarness(t, nil)
	h.expect(t, http.MethodPost, "/draft", DraftRequest{}, http.StatusConflict, nil)
	h.loadVideo(t)

	h.expect(t, http.MethodPost, "/draft/commit", session.NewRedaction{}, http.StatusNotFound, nil)
	h.expect(t, http.MethodPost, "/draft", DraftRequest{Region: redaction.Region{X: 5, Y: 5, Width: 40, Height: 40}}, http.StatusCreated, nil)
	start, end := 1.0, 3.0
	h.expect(t, http.MethodPatch, "/draft", session.DraftPatch{Start: &start, End: &end}, http.StatusOK, nil)

	var created redaction.Redaction
	h.expect(t, http.MethodPost, "/draft/commit", session.NewRedaction{Effect: redaction.EffectPixelate}, http.StatusCreated, &created)
	if created.Start != 1 || created.End != 3 || created.Region.Width != 40 {
		t.Fatalf("unexpected committed redaction %+v", created)
	}
}

func TestLanes(t *testing.T) {
	h := newHarness(t, nil)
	h.loadVideo(t)
	a := h.addRedaction(t, 0, 10)
	b := h.addRedaction(t, 5, 15)
	c := h.addRedaction(t, 11, 20)

	var lanes LanesResponse
	h.expect(t, http.MethodGet, "/lanes", nil, http.StatusOK, &lanes)
	if lanes.Count != 2 || lanes.Display != 2 {
		t.Fatalf("unexpected lane counts %+v", lanes)
	}
	want := map[string]int{a.ID: 0, b.ID: 1, c.ID: 0}
	for _, entry := range lanes.Lanes {
		if want[entry.ID] != entry.Lane {
			t.Fatalf("lane for %s = %d, want %d", entry.ID, entry.Lane, want[entry.ID])
		}
	}
}

func TestGraphPreview(t *testing.T) {
	h := newHarness(t, nil)
	h.expect(t, http.MethodGet, "/graph", nil, http.StatusConflict, nil)

	h.loadVideo(t)
	var empty GraphResponse
	h.expect(t, http.MethodGet, "/graph", nil, http.StatusOK, &empty)
	if empty.Composites != 0 || len(empty.Effects) != 0 {
		t.Fatalf("unexpected empty graph %+v", empty)
	}

	h.addRedaction(t, 0, 5)
	var graph GraphResponse
	h.expect(t, http.MethodGet, "/graph", nil, http.StatusOK, &graph)
	if graph.Composites != 1 || graph.Effects[0] != "blackout" {
		t.Fatalf("unexpected graph %+v", graph)
	}
	if !strings.Contains(graph.Graph, "enable='between(t,0,5)'") {
		t.Fatalf("graph missing time gate: %s", graph.Graph)
	}
}

func TestExportFlow(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.gate = make(chan struct{})

	h.expect(t, http.MethodPost, "/exports", nil, http.StatusConflict, nil)
	h.loadVideo(t)

	var errResp ErrorResponse
	h.expect(t, http.MethodPost, "/exports", nil, http.StatusConflict, &errResp)
	if errResp.Code != "NO_REDACTIONS" {
		t.Fatalf("code = %s", errResp.Code)
	}

	h.addRedaction(t, 0, 5)
	h.expect(t, http.MethodGet, "/exports/output", nil, http.StatusNotFound, nil)

	var started struct {
		ID     string         `json:"id"`
		Status session.Status `json:"status"`
	}
	h.expect(t, http.MethodPost, "/exports", nil, http.StatusAccepted, &started)
	if started.ID == "" || started.Status.State != session.StateRendering {
		t.Fatalf("unexpected start response %+v", started)
	}
	h.expect(t, http.MethodPost, "/exports", nil, http.StatusConflict, nil)

	close(h.engine.gate)
	deadline := time.Now().Add(5 * time.Second)
	for {
		var status session.Status
		h.expect(t, http.MethodGet, "/exports/status", nil, http.StatusOK, &status)
		if status.State == session.StateComplete {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("export did not complete, state %s", status.State)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp := h.do(t, http.MethodGet, "/exports/output", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("output status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "rendered-mp4" {
		t.Fatalf("output = %q", data)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "redacted.mp4") {
		t.Fatalf("content disposition = %q", resp.Header.Get("Content-Disposition"))
	}
}

// resetOnHeader resets the session as soon as the download starts, the way a
// concurrent reset request would.
type resetOnHeader struct {
	*httptest.ResponseRecorder
	loop *session.Loop
	t    *testing.T
}

func (w resetOnHeader) WriteHeader(code int) {
	err := w.loop.Do(context.Background(), func(s *session.Session) error {
		s.Reset()
		return nil
	})
	if err != nil {
		w.t.Errorf("reset: %v", err)
	}
	w.ResponseRecorder.WriteHeader(code)
}

func TestExportOutputSurvivesConcurrentReset(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	output := filepath.Join(dir, "clip-redacted.mp4")
	for path, data := range map[string]string{source: "source", output: "rendered-mp4"} {
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	loop := session.NewLoop(session.New())
	loop.Start(context.Background())
	t.Cleanup(loop.Stop)
	err := loop.Do(context.Background(), func(s *session.Session) error {
		if err := s.SetVideo(redaction.VideoAsset{Name: "clip.mp4", Duration: 30, Width: 640, Height: 480, Source: media.Borrow(source)}); err != nil {
			return err
		}
		if _, err := s.BeginExport(true); err != nil {
			return err
		}
		return s.Complete(media.Own(output), "clip-redacted.mp4")
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	handler := exportOutputHandler(ServerConfig{Loop: loop})
	rec := resetOnHeader{ResponseRecorder: httptest.NewRecorder(), loop: loop, t: t}
	handler(rec, httptest.NewRequest(http.MethodGet, "/exports/output", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "rendered-mp4" {
		t.Fatalf("download = %d %q", rec.Code, rec.Body.String())
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("reset should have removed the output, stat = %v", err)
	}

	second := httptest.NewRecorder()
	handler(second, httptest.NewRequest(http.MethodGet, "/exports/output", nil))
	if second.Code != http.StatusNotFound {
		t.Fatalf("after reset status = %d", second.Code)
	}
}

func TestExportSettingsValidation(t *testing.T) {
	h := newHarness(t, nil)
	crf := 80
	h.expect(t, http.MethodPatch, "/session/export-settings", session.ExportSettingsPatch{CRF: &crf}, http.StatusBadRequest, nil)

	crf = 18
	var settings redaction.ExportSettings
	h.expect(t, http.MethodPatch, "/session/export-settings", session.ExportSettingsPatch{CRF: &crf}, http.StatusOK, &settings)
	if settings.CRF != 18 {
		t.Fatalf("crf = %d", settings.CRF)
	}

	resp := h.do(t, http.MethodPatch, "/session/export-settings", map[string]any{"bitrate": 5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown fields should be rejected, got %d", resp.StatusCode)
	}
}

func TestHistoryAndDoctor(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &memoryHistory{entries: []history.Entry{{
		ID:         "abc",
		Status:     history.StatusComplete,
		Filename:   "redacted.mp4",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}}}
	h := newHarness(t, func(cfg *ServerConfig) {
		cfg.History = store
		cfg.Doctor = func() []deps.Status {
			return []deps.Status{{Name: "FFmpeg", Command: "ffmpeg", Path: "/usr/bin/ffmpeg", Available: true}}
		}
	})

	var entries []HistoryEntry
	h.expect(t, http.MethodGet, "/exports/history?limit=5", nil, http.StatusOK, &entries)
	if len(entries) != 1 || entries[0].ElapsedMs != 1500 || entries[0].StartedAt != "2026-03-01T10:00:00.000Z" {
		t.Fatalf("unexpected history %+v", entries)
	}
	if entries[0].Effects == nil {
		t.Fatal("effects should encode as an empty list")
	}
	h.expect(t, http.MethodGet, "/exports/history?limit=zero", nil, http.StatusBadRequest, nil)
	h.expect(t, http.MethodGet, "/exports/history/abc", nil, http.StatusOK, nil)
	h.expect(t, http.MethodGet, "/exports/history/nope", nil, http.StatusNotFound, nil)

	var doctor []DependencyStatus
	h.expect(t, http.MethodGet, "/doctor", nil, http.StatusOK, &doctor)
	if len(doctor) != 1 || doctor[0].Command != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected doctor output %+v", doctor)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w", session.ErrRedactionNotFound), http.StatusNotFound},
		{session.ErrExportInFlight, http.StatusConflict},
		{export.ErrWorkspaceBusy, http.StatusConflict},
		{fmt.Errorf("x: %w", redaction.ErrInvalid), http.StatusBadRequest},
		{session.ErrLoopStopped, http.StatusServiceUnavailable},
		{services.Wrap(services.ErrExternalTool, "engine", "exec", "", nil), http.StatusBadGateway},
		{services.Wrap(services.ErrTimeout, "engine", "exec", "", nil), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := classify(tc.err); status != tc.status {
			t.Errorf("classify(%v) = %d, want %d", tc.err, status, tc.status)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}
