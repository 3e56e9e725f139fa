package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"redactor/internal/deps"
	"redactor/internal/export"
	"redactor/internal/filtergraph"
	"redactor/internal/logging"
	"redactor/internal/session"
	"redactor/internal/textutil"
	"redactor/internal/timeline"
)

const defaultHistoryLimit = 50

func lanesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			redactions := s.Redactions()
			assignment := timeline.AssignLanes(redactions)
			resp := LanesResponse{
				Count:   assignment.Count,
				Display: timeline.DisplayLanes(assignment.Count, cfg.MinLanes, cfg.MaxLanes),
				Lanes:   make([]LaneEntry, 0, len(redactions)),
			}
			for _, red := range redactions {
				lane, _ := assignment.Lane(red.ID)
				resp.Lanes = append(resp.Lanes, LaneEntry{ID: red.ID, Lane: lane})
			}
			return resp, nil
		})
	}
}

func graphHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			video, ok := s.Video()
			if !ok {
				return nil, session.ErrNoVideo
			}
			compiled, err := filtergraph.Compile(s.Redactions(), video.Width, video.Height)
			if err != nil {
				return nil, err
			}
			return GraphResponse{
				Graph:      compiled.String(),
				Effects:    compiled.Effects,
				Composites: len(compiled.Graph.Composites()),
				Width:      video.Width,
				Height:     video.Height,
			}, nil
		})
	}
}

func startExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Exporter == nil {
			WriteError(w, http.StatusNotImplemented, "export is not configured", "NOT_IMPLEMENTED")
			return
		}
		run, err := cfg.Exporter.Begin(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		logger := cfg.logger()
		go func() {
			if _, err := run.Execute(cfg.baseContext()); err != nil && !errors.Is(err, export.ErrSuperseded) {
				logger.Debug("background export ended with error", logging.String("export_id", run.ID), logging.Error(err))
			}
		}()
		WriteJSON(w, http.StatusAccepted, struct {
			ID     string         `json:"id"`
			Status session.Status `json:"status"`
		}{ID: run.ID, Status: run.Status()})
	}
}

func exportStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.Processing(), nil
		})
	}
}

type pathHandle interface {
	Path() string
}

func exportOutputHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			file     *os.File
			filename string
			found    bool
		)
		// The output is opened on the loop, where releases also run, so a
		// completion or reset that follows can only unlink the path. The open
		// descriptor keeps the bytes readable until the response is written.
		// The wait ignores client cancellation so an opened file is never
		// orphaned by an early return.
		err := cfg.Loop.Do(context.WithoutCancel(r.Context()), func(s *session.Session) error {
			handle, ok := s.Output()
			if !ok {
				return nil
			}
			p, ok := handle.(pathHandle)
			if !ok {
				return nil
			}
			found = true
			filename = textutil.ExportFileName(s.Processing().Filename, filepath.Base(p.Path()), ".mp4")
			if f, err := os.Open(p.Path()); err == nil {
				file = f
			}
			return nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !found {
			WriteError(w, http.StatusNotFound, "no completed export", "NOT_FOUND")
			return
		}
		if file == nil {
			WriteError(w, http.StatusGone, "export output is no longer available", "GONE")
			return
		}
		defer file.Close()
		info, err := file.Stat()
		if err != nil {
			WriteError(w, http.StatusGone, "export output is no longer available", "GONE")
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeContent(w, r, filename, info.ModTime(), file)
	}
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteJSON(w, http.StatusOK, []HistoryEntry{})
			return
		}
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = n
		}
		entries, err := cfg.History.List(r.Context(), limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := make([]HistoryEntry, len(entries))
		for i, e := range entries {
			resp[i] = FromHistoryEntry(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func historyEntryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteError(w, http.StatusNotFound, "export history is disabled", "NOT_FOUND")
			return
		}
		entry, err := cfg.History.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, FromHistoryEntry(entry))
	}
}

func doctorHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var statuses []deps.Status
		if cfg.Doctor != nil {
			statuses = cfg.Doctor()
		}
		resp := make([]DependencyStatus, len(statuses))
		for i, s := range statuses {
			resp[i] = FromDependencyStatus(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
