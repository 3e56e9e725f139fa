package api

import (
	"net/http"
	"strings"

	"redactor/internal/logging"
	"redactor/internal/session"
)

// mutate runs fn on the session loop and writes its result with status.
func mutate(cfg ServerConfig, w http.ResponseWriter, r *http.Request, status int, fn func(*session.Session) (any, error)) {
	var result any
	err := cfg.Loop.Do(r.Context(), func(s *session.Session) error {
		var err error
		result, err = fn(s)
		return err
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if result == nil {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, result)
}

func snapshotHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cfg.Loop.Snapshot(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			s.Reset()
			return s.Snapshot(), nil
		})
	}
}

func loadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VideoRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		path := strings.TrimSpace(req.Path)
		if path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}
		if cfg.Videos == nil {
			WriteError(w, http.StatusNotImplemented, "video loading is not configured", "NOT_IMPLEMENTED")
			return
		}
		// Probe first so unreadable media never touches the session.
		asset, err := cfg.Videos.Open(r.Context(), path)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			if err := s.SetVideo(asset); err != nil {
				if asset.Source != nil {
					if releaseErr := asset.Source.Release(); releaseErr != nil {
						cfg.logger().Warn("release rejected source failed", logging.Error(releaseErr))
					}
				}
				return nil, err
			}
			return asset, nil
		})
	}
}

func clearVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusNoContent, func(s *session.Session) (any, error) {
			s.ClearVideo()
			return nil, nil
		})
	}
}

func transportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransportRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			if req.CurrentTime != nil {
				s.SetCurrentTime(*req.CurrentTime)
			}
			if req.Playing != nil {
				s.SetPlaying(*req.Playing)
			}
			return TransportRequest{CurrentTime: ptr(s.CurrentTime()), Playing: ptr(s.Playing())}, nil
		})
	}
}

func exportSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch session.ExportSettingsPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.SetExportSettings(patch)
		})
	}
}

func selectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			if err := s.SelectRedaction(strings.TrimSpace(req.ID)); err != nil {
				return nil, err
			}
			return SelectRequest{ID: s.Selected()}, nil
		})
	}
}

func createDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DraftRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		mutate(cfg, w, r, http.StatusCreated, func(s *session.Session) (any, error) {
			if _, ok := s.Video(); !ok {
				return nil, session.ErrNoVideo
			}
			s.CreateDraft(req.Region)
			draft, _ := s.Draft()
			return draft, nil
		})
	}
}

func updateDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch session.DraftPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			if err := s.UpdateDraft(patch); err != nil {
				return nil, err
			}
			draft, _ := s.Draft()
			return draft, nil
		})
	}
}

func clearDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusNoContent, func(s *session.Session) (any, error) {
			s.ClearDraft()
			return nil, nil
		})
	}
}

func commitDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params session.NewRedaction
		if !decodeJSON(w, r, &params) {
			return
		}
		mutate(cfg, w, r, http.StatusCreated, func(s *session.Session) (any, error) {
			return s.CommitDraft(params)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
