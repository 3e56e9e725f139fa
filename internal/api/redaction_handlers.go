package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"redactor/internal/session"
)

func listRedactionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.Redactions(), nil
		})
	}
}

func addRedactionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params session.NewRedaction
		if !decodeJSON(w, r, &params) {
			return
		}
		mutate(cfg, w, r, http.StatusCreated, func(s *session.Session) (any, error) {
			return s.AddRedaction(params)
		})
	}
}

func updateRedactionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch session.RedactionPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		id := chi.URLParam(r, "id")
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.UpdateRedaction(id, patch)
		})
	}
}

func removeRedactionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mutate(cfg, w, r, http.StatusNoContent, func(s *session.Session) (any, error) {
			return nil, s.RemoveRedaction(id)
		})
	}
}

func toggleRedactionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.ToggleRedaction(id)
		})
	}
}

func reorderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OrderRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			s.ReorderRedactions(req.IDs)
			return s.Redactions(), nil
		})
	}
}

func listAnnotationsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.Annotations(), nil
		})
	}
}

func addAnnotationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params session.NewAnnotation
		if !decodeJSON(w, r, &params) {
			return
		}
		mutate(cfg, w, r, http.StatusCreated, func(s *session.Session) (any, error) {
			return s.AddAnnotation(params)
		})
	}
}

func updateAnnotationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch session.AnnotationPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		id := chi.URLParam(r, "id")
		mutate(cfg, w, r, http.StatusOK, func(s *session.Session) (any, error) {
			return s.UpdateAnnotation(id, patch)
		})
	}
}

func removeAnnotationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mutate(cfg, w, r, http.StatusNoContent, func(s *session.Session) (any, error) {
			return nil, s.RemoveAnnotation(id)
		})
	}
}
