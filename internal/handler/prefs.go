package handler

import (
	"fmt"
	"net/http"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/feed"
	"github.com/cgfarias/mobifacil-front-sub000/internal/prefs"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// GetPreferences handles GET /me/preferences.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	out, err := s.loadPreferences(r, v.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdatePreferences handles PUT /me/preferences. The first-run notice can
// only move from unseen to seen.
func (s *Server) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var body wire.PreferencesUpdate
	if !decodeBody(w, r, &body) {
		return
	}
	if body.NoticeSeen != nil && !*body.NoticeSeen {
		s.writeErr(w, r, fmt.Errorf("%w: the first-run notice cannot be marked unseen", domain.ErrValidation))
		return
	}
	if body.LastView != nil {
		if _, err := feed.ParseView(*body.LastView); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}

	ctx := r.Context()
	if body.NoticeSeen != nil {
		if err := prefs.MarkNoticeSeen(ctx, s.prefs, v.ID); err != nil {
			s.writeErr(w, r, fmt.Errorf("handler.UpdatePreferences: %w: %w", domain.ErrUpstream, err))
			return
		}
	}
	if body.LastView != nil {
		if err := prefs.SetLastView(ctx, s.prefs, v.ID, *body.LastView); err != nil {
			s.writeErr(w, r, fmt.Errorf("handler.UpdatePreferences: %w: %w", domain.ErrUpstream, err))
			return
		}
	}

	out, err := s.loadPreferences(r, v.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) loadPreferences(r *http.Request, viewerID int64) (wire.Preferences, error) {
	seen, err := prefs.NoticeSeen(r.Context(), s.prefs, viewerID)
	if err != nil {
		return wire.Preferences{}, fmt.Errorf("handler.loadPreferences: %w: %w", domain.ErrUpstream, err)
	}
	last, err := prefs.LastView(r.Context(), s.prefs, viewerID)
	if err != nil {
		return wire.Preferences{}, fmt.Errorf("handler.loadPreferences: %w: %w", domain.ErrUpstream, err)
	}
	return wire.Preferences{NoticeSeen: seen, LastView: last}, nil
}
