package web

import (
	"errors"
	"net/http"

	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/arcanaland/scrybe/internal/catalog"
	"github.com/arcanaland/scrybe/internal/scryfall"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

type pageData struct {
	State   browser.State
	Catalog *catalog.Catalog
}

type searchRequest struct {
	Query  string `json:"query"`
	Set    string `json:"set"`
	Type   string `json:"type"`
	Rarity string `json:"rarity"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)

	st, err := b.Snapshot()
	if err != nil {
		http.Error(w, "session closed", http.StatusServiceUnavailable)
		return
	}

	// A session that has not run any action yet opens on a random card.
	// Failures land in the state.
	if st.Generation == 0 {
		_ = b.Random(r.Context(), "")
		if st, err = b.Snapshot(); err != nil {
			http.Error(w, "session closed", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, pageData{State: st, Catalog: s.catalog}); err != nil {
		s.log.WithField("error", err).Error("Failed to render page")
	}
}

func (s *Server) handleRandomForm(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_ = b.Random(r.Context(), r.PostForm.Get("color"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_ = b.Search(r.Context(), r.PostForm.Get("q"), scryfall.Filters{
		Set:    r.PostForm.Get("set"),
		Type:   r.PostForm.Get("type"),
		Rarity: r.PostForm.Get("rarity"),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLoadForm(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)
	_ = b.LoadCard(r.Context(), chi.URLParam(r, "id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleState reports the caller's state. Callers without a live session
// get the empty state and no new session.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	b, ok := s.existingSession(r)
	if !ok {
		render.JSON(w, r, browser.State{})
		return
	}
	s.respondState(w, r, b, nil)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.catalog)
}

func (s *Server) handleRandomAPI(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)
	err := b.Random(r.Context(), r.URL.Query().Get("color"))
	s.respondState(w, r, b, err)
}

func (s *Server) handleSearchAPI(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)

	var req searchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	err := b.Search(r.Context(), req.Query, scryfall.Filters{Set: req.Set, Type: req.Type, Rarity: req.Rarity})
	s.respondState(w, r, b, err)
}

func (s *Server) handleLoadAPI(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)
	err := b.LoadCard(r.Context(), chi.URLParam(r, "id"))
	s.respondState(w, r, b, err)
}

// respondState answers with the session state. Fetch failures are part of
// the state; only rejected input and closed sessions change the status.
func (s *Server) respondState(w http.ResponseWriter, r *http.Request, b *browser.Browser, actionErr error) {
	switch {
	case errors.Is(actionErr, browser.ErrEmptyQuery), errors.Is(actionErr, browser.ErrInvalidColor):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": actionErr.Error()})
		return
	case errors.Is(actionErr, browser.ErrClosed):
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"error": "Session closed"})
		return
	}

	st, err := b.Snapshot()
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"error": "Session closed"})
		return
	}
	render.JSON(w, r, st)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.api.Card(r.Context(), id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error":   err,
			"card_id": id,
		}).Warn("Failed to fetch card for QR code")
		status := http.StatusBadGateway
		if errors.Is(err, scryfall.ErrNotFound) {
			status = http.StatusNotFound
		}
		render.Status(r, status)
		render.JSON(w, r, map[string]string{"error": "Card not available"})
		return
	}

	link := c.ScryfallURI
	if link == "" {
		link = "https://scryfall.com/card/" + c.Set + "/" + c.ID
	}
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		s.log.WithField("error", err).Error("Failed to encode QR code")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to encode QR code"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}

// handleWebSocket streams the session state as JSON after every change.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	b := s.session(w, r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithField("error", err).Warn("WebSocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	for st := range b.Subscribe(ctx) {
		if err := wsjson.Write(ctx, conn, st); err != nil {
			s.log.WithField("error", err).Debug("WebSocket write failed")
			return
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
