package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pefman/health-duel/internal/battle"
	"github.com/pefman/health-duel/internal/form"
	"github.com/pefman/health-duel/internal/profile"
	"github.com/pefman/health-duel/internal/stats"
)

type formPage struct {
	Title     string
	InviterID string
	Fields    []form.Field
	Answers   form.Answers
	Progress  float64
	Ready     bool
	Error     string
}

type battlePage struct {
	Title  string
	Query  string
	UserID string
}

type profilePage struct {
	Title  string
	View   profile.View
	Record stats.Record
}

func inviterFrom(v url.Values) string {
	// early invite links used ?ID=
	for _, k := range []string{"inviterId", "ID"} {
		if id := strings.TrimSpace(v.Get(k)); id != "" {
			return id
		}
	}
	return ""
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	target := "/form"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	inviter := inviterFrom(r.URL.Query())
	// returning users without an invite go straight to their profile
	if id, ok := s.sessions.Get(r); ok && inviter == "" {
		http.Redirect(w, r, "/profile/"+url.PathEscape(id), http.StatusFound)
		return
	}
	answers := form.Answers{}
	s.render(w, r, http.StatusOK, "form.html", formPage{
		Title:     "Health Risk Report",
		InviterID: inviter,
		Fields:    form.Fields,
		Answers:   answers,
		Progress:  answers.Progress(),
	})
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	answers := form.ParseAnswers(r.PostForm)
	inviter := inviterFrom(r.PostForm)
	page := formPage{
		Title:     "Health Risk Report",
		InviterID: inviter,
		Fields:    form.Fields,
		Answers:   answers,
		Progress:  answers.Progress(),
		Ready:     answers.Ready(),
	}

	res, err := s.collector.Submit(r.Context(), inviter, answers)
	switch {
	case err == nil:
	case errors.Is(err, form.ErrIncomplete):
		page.Error = "Please answer every question."
		s.render(w, r, http.StatusBadRequest, "form.html", page)
		return
	case errors.Is(err, form.ErrInvalid):
		page.Error = err.Error()
		s.render(w, r, http.StatusBadRequest, "form.html", page)
		return
	default:
		slog.ErrorContext(r.Context(), "form: submit failed", "inviterId", inviter, "err", err)
		if res.UserID != "" {
			s.sessions.Set(w, r, res.UserID)
		}
		page.Error = "Analysis failed. Please try again."
		s.render(w, r, http.StatusBadGateway, "form.html", page)
		return
	}

	s.sessions.Set(w, r, res.UserID)
	slog.InfoContext(r.Context(), "form: submitted", "userId", res.UserID, "matchId", res.MatchID)
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	a := form.ParseAnswers(r.URL.Query())
	writeJSON(w, map[string]any{"progress": a.Progress(), "ready": a.Ready()})
}

func (s *Server) handleBattlePage(w http.ResponseWriter, r *http.Request) {
	q := battle.ParseQuery(r.URL.Query())
	userID, _ := s.sessions.Get(r)
	s.render(w, r, http.StatusOK, "battle.html", battlePage{
		Title:  "Underground Arena",
		Query:  q.Values().Encode(),
		UserID: userID,
	})
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}
	view := s.viewer.Load(r.Context(), id)
	rec, _ := s.tally.Get(view.Profile.Name)
	s.render(w, r, http.StatusOK, "profile.html", profilePage{
		Title:  "Profile",
		View:   view,
		Record: rec,
	})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}
	link := profile.InviteLink(s.origin, id)
	writeJSON(w, map[string]string{"link": link, "message": profile.ShareMessage(link)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.tally.Leaders(20))
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/form", http.StatusSeeOther)
}
