package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pefman/health-duel/internal/api"
	"github.com/pefman/health-duel/internal/models"
)

func TestCompare(t *testing.T) {
	inviter := models.HealthInfo{Name: "Kim", Height: 180, Weight: 71, ExerciseCount: 1, SmokeCount: 0, DrinkingCount: 1}
	invitee := models.HealthInfo{Name: "Lee", Height: 170, Weight: 95, ExerciseCount: 5, SmokeCount: 10, DrinkingCount: 1}
	m := compare(inviter, invitee)
	want := map[models.Property]string{
		models.Height:        "Kim",
		models.Weight:        "Kim",
		models.ExerciseCount: "Lee",
		models.SmokeCount:    "Kim",
		models.DrinkingCount: "Kim", // tie goes to the inviter
	}
	for p, w := range want {
		if m.PropertyWinners[p] != w {
			t.Fatalf("%s winner = %q, want %q", p, m.PropertyWinners[p], w)
		}
	}
	if m.WinnerInfo.Name != "Kim" || m.LoserInfo.Name != "Lee" {
		t.Fatalf("winner = %q loser = %q", m.WinnerInfo.Name, m.LoserInfo.Name)
	}
	if m2 := compare(invitee, inviter); m2.WinnerInfo.Name != "Kim" {
		t.Fatalf("swapped winner = %q", m2.WinnerInfo.Name)
	}
}

func TestStorePersistsMatches(t *testing.T) {
	dir := t.TempDir()
	s := newStore(dir)
	a := s.addProfile(models.ProfileInput{Name: "Kim", ExerciseCount: 4})
	b := s.addProfile(models.ProfileInput{Name: "Lee", SmokeCount: 20})
	if a.Rank != "A+" || b.Rank != "C" {
		t.Fatalf("ranks = %s %s", a.Rank, b.Rank)
	}
	rec := s.addMatch(a.ID, b.ID, compare(models.HealthInfo{Name: "Kim", ExerciseCount: 4}, models.HealthInfo{Name: "Lee", SmokeCount: 20}))

	// a fresh store reads the record back from disk
	got, ok := newStore(dir).match(rec.ID)
	if !ok || got.Data.WinnerInfo.Name != "Kim" {
		t.Fatalf("reloaded = %+v %v", got, ok)
	}

	h := s.history(b.ID)
	if len(h) != 1 || h[0].OpponentName != "Kim" || h[0].Result != "lose" {
		t.Fatalf("history = %+v", h)
	}
	if len(s.history("stranger")) != 0 {
		t.Fatal("history leaked to another user")
	}
}

func TestSanitizeIDForFile(t *testing.T) {
	if got := sanitizeIDForFile("../../etc/passwd"); strings.ContainsAny(got, "./") {
		t.Fatalf("sanitized = %q", got)
	}
	if got := sanitizeIDForFile("///"); got != "match" {
		t.Fatalf("sanitized = %q", got)
	}
}

func TestEndToEndWithClient(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		b := &backend{store: newStore(""), legacy: legacy}
		srv := httptest.NewServer(b.routes())
		c := api.NewClient(api.Config{BaseURL: srv.URL})
		ctx := t.Context()

		u1, err := c.SubmitProfile(ctx, models.ProfileInput{Name: "Kim", Height: 180, Weight: 72})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		u2, err := c.SubmitProfile(ctx, models.ProfileInput{Name: "Kim", Height: 160, Weight: 90, SmokeCount: 5})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		mid, err := c.RequestMatch(ctx, u1, u2)
		if err != nil || mid == "" {
			t.Fatalf("request match: %q %v", mid, err)
		}
		m, err := c.FetchMatch(ctx, mid)
		if err != nil {
			t.Fatalf("legacy=%v fetch match: %v", legacy, err)
		}
		if m.WinnerInfo.Name != "Kim" || m.LoserInfo.Name != "Kim (2)" {
			t.Fatalf("names = %q %q", m.WinnerInfo.Name, m.LoserInfo.Name)
		}
		if _, err := c.FetchLegacyMatch(ctx, u1, u2); err != nil {
			t.Fatalf("legacy match: %v", err)
		}
		p, err := c.FetchProfile(ctx, u2)
		if err != nil || p.Name != "Kim" {
			t.Fatalf("profile = %+v %v", p, err)
		}
		h, err := c.FetchMatchHistory(ctx, u1)
		if err != nil || len(h) != 1 || h[0].MatchID != mid || h[0].Result != "win" {
			t.Fatalf("history = %+v %v", h, err)
		}
		srv.Close()
	}
}

func TestCreateProfileRejectsMissingName(t *testing.T) {
	b := &backend{store: newStore("")}
	rec := httptest.NewRecorder()
	b.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"height":170}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out["message"] != "missing name" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHistoryWithSharedNames(t *testing.T) {
	b := &backend{store: newStore("")}
	u1 := b.store.addProfile(models.ProfileInput{Name: "Kim", Height: 150, SmokeCount: 5})
	u2 := b.store.addProfile(models.ProfileInput{Name: "Kim", Height: 190, ExerciseCount: 5})
	inviter, invitee, ok := b.pair(u1.ID, u2.ID)
	if !ok {
		t.Fatal("pair failed")
	}
	b.store.addMatch(u1.ID, u2.ID, compare(inviter, invitee))
	if h := b.store.history(u2.ID); len(h) != 1 || h[0].Result != "win" {
		t.Fatalf("invitee history = %+v", h)
	}
	if h := b.store.history(u1.ID); len(h) != 1 || h[0].Result != "lose" {
		t.Fatalf("inviter history = %+v", h)
	}
}
