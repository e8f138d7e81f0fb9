// Command mockapi is a development stand-in for the remote health-match backend.
package main

import (
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pefman/health-duel/internal/models"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// simple CORS for GET/POST/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type backend struct {
	store *store
	// legacy switches responses to the older snake_case shape
	legacy bool
}

func (b *backend) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/profiles", b.createProfile).Methods(http.MethodPost)
	r.HandleFunc("/api/submit", b.createProfile).Methods(http.MethodPost)
	r.HandleFunc("/profiles/{id}", b.getProfile).Methods(http.MethodGet)
	r.HandleFunc("/health-match-results", b.requestMatch).Methods(http.MethodGet)
	r.HandleFunc("/health-match-result", b.requestMatch).Methods(http.MethodGet)
	r.HandleFunc("/health-match-results/{id}", b.getMatch).Methods(http.MethodGet)
	r.HandleFunc("/match", b.legacyMatch).Methods(http.MethodGet)
	r.HandleFunc("/match-history", b.matchHistory).Methods(http.MethodGet)
	return withCORS(r)
}

func (b *backend) createProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	p := b.store.addProfile(in)
	slog.InfoContext(r.Context(), "mockapi: profile created", "id", p.ID, "name", p.Name)
	writeJSON(w, map[string]string{"inviteeId": p.ID, "id": p.ID})
}

func (b *backend) getProfile(w http.ResponseWriter, r *http.Request) {
	rec, ok := b.store.profile(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if b.legacy {
		writeJSON(w, map[string]any{"user_id": rec.Profile.ID, "nickname": rec.Profile.Name, "grade": rec.Profile.Rank, "created_at": rec.Profile.CreatedAt})
		return
	}
	writeJSON(w, rec.Profile)
}

// pair looks up both profiles and returns their infos with distinct names.
func (b *backend) pair(inviterID, inviteeID string) (models.HealthInfo, models.HealthInfo, bool) {
	a, ok1 := b.store.profile(inviterID)
	c, ok2 := b.store.profile(inviteeID)
	if !ok1 || !ok2 {
		return models.HealthInfo{}, models.HealthInfo{}, false
	}
	ai, ci := a.Input.Info(), c.Input.Info()
	if ai.Name == ci.Name {
		ci.Name += " (2)"
	}
	return ai, ci, true
}

func (b *backend) requestMatch(w http.ResponseWriter, r *http.Request) {
	inviterID := r.URL.Query().Get("inviterId")
	inviteeID := r.URL.Query().Get("inviteeId")
	inviter, invitee, ok := b.pair(inviterID, inviteeID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown inviter or invitee")
		return
	}
	rec := b.store.addMatch(inviterID, inviteeID, compare(inviter, invitee))
	slog.InfoContext(r.Context(), "mockapi: match created", "id", rec.ID, "winner", rec.Data.WinnerInfo.Name)
	if b.legacy {
		writeJSON(w, map[string]string{"match_id": rec.ID})
		return
	}
	writeJSON(w, map[string]string{"matchId": rec.ID})
}

func (b *backend) getMatch(w http.ResponseWriter, r *http.Request) {
	rec, ok := b.store.match(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	b.writeMatch(w, rec.Data)
}

func (b *backend) legacyMatch(w http.ResponseWriter, r *http.Request) {
	inviter, invitee, ok := b.pair(r.URL.Query().Get("user1Id"), r.URL.Query().Get("user2Id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown users")
		return
	}
	b.writeMatch(w, compare(inviter, invitee))
}

func (b *backend) writeMatch(w http.ResponseWriter, m models.MatchData) {
	if !b.legacy {
		writeJSON(w, m)
		return
	}
	info := func(h models.HealthInfo) map[string]any {
		return map[string]any{
			"name": h.Name, "height": h.Height, "weight": h.Weight,
			"workoutCount": h.ExerciseCount, "smokingCount": h.SmokeCount, "drinking_count": h.DrinkingCount,
		}
	}
	writeJSON(w, map[string]any{
		"property_winners": m.PropertyWinners,
		"winner_info":      info(m.WinnerInfo),
		"loser_info":       info(m.LoserInfo),
	})
}

func (b *backend) matchHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}
	list := b.store.history(userID)
	if !b.legacy {
		writeJSON(w, list)
		return
	}
	rows := make([]map[string]any, 0, len(list))
	for _, m := range list {
		rows = append(rows, map[string]any{"match_id": m.MatchID, "opponent_name": m.OpponentName, "result": m.Result, "created_at": m.PlayedAt})
	}
	writeJSON(w, map[string]any{"matches": rows})
}

func main() {
	b := &backend{
		store:  newStore(getMatchPersistDir()),
		legacy: getenv("MOCKAPI_LEGACY", "") == "1",
	}
	// Prefer Cloud Run's PORT env var when present
	port := os.Getenv("PORT")
	if port == "" {
		port = getenv("API_PORT", "8080")
	}
	addr := ":" + port
	slog.Info("mockapi listening", "addr", addr, "legacy", b.legacy, "persist", b.store.dir)
	log.Fatal(http.ListenAndServe(addr, b.routes()))
}
