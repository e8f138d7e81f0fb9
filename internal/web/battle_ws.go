package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/health-duel/internal/battle"
	"github.com/pefman/health-duel/internal/models"
)

const writeWait = 5 * time.Second

type matchInfo struct {
	Participants []string          `json:"participants"`
	Source       battle.Source     `json:"source"`
	Winner       models.HealthInfo `json:"winnerInfo"`
	Loser        models.HealthInfo `json:"loserInfo"`
	Config       battleSettings    `json:"config"`
}

type battleSettings struct {
	Damage      int   `json:"damage"`
	StepDelayMS int64 `json:"stepDelayMs"`
}

// handleBattleWS replays a battle over the socket. The socket closing cancels the
// runner, so no step fires after the viewer has left.
func (s *Server) handleBattleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "ws: upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// hijacked connections outlive http.Server.Shutdown, so the battle hangs off the
	// server's base context instead of the request
	ctx, cancel := context.WithCancel(s.base)
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	q := battle.ParseQuery(r.URL.Query())
	match, src := battle.Resolve(ctx, s.matches, q, s.fallback.Match)
	a, b := match.Participants()
	cfg := s.runner.Config()
	send := func(m models.WsMsg) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(m)
	}
	if err := send(models.WsMsg{Type: "match", Data: matchInfo{
		Participants: []string{a, b},
		Source:       src,
		Winner:       match.WinnerInfo,
		Loser:        match.LoserInfo,
		Config:       battleSettings{Damage: cfg.Damage, StepDelayMS: cfg.StepDelay.Milliseconds()},
	}}); err != nil {
		return
	}

	var writeErr error
	final, err := s.runner.Run(ctx, match, func(st battle.State) {
		if writeErr != nil {
			return
		}
		if werr := send(models.WsMsg{Type: "state", Data: st}); werr != nil {
			writeErr = werr
			cancel()
		}
	})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		slog.InfoContext(r.Context(), "ws: battle cancelled", "matchId", q.MatchID, "step", final.CurrentStep)
		if s.base.Err() != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
		}
		return
	default:
		slog.ErrorContext(r.Context(), "ws: battle failed", "matchId", q.MatchID, "err", err)
		_ = send(models.WsMsg{Type: "error", Data: err.Error()})
		return
	}

	winner, loser, draw := battle.Outcome(final)
	if draw {
		winner, loser = a, b
	}
	s.tally.SaveOutcome(winner, loser, draw)
	_ = send(models.WsMsg{Type: "done", Data: final})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle finished"),
		time.Now().Add(writeWait))
}
