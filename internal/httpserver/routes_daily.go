// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily challenge.
//   - GET  /daily             → today's (or ?date=) puzzle, generated on first request
//   - POST /daily/result      → submit a finished chain played offline
//   - GET  /daily/leaderboard → top results for today (or ?date=)
//
// Each identity can record one result per date (enforced by the DB).
// Solutions and hints are never sent to the client. Future dates are refused
// so puzzles cannot be previewed.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/daily"
	"github.com/robalobadob/wordchain/apps/go-server/internal/puzzle"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
)

func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDaily)
		r.Post("/result", s.handleDailyResult)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

type dailyRes struct {
	Date       string          `json:"date"`
	StartWord  string          `json:"startWord"`
	TargetWord string          `json:"targetWord"`
	ParMoves   int             `json:"parMoves"`
	Difficulty puzzle.Tier     `json:"difficulty"`
	Metadata   puzzle.Metadata `json:"metadata"`
	Played     bool            `json:"played"`
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	pz, err := s.d.Daily.Get(r.Context(), date)
	if err != nil {
		s.dailyUnavailable(w, err)
		return
	}
	played, err := s.d.Results.AlreadyPlayed(r.Context(), identityFrom(r.Context()).ID, pz.Date)
	if err != nil {
		log.Warn().Err(err).Msg("already played")
	}
	writeJSON(w, http.StatusOK, dailyRes{
		Date:       pz.Date,
		StartWord:  pz.StartWord,
		TargetWord: pz.TargetWord,
		ParMoves:   pz.ParMoves,
		Difficulty: pz.Difficulty,
		Metadata:   pz.Metadata,
		Played:     played,
	})
}

// Bounds on client-reported figures for offline results.
const (
	maxInvalidAttempts = 1000
	maxElapsed         = 24 * time.Hour
)

type dailyResultReq struct {
	Date            string   `json:"date"`
	Words           []string `json:"words"`
	ElapsedMs       int64    `json:"elapsedMs"`
	InvalidAttempts int      `json:"invalidAttempts"`
}

type dailyResultRes struct {
	Score scoring.GameScore `json:"score"`
	Moves int               `json:"moves"`
	Par   int               `json:"parMoves"`
}

// handleDailyResult re-validates an offline chain against the published
// puzzle and scores it server side. Move times are unknown, so the elapsed
// time is spread evenly across moves.
func (s *Server) handleDailyResult(w http.ResponseWriter, r *http.Request) {
	var req dailyResultReq
	if !decode(w, r, &req) {
		return
	}
	date, ok := s.dateParam(w, req.Date)
	if !ok {
		return
	}
	if req.ElapsedMs < 0 || req.ElapsedMs > maxElapsed.Milliseconds() {
		writeError(w, http.StatusBadRequest, "elapsedMs must be between 0 and 86400000")
		return
	}
	if req.InvalidAttempts < 0 || req.InvalidAttempts > maxInvalidAttempts {
		writeError(w, http.StatusBadRequest, "invalidAttempts must be between 0 and 1000")
		return
	}
	pz, err := s.d.Daily.Get(r.Context(), date)
	if err != nil {
		s.dailyUnavailable(w, err)
		return
	}

	ws := make([]string, len(req.Words))
	for i, word := range req.Words {
		ws[i] = strings.ToLower(strings.TrimSpace(word))
	}
	if err := s.d.Validator.ValidateChain(ws); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": chain.Reason(err), "kind": errorKind(err)})
		return
	}
	switch {
	case ws[0] != pz.StartWord:
		writeError(w, http.StatusUnprocessableEntity, "chain must begin with "+pz.StartWord)
		return
	case ws[len(ws)-1] != pz.TargetWord:
		writeError(w, http.StatusUnprocessableEntity, "chain must end with "+pz.TargetWord)
		return
	case len(ws) < puzzle.DefaultMinPathWords:
		writeError(w, http.StatusUnprocessableEntity, "chain is too short")
		return
	}

	me := identityFrom(r.Context())
	played, err := s.d.Results.AlreadyPlayed(r.Context(), me.ID, pz.Date)
	if err != nil {
		log.Error().Err(err).Msg("already played")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeError(w, http.StatusConflict, "already_played")
		return
	}

	elapsed := time.Duration(req.ElapsedMs) * time.Millisecond
	moves := make([]scoring.Move, 0, len(ws)-1+req.InvalidAttempts)
	for range req.InvalidAttempts {
		moves = append(moves, scoring.Move{Invalid: true})
	}
	per := elapsed / time.Duration(len(ws)-1)
	for _, word := range ws[1:] {
		moves = append(moves, scoring.Move{Word: word, MoveTime: per})
	}
	gs := scoring.Replay(s.d.Scoring, moves, scoring.Summary{
		Mode:      scoring.ModeDaily,
		Completed: true,
		Moves:     len(ws) - 1,
		Par:       pz.ParMoves,
		Elapsed:   elapsed,
	})

	if err := s.d.Results.InsertResult(r.Context(), daily.Result{
		UserID:    me.ID,
		Date:      pz.Date,
		Moves:     len(ws) - 1,
		Score:     gs.Total,
		ElapsedMs: int(req.ElapsedMs),
	}); err != nil {
		log.Error().Err(err).Msg("insert daily result")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, dailyResultRes{Score: gs, Moves: len(ws) - 1, Par: pz.ParMoves})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	rows, err := s.d.Results.Leaderboard(r.Context(), daily.DateKey(date), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if rows == nil {
		rows = []daily.LBRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": daily.DateKey(date), "results": rows})
}

// dateParam parses an optional YYYY-MM-DD value, defaulting to today (UTC).
func (s *Server) dateParam(w http.ResponseWriter, raw string) (time.Time, bool) {
	today, _ := daily.ParseDate(daily.DateKey(s.now()))
	if raw == "" {
		return today, true
	}
	d, err := daily.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	if d.After(today) {
		writeError(w, http.StatusBadRequest, "future_date")
		return time.Time{}, false
	}
	return d, true
}

func (s *Server) dailyUnavailable(w http.ResponseWriter, err error) {
	if errors.Is(err, puzzle.ErrNoPuzzleFound) || errors.Is(err, puzzle.ErrNoStartWordFound) {
		log.Warn().Err(err).Msg("daily puzzle unavailable")
		writeError(w, http.StatusServiceUnavailable, "daily_unavailable")
		return
	}
	log.Error().Err(err).Msg("daily puzzle")
	writeError(w, http.StatusInternalServerError, "internal")
}
