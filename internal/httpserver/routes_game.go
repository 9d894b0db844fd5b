// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for playing a chain.
//   - POST /game/new      → start an endless, timed or daily game
//   - POST /game/word     → submit the next word
//   - POST /game/undo     → take back the last word
//   - POST /game/hint     → masked next words (costs points)
//   - POST /game/powerup  → spend a power-up (costs points)
//   - POST /game/finish   → end the game and return the final score
//
// Dictionary helpers (no session):
//   - POST /chain/validate     → check a whole chain
//   - GET  /words/{word}/next  → legal follow-ups for a word
//
// Sessions live in the in-memory store and are bound to the identity that
// created them; other identities get 404.

package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/daily"
	"github.com/robalobadob/wordchain/apps/go-server/internal/game"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/word", s.handleWord)
		r.Post("/undo", s.handleUndo)
		r.Post("/hint", s.handleHint)
		r.Post("/powerup", s.handlePowerUp)
		r.Post("/finish", s.handleFinish)
	})
}

func (s *Server) mountDictionary(r chi.Router) {
	r.Post("/chain/validate", s.handleValidateChain)
	r.Get("/words/{word}/next", s.handleNextWords)
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Mode      string `json:"mode"`      // "endless" (default) | "timed" | "daily"
	StartWord string `json:"startWord"` // optional, endless/timed only
	Date      string `json:"date"`      // optional, daily only; defaults to today (UTC)
}

type newGameRes struct {
	GameID      string   `json:"gameId"`
	Mode        string   `json:"mode"`
	Chain       []string `json:"chain"`
	Date        string   `json:"date,omitempty"`
	Target      string   `json:"targetWord,omitempty"`
	Par         int      `json:"parMoves,omitempty"`
	TimeLimitMs int64    `json:"timeLimitMs,omitempty"`
}

// handleNewGame creates a session and stores it under the caller's identity.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	mode := scoring.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if mode == "" {
		mode = scoring.ModeEndless
	}
	if !mode.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown mode")
		return
	}
	me := identityFrom(r.Context())
	now := s.now()

	var (
		g   *game.Session
		err error
	)
	if mode == scoring.ModeDaily {
		if s.d.Daily == nil || s.d.Results == nil {
			writeError(w, http.StatusNotImplemented, "daily_disabled")
			return
		}
		date, ok := s.dateParam(w, req.Date)
		if !ok {
			return
		}
		played, err := s.d.Results.AlreadyPlayed(r.Context(), me.ID, daily.DateKey(date))
		if err != nil {
			log.Error().Err(err).Msg("already played")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if played {
			writeError(w, http.StatusConflict, "already_played")
			return
		}
		pz, err := s.d.Daily.Get(r.Context(), date)
		if err != nil {
			s.dailyUnavailable(w, err)
			return
		}
		g, err = game.NewDaily(s.d.Validator, s.d.Scoring, pz, now)
		if err != nil {
			// The dictionary changed under a published puzzle.
			log.Error().Err(err).Str("date", pz.Date).Msg("daily start word rejected")
			writeError(w, http.StatusServiceUnavailable, "daily_unavailable")
			return
		}
	} else {
		g, err = game.New(s.d.Validator, s.d.Scoring, mode, req.StartWord, now)
		if err != nil {
			writeError(w, http.StatusBadRequest, chain.Reason(err))
			return
		}
	}
	g.Owner = me.ID

	if err := s.d.Sessions.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.d.Metrics.ActiveGames.Add(r.Context(), 1)
	log.Debug().Str("gameId", g.ID).Str("mode", string(mode)).Str("owner", me.ID).Msg("game started")

	writeJSON(w, http.StatusOK, newGameRes{
		GameID:      g.ID,
		Mode:        string(g.Mode),
		Chain:       g.Words(),
		Date:        g.Date,
		Target:      g.Target,
		Par:         g.Par,
		TimeLimitMs: g.TimeLimit().Milliseconds(),
	})
}

type gameReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type wordRes struct {
	game.MoveResult
	Kind  string   `json:"kind,omitempty"`
	Chain []string `json:"chain"`
	Total int      `json:"total"`
}

// handleWord applies the next word. Rejected words answer 200 with valid=false
// so the client can show the reason and the penalty.
func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	req, g, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := g.Submit(req.Word, s.now())
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.d.Metrics.RecordWord(r.Context(), res.Valid, errorKind(res.Err))
	if res.State == game.StateCompleted {
		s.recordDaily(r, g)
	}
	writeJSON(w, http.StatusOK, wordRes{
		MoveResult: res,
		Kind:       errorKind(res.Err),
		Chain:      g.Words(),
		Total:      g.Score().Total,
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.session(w, r)
	if !ok {
		return
	}
	removed, err := g.Undo(s.now())
	if err != nil {
		s.gameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed, "chain": g.Words(), "total": g.Score().Total})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.session(w, r)
	if !ok {
		return
	}
	hints, penalty, err := g.Hint(s.now())
	if err != nil {
		s.gameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hints": hints, "penalty": penalty, "total": g.Score().Total})
}

func (s *Server) handlePowerUp(w http.ResponseWriter, r *http.Request) {
	req, g, ok := s.session(w, r)
	if !ok {
		return
	}
	word, penalty, err := g.UsePowerUp(game.PowerUp(req.Kind), s.now())
	if err != nil {
		s.gameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"word":        word,
		"penalty":     penalty,
		"timeLimitMs": g.TimeLimit().Milliseconds(),
		"total":       g.Score().Total,
	})
}

type finishRes struct {
	Score     scoring.GameScore `json:"score"`
	Chain     []string          `json:"chain"`
	State     game.State        `json:"state"`
	ElapsedMs int64             `json:"elapsedMs"`
}

// handleFinish ends the game, records a completed daily, and drops the session.
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.session(w, r)
	if !ok {
		return
	}
	now := s.now()
	gs := g.Finish(now)
	if g.State() == game.StateCompleted {
		s.recordDaily(r, g)
	}
	if err := s.d.Sessions.Delete(r.Context(), g.ID); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("delete session")
	} else {
		s.d.Metrics.ActiveGames.Add(r.Context(), -1)
	}
	writeJSON(w, http.StatusOK, finishRes{
		Score:     gs,
		Chain:     g.Words(),
		State:     g.State(),
		ElapsedMs: g.Elapsed(now).Milliseconds(),
	})
}

// session decodes a gameReq and loads the caller's session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (gameReq, *game.Session, bool) {
	var req gameReq
	if !decode(w, r, &req) {
		return req, nil, false
	}
	g, err := s.d.Sessions.Get(r.Context(), req.GameID)
	if err != nil || g.Owner != identityFrom(r.Context()).ID {
		writeError(w, http.StatusNotFound, "not_found")
		return req, nil, false
	}
	return req, g, true
}

func (s *Server) gameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameFinished), errors.Is(err, game.ErrNothingToUndo), errors.Is(err, game.ErrNothingToReveal):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrUnknownPowerUp):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("game")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// recordDaily stores a completed daily game. Results are write-once per
// identity and date, so repeated calls are harmless.
func (s *Server) recordDaily(r *http.Request, g *game.Session) {
	if s.d.Results == nil || g.Mode != scoring.ModeDaily {
		return
	}
	res := daily.Result{
		UserID:    g.Owner,
		Date:      g.Date,
		Moves:     g.Moves(),
		Score:     g.Score().Total,
		ElapsedMs: int(g.Elapsed(s.now()).Milliseconds()),
	}
	if err := s.d.Results.InsertResult(r.Context(), res); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert daily result")
	}
}

// --------------------------- DICTIONARY ------------------------------------

type validateReq struct {
	Words []string `json:"words"`
}

type validateRes struct {
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Terminal bool   `json:"terminal"`
}

func (s *Server) handleValidateChain(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if !decode(w, r, &req) {
		return
	}
	if err := s.d.Validator.ValidateChain(req.Words); err != nil {
		writeJSON(w, http.StatusOK, validateRes{Reason: chain.Reason(err), Kind: errorKind(err)})
		return
	}
	last := req.Words[len(req.Words)-1]
	writeJSON(w, http.StatusOK, validateRes{Valid: true, Terminal: s.d.Validator.IsTerminalWord(last)})
}

type nextWordsRes struct {
	Word            string   `json:"word"`
	Next            []string `json:"next"`
	BranchingFactor int      `json:"branchingFactor"`
	Terminal        bool     `json:"terminal"`
}

func (s *Server) handleNextWords(w http.ResponseWriter, r *http.Request) {
	word := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "word")))
	if err := s.d.Validator.ValidateChain([]string{word}); err != nil {
		writeError(w, http.StatusNotFound, chain.Reason(err))
		return
	}
	next := s.d.Validator.FindPossibleNextWords(word)
	writeJSON(w, http.StatusOK, nextWordsRes{
		Word:            word,
		Next:            next,
		BranchingFactor: len(next),
		Terminal:        len(next) == 0,
	})
}

// errorKind maps a move rejection to a low-cardinality label.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chain.ErrUnknownWord):
		return "unknown_word"
	case errors.Is(err, chain.ErrDuplicateWord):
		return "duplicate_word"
	case errors.Is(err, chain.ErrChainRuleViolation):
		return "chain_rule"
	case errors.Is(err, chain.ErrEmptyChain):
		return "empty_chain"
	case errors.Is(err, game.ErrTargetTooEarly):
		return "target_too_early"
	default:
		return "other"
	}
}

