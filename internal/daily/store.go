package daily

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robalobadob/wordchain/apps/go-server/internal/puzzle"
)

// ErrNotFound is returned when no puzzle is stored for a date.
var ErrNotFound = errors.New("daily: puzzle not found")

// Result is one player's finished daily chain.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Moves     int    `json:"moves"`
	Score     int    `json:"score"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	UserID    string `json:"userId"`
	Moves     int    `json:"moves"`
	Score     int    `json:"score"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store persists puzzles and results in SQLite.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// SavePuzzle publishes p under p.Date. A date that already has a puzzle keeps
// the first one; published puzzles are immutable. It reports whether p was stored.
func (s *Store) SavePuzzle(ctx context.Context, p *puzzle.DailyPuzzle) (bool, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("daily: encode puzzle %s: %w", p.Date, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_puzzles(date, start_word, target_word, par_moves, difficulty, body)
		VALUES(?,?,?,?,?,?)`,
		p.Date, p.StartWord, p.TargetWord, p.ParMoves, string(p.Difficulty), string(body),
	)
	if err != nil {
		return false, fmt.Errorf("daily: insert puzzle %s: %w", p.Date, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// LoadPuzzle returns the puzzle published for date, or ErrNotFound.
func (s *Store) LoadPuzzle(ctx context.Context, date string) (*puzzle.DailyPuzzle, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM daily_puzzles WHERE date=?`, date).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p puzzle.DailyPuzzle
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("daily: decode puzzle %s: %w", date, err)
	}
	return &p, nil
}

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records r. A second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, moves, score, elapsed_ms)
		VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.Moves, r.Score, r.ElapsedMs,
	)
	return err
}

// Leaderboard returns the best results for date: highest score, then fewest
// moves, then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, moves, score, elapsed_ms
		FROM daily_results
		WHERE date=?
		ORDER BY score DESC, moves ASC, elapsed_ms ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Moves, &r.Score, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
