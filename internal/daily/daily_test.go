package daily

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/robalobadob/wordchain/apps/go-server/assets"
	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/db"
	"github.com/robalobadob/wordchain/apps/go-server/internal/observe"
	"github.com/robalobadob/wordchain/apps/go-server/internal/puzzle"
	"github.com/robalobadob/wordchain/apps/go-server/internal/words"
)

var day = time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	if got := DateKey(time.Date(2026, 10, 18, 5, 0, 0, 0, loc)); got != "2026-10-17" {
		t.Fatalf("DateKey = %q, want 2026-10-17", got)
	}
	parsed, err := ParseDate("2026-10-17")
	if err != nil || DateKey(parsed) != "2026-10-17" {
		t.Fatalf("ParseDate round trip: %v %v", parsed, err)
	}
	if _, err := ParseDate("17/10/2026"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSeed(t *testing.T) {
	a1, a2 := Seed(day, "salt", 0)
	b1, b2 := Seed(day.Add(time.Hour), "salt", 0)
	if a1 != b1 || a2 != b2 {
		t.Fatal("same date gave different seeds")
	}
	variants := [][2]uint64{}
	for _, v := range []struct {
		date    time.Time
		salt    string
		attempt int
	}{
		{day.AddDate(0, 0, 1), "salt", 0},
		{day, "other", 0},
		{day, "salt", 1},
	} {
		s1, s2 := Seed(v.date, v.salt, v.attempt)
		variants = append(variants, [2]uint64{s1, s2})
	}
	for i, v := range variants {
		if v == [2]uint64{a1, a2} {
			t.Errorf("variant %d collides with base seed", i)
		}
	}

	// Salts longer than a BLAKE2b key are hashed down first.
	l1, l2 := Seed(day, string(make([]byte, 100)), 0)
	if m1, m2 := Seed(day, string(make([]byte, 100)), 0); l1 != m1 || l2 != m2 {
		t.Fatal("long salt is not deterministic")
	}
}

func openStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(context.Background(), conn, assets.Migrations()); err != nil {
		t.Fatalf("db.Migrate: %v", err)
	}
	return NewStore(conn), conn
}

func samplePuzzle(date string) *puzzle.DailyPuzzle {
	return &puzzle.DailyPuzzle{
		Date:       date,
		StartWord:  "startle",
		TargetWord: "letter",
		ParMoves:   5,
		Difficulty: puzzle.TierMedium,
		ValidPaths: []puzzle.Path{{"startle", "lever", "erectile", "letter"}},
		Hints:      []string{"lev**", "ere*****", "let***"},
		Metadata:   puzzle.Metadata{BranchingFactor: 3.86, OptimalPathCount: 1},
	}
}

func TestStore_Puzzles(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	if _, err := s.LoadPuzzle(ctx, "2026-10-17"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadPuzzle on empty store = %v, want ErrNotFound", err)
	}

	p := samplePuzzle("2026-10-17")
	stored, err := s.SavePuzzle(ctx, p)
	if err != nil || !stored {
		t.Fatalf("SavePuzzle = %v, %v", stored, err)
	}
	got, err := s.LoadPuzzle(ctx, "2026-10-17")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("loaded %+v, want %+v", got, p)
	}

	other := samplePuzzle("2026-10-17")
	other.TargetWord = "lemon"
	stored, err = s.SavePuzzle(ctx, other)
	if err != nil || stored {
		t.Fatalf("second SavePuzzle = %v, %v; want ignored", stored, err)
	}
	if got, _ := s.LoadPuzzle(ctx, "2026-10-17"); got.TargetWord != "letter" {
		t.Fatal("published puzzle was overwritten")
	}
}

func TestStore_Results(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	date := "2026-10-17"
	if _, err := s.SavePuzzle(ctx, samplePuzzle(date)); err != nil {
		t.Fatal(err)
	}

	results := []Result{
		{UserID: "ann", Date: date, Moves: 4, Score: 300, ElapsedMs: 60000},
		{UserID: "bo", Date: date, Moves: 3, Score: 300, ElapsedMs: 90000},
		{UserID: "cy", Date: date, Moves: 6, Score: 120, ElapsedMs: 10000},
		{UserID: "ann", Date: date, Moves: 2, Score: 999, ElapsedMs: 1},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult(%+v): %v", r, err)
		}
	}

	played, err := s.AlreadyPlayed(ctx, "ann", date)
	if err != nil || !played {
		t.Fatalf("AlreadyPlayed(ann) = %v, %v", played, err)
	}
	played, err = s.AlreadyPlayed(ctx, "dee", date)
	if err != nil || played {
		t.Fatalf("AlreadyPlayed(dee) = %v, %v", played, err)
	}

	lb, err := s.Leaderboard(ctx, date, 0)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, r := range lb {
		order = append(order, r.UserID)
	}
	if want := []string{"bo", "ann", "cy"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("leaderboard order = %v, want %v", order, want)
	}
	if lb[1].Score != 300 {
		t.Fatalf("duplicate result overwrote the first: %+v", lb[1])
	}
}

var connectedCorpus = []string{
	"startle", "gentle", "erectile",
	"lemon", "lever", "legal", "ledger", "lesson", "letter",
	"onstage",
}

func newPublisher(t *testing.T, corpus []string) (*Publisher, *Store) {
	t.Helper()
	s, _ := openStore(t)
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatal(err)
	}
	opts := puzzle.DefaultOptions()
	opts.StartAttempts = 64
	v := chain.New(words.Build(corpus))
	return NewPublisher(s, v, PublisherConfig{Salt: "test", Timeout: 5 * time.Second, Retries: 2, Options: opts}, m), s
}

func TestPublisher_GetGeneratesOnce(t *testing.T) {
	p, s := newPublisher(t, connectedCorpus)
	ctx := context.Background()

	first, err := p.Get(ctx, day)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first.Date != "2026-10-17" {
		t.Fatalf("Date = %q", first.Date)
	}
	if _, err := s.LoadPuzzle(ctx, first.Date); err != nil {
		t.Fatalf("puzzle not persisted: %v", err)
	}

	second, err := p.Get(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second Get returned a different puzzle:\n%+v\n%+v", first, second)
	}

	ok, err := p.Check(ctx, day)
	if err != nil || !ok {
		t.Fatalf("Check = %v, %v", ok, err)
	}
}

func TestPublisher_GenerateIsDeterministic(t *testing.T) {
	p, _ := newPublisher(t, connectedCorpus)
	ctx := context.Background()

	a, err := p.Generate(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Generate(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same date and salt produced different puzzles")
	}
}

func TestPublisher_Sparse(t *testing.T) {
	p, s := newPublisher(t, []string{"startle", "lea", "leg", "lei", "lek", "leu", "lev"})
	ctx := context.Background()

	if _, err := p.Get(ctx, day); !errors.Is(err, puzzle.ErrNoPuzzleFound) {
		t.Fatalf("err = %v, want ErrNoPuzzleFound", err)
	}
	if _, err := s.LoadPuzzle(ctx, DateKey(day)); !errors.Is(err, ErrNotFound) {
		t.Fatal("failed generation left a stored puzzle")
	}
	if _, err := p.Check(ctx, day); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Check err = %v", err)
	}
}
