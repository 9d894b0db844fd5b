// apps/go-server/internal/puzzle/generator.go
//
// Daily puzzle generator.
//
// Pipeline for one call:
//   sampling → start_selected → searching_paths → puzzle_ready | no_puzzle_found
//
//   1. SelectStartWord samples populated two-letter openings and keeps the
//      candidate with the most next words.
//   2. Each neighbour of the start becomes a target candidate; a bounded BFS
//      collects chain-legal paths from start to that candidate.
//   3. The candidate with the most accepted paths wins; difficulty, par and
//      hints are derived from its paths.
//
// Notes:
//   • The dictionary is only reached through the Validator's edge enumeration.
//   • BFS visits each word at most once per search; the target is never marked
//     visited, so several parents can each contribute a path into it.
//   • Search state (queue, visited set) is local to one FindAllValidPaths call.
//   • A Generator owns its RNG and is not safe for concurrent use; build one
//     per generation request.

package puzzle

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Validator is the slice of the chain validator the generator needs.
type Validator interface {
	FindPossibleNextWords(w string) []string
	BranchingFactor(w string) int
	WordsStartingWith(opening string) []string
	Openings() []string
	ValidateChain(words []string) error
}

// Generator searches the word graph for puzzles.
type Generator struct {
	v    Validator
	rng  *rand.Rand
	opts Options
	log  zerolog.Logger
}

// New returns a Generator. A nil rng is replaced with a time-seeded one.
func New(v Validator, rng *rand.Rand, opts Options) *Generator {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return &Generator{v: v, rng: rng, opts: opts, log: zerolog.Nop()}
}

// WithLogger sets a logger for per-step debug traces.
func (g *Generator) WithLogger(l zerolog.Logger) *Generator {
	g.log = l
	return g
}

// Options returns the generator's search budget.
func (g *Generator) Options() Options { return g.opts }

// SelectStartWord picks a high-branching word to start from.
func (g *Generator) SelectStartWord() (string, error) {
	openings := g.v.Openings()
	if len(openings) == 0 {
		return "", fmt.Errorf("%w: dictionary is empty", ErrNoStartWordFound)
	}

	best, bestBF := "", -1
	for i := 0; i < g.opts.StartAttempts; i++ {
		op := openings[g.rng.IntN(len(openings))]
		for _, w := range g.v.WordsStartingWith(op) {
			if len(w) < g.opts.MinStartLength {
				continue
			}
			if bf := g.v.BranchingFactor(w); bf > bestBF {
				best, bestBF = w, bf
			}
		}
		g.log.Debug().
			Str("state", string(StateSampling)).
			Int("attempt", i+1).
			Str("opening", op).
			Str("best", best).
			Int("branching", bestBF).
			Msg("start sample")
	}

	if bestBF <= g.opts.MinBranching {
		return "", fmt.Errorf("%w: best branching %d after %d attempts (need > %d)",
			ErrNoStartWordFound, max(bestBF, 0), g.opts.StartAttempts, g.opts.MinBranching)
	}
	g.log.Debug().Str("state", string(StateStartSelected)).Str("start", best).Int("branching", bestBF).Msg("start selected")
	return best, nil
}

// searchNode is one BFS frontier entry; paths are rebuilt via parent links.
type searchNode struct {
	word   string
	parent *searchNode
	depth  int // moves from start
}

func (n *searchNode) pathTo(last string) Path {
	p := make(Path, n.depth+2)
	p[len(p)-1] = last
	for i, cur := n.depth, n; cur != nil; i, cur = i-1, cur.parent {
		p[i] = cur.word
	}
	return p
}

// FindAllValidPaths runs a bounded BFS from start and returns up to
// Options.MaxPaths paths that end on target, each at least
// Options.MinPathWords long and at most maxDepth moves. The only error is
// ctx's.
func (g *Generator) FindAllValidPaths(ctx context.Context, start, target string, maxDepth int) ([]Path, error) {
	start, target = strings.ToLower(start), strings.ToLower(target)
	if start == target || maxDepth <= 0 {
		return nil, nil
	}

	visited := map[string]struct{}{start: {}}
	queue := []*searchNode{{word: start}}
	var paths []Path

	for steps := 0; len(queue) > 0 && len(paths) < g.opts.MaxPaths; steps++ {
		if steps%256 == 0 {
			if err := ctx.Err(); err != nil {
				return paths, err
			}
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, next := range g.v.FindPossibleNextWords(cur.word) {
			if next == target {
				if cur.depth+2 >= g.opts.MinPathWords {
					paths = append(paths, cur.pathTo(next))
					if len(paths) >= g.opts.MaxPaths {
						break
					}
				}
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, &searchNode{word: next, parent: cur, depth: cur.depth + 1})
		}
	}
	return paths, nil
}

// GenerateDailyPuzzle selects a start word and builds the puzzle for date.
// A ctx deadline hit mid-search is reported as ErrNoPuzzleFound.
func (g *Generator) GenerateDailyPuzzle(ctx context.Context, date time.Time) (*DailyPuzzle, error) {
	start, err := g.SelectStartWord()
	if err != nil {
		return nil, err
	}
	return g.GenerateFrom(ctx, date, start)
}

// GenerateFrom builds the puzzle for date from a fixed start word.
func (g *Generator) GenerateFrom(ctx context.Context, date time.Time, start string) (*DailyPuzzle, error) {
	start = strings.ToLower(start)
	candidates := g.v.FindPossibleNextWords(start)
	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > g.opts.MaxTargetCandidates {
		candidates = candidates[:g.opts.MaxTargetCandidates]
	}

	var bestTarget string
	var bestPaths []Path
	for _, target := range candidates {
		paths, err := g.FindAllValidPaths(ctx, start, target, g.opts.MaxDepth)
		if err != nil {
			g.log.Debug().Str("state", string(StateNoPuzzleFound)).Err(err).Msg("search interrupted")
			return nil, fmt.Errorf("%w: %w", ErrNoPuzzleFound, err)
		}
		g.log.Debug().
			Str("state", string(StateSearchingPaths)).
			Str("start", start).
			Str("target", target).
			Int("paths", len(paths)).
			Msg("target searched")
		if len(paths) > len(bestPaths) {
			bestTarget, bestPaths = target, paths
		}
	}
	if len(bestPaths) == 0 {
		g.log.Debug().Str("state", string(StateNoPuzzleFound)).Str("start", start).Int("candidates", len(candidates)).Msg("no target connected")
		return nil, fmt.Errorf("%w: no target reachable from %q within %d moves", ErrNoPuzzleFound, start, g.opts.MaxDepth)
	}

	d := g.CalculateDifficulty(bestPaths)
	p := &DailyPuzzle{
		Date:       date.UTC().Format("2006-01-02"),
		StartWord:  start,
		TargetWord: bestTarget,
		ParMoves:   d.ParMoves,
		Difficulty: d.Tier,
		ValidPaths: bestPaths,
		Hints:      GenerateHints(bestPaths),
		Metadata: Metadata{
			BranchingFactor:  d.BranchingFactor,
			OptimalPathCount: d.OptimalPathCount,
		},
	}
	g.log.Debug().
		Str("state", string(StatePuzzleReady)).
		Str("start", p.StartWord).
		Str("target", p.TargetWord).
		Str("difficulty", string(p.Difficulty)).
		Int("par", p.ParMoves).
		Msg("puzzle ready")
	return p, nil
}

// Difficulty is the rating derived from a puzzle's accepted paths.
type Difficulty struct {
	Tier             Tier
	ParMoves         int
	ShortestMoves    int
	BranchingFactor  float64 // mean next-word count over non-final path words
	OptimalPathCount int     // paths as short as the shortest
}

// CalculateDifficulty rates paths:
//
//	easy   shortest ≤ 3 moves and mean branching > 5
//	hard   shortest ≥ 6 moves or mean branching < 3
//	medium otherwise
func (g *Generator) CalculateDifficulty(paths []Path) Difficulty {
	best := shortest(paths)
	if best == nil {
		return Difficulty{Tier: TierHard}
	}

	total, n := 0, 0
	for _, p := range paths {
		for _, w := range p[:len(p)-1] {
			total += g.v.BranchingFactor(w)
			n++
		}
	}
	avg := 0.0
	if n > 0 {
		avg = float64(total) / float64(n)
	}

	d := Difficulty{
		ShortestMoves:   best.Moves(),
		BranchingFactor: math.Round(avg*100) / 100,
	}
	for _, p := range paths {
		if len(p) == len(best) {
			d.OptimalPathCount++
		}
	}
	switch {
	case d.ShortestMoves <= 3 && avg > 5:
		d.Tier = TierEasy
	case d.ShortestMoves >= 6 || avg < 3:
		d.Tier = TierHard
	default:
		d.Tier = TierMedium
	}
	d.ParMoves = d.ShortestMoves + d.Tier.Slack()
	return d
}

// GenerateHints masks each word after the start of the shortest path,
// revealing its first three letters.
func GenerateHints(paths []Path) []string {
	best := shortest(paths)
	if len(best) < 2 {
		return []string{}
	}
	hints := make([]string, 0, len(best)-1)
	for _, w := range best[1:] {
		hints = append(hints, MaskWord(w, 3))
	}
	return hints
}

// MaskWord keeps the first reveal letters of w and stars the rest.
func MaskWord(w string, reveal int) string {
	if reveal >= len(w) {
		return w
	}
	return w[:reveal] + strings.Repeat("*", len(w)-reveal)
}

// ValidatePuzzle re-derives a path between the stored start and target to
// confirm the puzzle is still solvable against the current dictionary.
func (g *Generator) ValidatePuzzle(ctx context.Context, p *DailyPuzzle) bool {
	if p == nil || p.StartWord == "" || p.TargetWord == "" {
		return false
	}
	paths, err := g.FindAllValidPaths(ctx, p.StartWord, p.TargetWord, g.opts.MaxDepth)
	if err != nil {
		return false
	}
	for _, path := range paths {
		if g.v.ValidateChain(path) == nil {
			return true
		}
	}
	return false
}

func shortest(paths []Path) Path {
	var best Path
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		if best == nil || len(p) < len(best) {
			best = p
		}
	}
	return best
}
