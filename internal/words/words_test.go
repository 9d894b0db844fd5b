package words

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBuild_NormalizesAndFilters(t *testing.T) {
	idx := Build([]string{"Puzzle", "lethal", "LETHAL", "a", "x1y", "", "  alliance  ", "it's"})

	if got := idx.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	for _, w := range []string{"puzzle", "lethal", "alliance"} {
		if !idx.IsValidWord(w) {
			t.Errorf("IsValidWord(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"a", "x1y", "it's", ""} {
		if idx.IsValidWord(w) {
			t.Errorf("IsValidWord(%q) = true, want false", w)
		}
	}
}

func TestIsValidWord_CaseInsensitive(t *testing.T) {
	idx := Build([]string{"puzzle"})
	if idx.IsValidWord("Puzzle") != idx.IsValidWord("puzzle") {
		t.Fatal("membership differs by case")
	}
	if !idx.IsValidWord("PUZZLE") {
		t.Fatal("IsValidWord(PUZZLE) = false")
	}
}

func TestWordsWithPrefix(t *testing.T) {
	idx := Build([]string{"lethal", "lemon", "legal", "alliance", "lemon"})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"le", []string{"lethal", "lemon", "legal"}},
		{"LE", []string{"lethal", "lemon", "legal"}},
		{"lem", []string{"lemon"}},
		{"lethal", []string{"lethal"}},
		{"al", []string{"alliance"}},
		{"zz", []string{}},
		{"l", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := idx.WordsWithPrefix(tt.prefix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WordsWithPrefix(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
			if n := idx.CountWithPrefix(tt.prefix); n != len(tt.want) {
				t.Errorf("CountWithPrefix(%q) = %d, want %d", tt.prefix, n, len(tt.want))
			}
		})
	}
}

func TestWordsWithPrefix_ReturnsCopy(t *testing.T) {
	idx := Build([]string{"lethal", "lemon"})
	got := idx.WordsWithPrefix("le")
	got[0] = "mutated"
	if again := idx.WordsWithPrefix("le"); again[0] != "lethal" {
		t.Fatalf("bucket mutated through returned slice: %v", again)
	}
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)
	if idx.Len() != 0 {
		t.Fatalf("Len = %d, want 0", idx.Len())
	}
	if idx.IsValidWord("anything") {
		t.Fatal("empty index reports membership")
	}
	if got := idx.WordsWithPrefix("an"); len(got) != 0 {
		t.Fatalf("WordsWithPrefix on empty index = %v", got)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	corpus := []string{"puzzle", "lethal", "alliance", "lemon", "legal", "ant"}
	a, b := Build(corpus), Build(corpus)
	for _, p := range []string{"le", "al", "an", "pu", "leg", "zz"} {
		if !reflect.DeepEqual(a.WordsWithPrefix(p), b.WordsWithPrefix(p)) {
			t.Errorf("prefix %q differs between builds", p)
		}
	}
	if !reflect.DeepEqual(a.Openings(), b.Openings()) {
		t.Error("openings differ between builds")
	}
}

func TestOpenings(t *testing.T) {
	idx := Build([]string{"lethal", "lemon", "alliance", "puzzle"})
	want := []string{"al", "le", "pu"}
	if got := idx.Openings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Openings = %v, want %v", got, want)
	}
}

func TestSuffix(t *testing.T) {
	tests := map[string]string{
		"puzzle": "le",
		"JAZZ":   "zz",
		"at":     "at",
		"a":      "",
	}
	for in, want := range tests {
		if got := Suffix(in); got != want {
			t.Errorf("Suffix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	body := "# comment\npuzzle\n\n  Lethal \nalliance\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := Load(context.Background(), FileCorpus{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Len() != 3 || !idx.IsValidWord("lethal") {
		t.Fatalf("unexpected index: len=%d", idx.Len())
	}
}

func TestFileCorpus_Missing(t *testing.T) {
	_, err := FileCorpus{Path: filepath.Join(t.TempDir(), "nope.txt")}.LoadWordCorpus(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEmbeddedCorpus(t *testing.T) {
	idx, err := Load(context.Background(), EmbeddedCorpus{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !idx.IsValidWord("puzzle") || !idx.IsValidWord("lethal") {
		t.Fatal("embedded corpus missing starter words")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WORDS_FILE", "")
	if _, ok := FromEnv().(EmbeddedCorpus); !ok {
		t.Fatal("expected embedded corpus when WORDS_FILE is unset")
	}
	t.Setenv("WORDS_FILE", "/tmp/x.txt")
	if fc, ok := FromEnv().(FileCorpus); !ok || fc.Path != "/tmp/x.txt" {
		t.Fatalf("FromEnv = %#v", FromEnv())
	}
}
