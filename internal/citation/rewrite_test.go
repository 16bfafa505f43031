// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// REWRITE TESTS
// =============================================================================

func TestRewrite(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no markers", "plain text", "plain text"},
		{"single", "Text [7] here", "Text [7](#cite-7) here"},
		{"group keeps order", "[1][2][3]", "[1,2,3](#cite-group-1-2-3)"},
		{"group not sorted", "[3][1]", "[3,1](#cite-group-3-1)"},
		{"group keeps repeats", "[2][2]", "[2,2](#cite-group-2-2)"},
		{"mixed converted and raw", "Already [1](#cite-1) and raw [2]", "Already [1](#cite-1) and raw [2](#cite-2)"},
		{"boundaries", "[1] Text [2][3]", "[1](#cite-1) Text [2,3](#cite-group-2-3)"},
		{"punctuation", "Info [1][2] and more [3].", "Info [1,2](#cite-group-1-2) and more [3](#cite-3)."},
		{"inside parens", "(see [4])", "(see [4](#cite-4))"},
		{"space breaks a run", "[1] [2]", "[1](#cite-1) [2](#cite-2)"},
		{"leading zeros verbatim", "[007]", "[007](#cite-007)"},
		{"unclosed", "[1", "[1"},
		{"not digits", "[abc]", "[abc]"},
		{"empty brackets", "[]", "[]"},
		{"comma list untouched", "[1,2]", "[1,2]"},
		{"nested bracket", "[[1]]", "[[1](#cite-1)]"},
		{"run ending in converted marker", "[1][2](#cite-2)", "[1](#cite-1)[2](#cite-2)"},
		{"converted group untouched", "[1,2](#cite-group-1-2)", "[1,2](#cite-group-1-2)"},
		{"partial suffix still raw", "[5](#cit", "[5](#cite-5)(#cit"},
		{"ordinary link after marker", "[1](https://x.test)", "[1](#cite-1)(https://x.test)"},
		{"unicode around", "日本 [2]。", "日本 [2](#cite-2)。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rewrite(tt.input)
			if got != tt.want {
				t.Errorf("Rewrite(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	inputs := []string{
		"Text [7] here",
		"[1][2][3]",
		"Already [1](#cite-1) and raw [2]",
		"[1] Text [2][3]",
		"[1][2](#cite-2)",
		"[1][2](#cite-",
		"[[1][2]",
		"x[10][11][12]y[13]",
	}
	for _, in := range inputs {
		once := Rewrite(in)
		twice := Rewrite(once)
		if once != twice {
			t.Errorf("Rewrite not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// TestRewrite_IdempotentGenerated builds strings out of fragments that sit
// close to the marker grammar and checks idempotence on each.
func TestRewrite_IdempotentGenerated(t *testing.T) {
	fragments := []string{
		"[1]", "[23]", "[", "]", "1", " ", "x", ".",
		"(#cite-", "(#cite-4)", "(#cite-group-1-2)", "[1,2]", "(", ")",
	}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 3000; i++ {
		var b strings.Builder
		n := rng.Intn(10)
		for j := 0; j < n; j++ {
			b.WriteString(fragments[rng.Intn(len(fragments))])
		}
		in := b.String()
		once := Rewrite(in)
		if twice := Rewrite(once); twice != once {
			t.Fatalf("Rewrite not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestRewrite_StreamingPrefixes(t *testing.T) {
	// Rewriting every cumulative prefix of a stream must converge to the
	// same result as rewriting the final text once.
	final := "Go has goroutines [1][2] and channels [3]."
	var acc string
	for i := 1; i <= len(final); i++ {
		acc = Rewrite(final[:i])
	}
	if acc != Rewrite(final) {
		t.Errorf("final prefix rewrite = %q, want %q", acc, Rewrite(final))
	}
	if Rewrite(acc) != acc {
		t.Errorf("re-running on converged text changed it: %q", Rewrite(acc))
	}
}

func TestRewrite_NoMarkerReturnsInput(t *testing.T) {
	in := strings.Repeat("no citations here ", 50)
	if got := Rewrite(in); got != in {
		t.Error("expected input returned unchanged")
	}
}

func FuzzRewriteIdempotent(f *testing.F) {
	for _, seed := range []string{"", "[1]", "[1][2]", "[1](#cite-1)", "[1][2](#cite-2)", "[x][9]"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Rewrite(s)
		if twice := Rewrite(once); twice != once {
			t.Fatalf("Rewrite not idempotent for %q: %q then %q", s, once, twice)
		}
	})
}

// =============================================================================
// MARKER SCANNING TESTS
// =============================================================================

func TestMarkerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  []int
	}{
		{"", nil},
		{"none", nil},
		{"a [2] b [4]", []int{2, 4}},
		{"[1][1]", []int{1, 1}},
		{"[1](#cite-1)", []int{1}},
		{"[99999999999999999999999]", []int{}},
	}
	for _, tt := range tests {
		got := MarkerNumbers(tt.input)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MarkerNumbers(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// TestGrammarAgreement checks that every marker the fallback scanner counts
// is one the rewriter converts, and the other way round.
func TestGrammarAgreement(t *testing.T) {
	inputs := []string{"[1]", "[12][3]", "[a1]", "[1a]", "[ 1]", "[-1]", "[١]", "[0]"}
	for _, in := range inputs {
		scanned := len(MarkerNumbers(in)) > 0
		rewritten := Rewrite(in) != in
		if scanned != rewritten {
			t.Errorf("%q: scanner=%v rewriter=%v", in, scanned, rewritten)
		}
	}
}
