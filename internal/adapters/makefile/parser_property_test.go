package makefile_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.trai.ch/fake/internal/adapters/makefile"
	"pgregory.net/rapid"
)

func genName() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9_][A-Za-z0-9_./$()-]{0,10}`)
}

// renderRule writes a header for name using randomly chosen but equivalent syntax.
func renderRule(t *rapid.T, sb *strings.Builder, name string, deps []string, eol string) {
	sb.WriteString(name)
	sb.WriteString(rapid.SampledFrom([]string{":", "::"}).Draw(t, "colon"))
	for _, dep := range deps {
		sb.WriteString(rapid.SampledFrom([]string{" ", "\t", " | ", " \\" + eol + "    ", "\\" + eol}).Draw(t, "sep"))
		sb.WriteString(dep)
	}
	sb.WriteString(rapid.SampledFrom([]string{"", " ", "\t  "}).Draw(t, "trailing"))
	sb.WriteString(rapid.SampledFrom([]string{"", "# note", " ; @echo done"}).Draw(t, "suffix"))
	sb.WriteString(eol)
}

func TestParse_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eol := rapid.SampledFrom([]string{"\n", "\r\n"}).Draw(t, "eol")
		keys := rapid.SliceOfNDistinct(genName(), 0, 10, rapid.ID).Draw(t, "keys")

		var sb strings.Builder
		want := []edge{}
		for _, key := range keys {
			sb.WriteString(rapid.SampledFrom([]string{
				"",
				"# comment: with colon" + eol,
				"VAR := value" + eol,
				"\t@echo recipe: line" + eol,
				eol,
			}).Draw(t, "noise"))

			deps := rapid.SliceOfN(genName(), 0, 6).Draw(t, "deps")
			renderRule(t, &sb, key, deps, eol)
			want = append(want, edge{Name: key, Deps: append([]string{}, deps...)})
		}

		wantGoal := ""
		if len(keys) > 0 && rapid.Bool().Draw(t, "withGoal") {
			wantGoal = rapid.SampledFrom(keys).Draw(t, "goal")
			op := rapid.SampledFrom([]string{" := ", "=", " ::= "}).Draw(t, "op")
			sb.WriteString(".DEFAULT_GOAL" + op + wantGoal + eol)
		}

		g, err := makefile.Parse(sb.String())
		if err != nil {
			t.Fatalf("parse %q: %v", sb.String(), err)
		}
		if diff := cmp.Diff(want, edgesOf(g)); diff != "" {
			t.Fatalf("edges mismatch for %q (-want +got):\n%s", sb.String(), diff)
		}
		if got := defaultGoal(g); got != wantGoal {
			t.Fatalf("default goal: want %q, got %q", wantGoal, got)
		}
	})
}
