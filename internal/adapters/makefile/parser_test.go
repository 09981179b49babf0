package makefile_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fake/internal/adapters/makefile"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/zerr"
)

type edge struct {
	Name string
	Deps []string
}

func edgesOf(g *domain.Graph) []edge {
	res := []edge{}
	for name, deps := range g.All() {
		res = append(res, edge{Name: name.String(), Deps: domain.TargetNameStrings(deps)})
	}
	return res
}

func defaultGoal(g *domain.Graph) string {
	goal, _ := g.DefaultGoal()
	return goal.String()
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     []edge
		wantGoal string
	}{
		{
			name: "simple graph",
			src:  "A: B C\nB:\nC:\n",
			want: []edge{
				{Name: "A", Deps: []string{"B", "C"}},
				{Name: "B", Deps: []string{}},
				{Name: "C", Deps: []string{}},
			},
		},
		{
			name: "no trailing newline",
			src:  "A: B",
			want: []edge{{Name: "A", Deps: []string{"B"}}},
		},
		{
			name: "comments and trailing whitespace",
			src:  "A: B C   # builds everything\nB:\t \nC:# nothing\n# D: E\n",
			want: []edge{
				{Name: "A", Deps: []string{"B", "C"}},
				{Name: "B", Deps: []string{}},
				{Name: "C", Deps: []string{}},
			},
		},
		{
			name: "comment glued to dependency",
			src:  "A: B#C\n",
			want: []edge{{Name: "A", Deps: []string{"B"}}},
		},
		{
			name: "line continuation",
			src:  "A: B \\\n C\n",
			want: []edge{{Name: "A", Deps: []string{"B", "C"}}},
		},
		{
			name: "line continuation without blanks",
			src:  "A: B\\\nC\\\r\nD\n",
			want: []edge{{Name: "A", Deps: []string{"B", "C", "D"}}},
		},
		{
			name: "order-only dependencies",
			src:  "out/app: main.o | out\n",
			want: []edge{{Name: "out/app", Deps: []string{"main.o", "out"}}},
		},
		{
			name: "permissive names",
			src:  "build/lib-1.0.a: src/a.c $(OBJS) ../shared/x_y.h\n",
			want: []edge{{Name: "build/lib-1.0.a", Deps: []string{"src/a.c", "$(OBJS)", "../shared/x_y.h"}}},
		},
		{
			name: "double colon rule",
			src:  "clean:: tmp\n",
			want: []edge{{Name: "clean", Deps: []string{"tmp"}}},
		},
		{
			name: "crlf line endings",
			src:  "A: B\r\nB:\r\n",
			want: []edge{
				{Name: "A", Deps: []string{"B"}},
				{Name: "B", Deps: []string{}},
			},
		},
		{
			name: "redeclaration replaces dependencies",
			src:  "A: B\nC:\nA: C D\n",
			want: []edge{
				{Name: "A", Deps: []string{"C", "D"}},
				{Name: "C", Deps: []string{}},
			},
		},
		{
			name: "inline recipe",
			src:  "A: B ; echo a: b\n",
			want: []edge{{Name: "A", Deps: []string{"B"}}},
		},
		{
			name: "ignored lines",
			src: "CC := gcc\n" +
				"CFLAGS::=-O2\n" +
				"LDFLAGS= -lm\n" +
				"X:=y\n" +
				"include rules.mk\n" +
				"ifeq ($(CC),gcc)\n" +
				"endif\n" +
				"\n" +
				"all: app\n" +
				"\t$(CC) -o app main.c: not a header\n" +
				"  indented: header\n",
			want: []edge{{Name: "all", Deps: []string{"app"}}},
		},
		{
			name: "continued ignored line",
			src:  "SRCS = a.c \\\nb.c: c.c\nall: a\n",
			want: []edge{{Name: "all", Deps: []string{"a"}}},
		},
		{
			name: "target-specific variable",
			src:  "app: main.o\napp: CFLAGS += -g\napp: LDFLAGS=-s\n",
			want: []edge{{Name: "app", Deps: []string{"main.o"}}},
		},
		{
			name: "static pattern rule",
			src:  "all: app\n$(OBJS): %.o: %.c\n",
			want: []edge{{Name: "all", Deps: []string{"app"}}},
		},
		{
			name:     "default goal",
			src:      "A:\nB:\n.DEFAULT_GOAL := B\n",
			want:     []edge{{Name: "A", Deps: []string{}}, {Name: "B", Deps: []string{}}},
			wantGoal: "B",
		},
		{
			name:     "default goal before declarations",
			src:      ".DEFAULT_GOAL=test # run tests by default\nall: test\ntest:\n",
			want:     []edge{{Name: "all", Deps: []string{"test"}}, {Name: "test", Deps: []string{}}},
			wantGoal: "test",
		},
		{
			name: "default goal cleared",
			src:  ".DEFAULT_GOAL ::= B\nB:\n.DEFAULT_GOAL :=\n",
			want: []edge{{Name: "B", Deps: []string{}}},
		},
		{
			name:     "conditional default goal when unset",
			src:      ".DEFAULT_GOAL ?= test\nall:\ntest:\n",
			want:     []edge{{Name: "all", Deps: []string{}}, {Name: "test", Deps: []string{}}},
			wantGoal: "test",
		},
		{
			name:     "conditional default goal when set",
			src:      ".DEFAULT_GOAL := all\n.DEFAULT_GOAL ?= test\nall:\ntest:\n",
			want:     []edge{{Name: "all", Deps: []string{}}, {Name: "test", Deps: []string{}}},
			wantGoal: "all",
		},
		{
			name: "other default goal operators are skipped",
			src:  ".DEFAULT_GOAL += all\n.DEFAULT_GOAL != echo all\n.DEFAULT_GOAL all\nall:\n",
			want: []edge{{Name: "all", Deps: []string{}}},
		},
		{
			name: "default goal as a header",
			src:  ".DEFAULT_GOAL: all\nall:\n",
			want: []edge{{Name: ".DEFAULT_GOAL", Deps: []string{"all"}}, {Name: "all", Deps: []string{}}},
		},
		{
			name: "empty input",
			src:  "",
			want: []edge{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := makefile.Parse(tt.src)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, edgesOf(g)); diff != "" {
				t.Errorf("edges mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantGoal, defaultGoal(g))
		})
	}
}

func TestParse_ContinuationMatchesSingleLine(t *testing.T) {
	joined, err := makefile.Parse("A: B \\\n C\n")
	require.NoError(t, err)
	single, err := makefile.Parse("A: B C\n")
	require.NoError(t, err)

	assert.Equal(t, edgesOf(single), edgesOf(joined))
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantLine   int
		wantColumn int
		wantNear   string
	}{
		{
			name:       "stray carriage return after dependencies",
			src:        "A: B\rC\n",
			wantLine:   1,
			wantColumn: 5,
			wantNear:   "",
		},
		{
			name:       "default goal with two names",
			src:        "all:\n.DEFAULT_GOAL := a b\n",
			wantLine:   2,
			wantColumn: 20,
			wantNear:   "b",
		},
		{
			name:       "error after continuation",
			src:        "A: B \\\n  C\r",
			wantLine:   2,
			wantColumn: 4,
			wantNear:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := makefile.Parse(tt.src)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, domain.ErrInvalidBuildFile))

			var zErr *zerr.Error
			require.True(t, errors.As(err, &zErr))
			meta := zErr.Metadata()
			assert.Equal(t, tt.wantLine, meta["line"])
			assert.Equal(t, tt.wantColumn, meta["column"])
			assert.Equal(t, tt.wantNear, meta["near"])
		})
	}
}
