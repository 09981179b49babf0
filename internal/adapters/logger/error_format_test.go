package logger_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/fake/internal/adapters/logger"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	syntaxErr := zerr.Wrap(domain.ErrInvalidBuildFile, "missing separator")
	syntaxErr = zerr.With(syntaxErr, "line", 3)
	syntaxErr = zerr.With(syntaxErr, "column", 1)
	syntaxErr = zerr.With(syntaxErr, "near", "\tcc -o app")

	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
		{
			name: "plain error keeps its full text",
			err:  fmt.Errorf("read Makefile: %w", io.ErrUnexpectedEOF),
			want: []logger.ErrorEntry{{Message: "read Makefile: unexpected EOF"}},
		},
		{
			name: "sentinel",
			err:  domain.ErrUnknownTarget,
			want: []logger.ErrorEntry{{Message: "unknown target", Metadata: map[string]any{}}},
		},
		{
			name: "syntax error",
			err:  syntaxErr,
			want: []logger.ErrorEntry{
				{Message: "missing separator", Metadata: map[string]any{"line": 3, "column": 1, "near": "\tcc -o app"}},
				{Message: "invalid build file", Metadata: map[string]any{}},
			},
		},
		{
			name: "build failure",
			err:  buildFailed("app", 2),
			want: []logger.ErrorEntry{
				{Message: "failed to build target", Metadata: map[string]any{"target": "app", "exit_code": 2}},
				{Message: "make exited with non-zero status", Metadata: map[string]any{}},
			},
		},
		{
			name: "metadata-only link moves onto the plain cause",
			err:  zerr.With(errors.New("unexpected token"), "source", "make -p"),
			want: []logger.ErrorEntry{
				{Message: "unexpected token", Metadata: map[string]any{"source": "make -p"}},
			},
		},
		{
			name: "metadata-only links merge",
			err:  zerr.With(zerr.Wrap(zerr.With(errors.New("unexpected token"), "source", "make -p"), ""), "file", "Makefile"),
			want: []logger.ErrorEntry{
				{Message: "unexpected token", Metadata: map[string]any{"source": "make -p", "file": "Makefile"}},
			},
		},
		{
			name: "context cause ends the chain",
			err:  zerr.With(zerr.Wrap(context.Canceled, "make was interrupted"), "target", "lib.a"),
			want: []logger.ErrorEntry{
				{Message: "make was interrupted", Metadata: map[string]any{"target": "lib.a"}},
				{Message: "context canceled"},
			},
		},
		{
			name: "joined errors stay one entry",
			err:  errors.Join(domain.ErrBuildExecutionFailed, buildFailed("app", 2)),
			want: []logger.ErrorEntry{
				{Message: "build execution failed\nfailed to build target: make exited with non-zero status"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntriesExported(tt.err))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    "",
		},
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "no targets specified and no default target found"}},
			want:    "Error: no targets specified and no default target found",
		},
		{
			name: "metadata sorted under the message",
			entries: []logger.ErrorEntry{
				{Message: "missing separator", Metadata: map[string]any{"near": "cc -o app", "line": 3, "column": 1}},
			},
			want: "Error: missing separator\n       column: 1\n       line: 3\n       near: cc -o app",
		},
		{
			name: "chain of causes",
			entries: []logger.ErrorEntry{
				{Message: "build stopped before target started", Metadata: map[string]any{"target": "app"}},
				{Message: "not built", Metadata: map[string]any{"dependency": "lib.a"}},
				{Message: "skipped because a dependency failed"},
			},
			want: "Error: build stopped before target started\n" +
				"       target: app\n\n" +
				"  Caused by:\n" +
				"    → not built\n" +
				"      dependency: lib.a\n" +
				"    → skipped because a dependency failed",
		},
		{
			name: "multiline messages keep their indent",
			entries: []logger.ErrorEntry{
				{Message: "failed to dump make rule database\nmake: *** No rule to make target 'x'.  Stop."},
				{Message: "exit status 2\nsignal: none"},
			},
			want: "Error: failed to dump make rule database\n" +
				"       make: *** No rule to make target 'x'.  Stop.\n\n" +
				"  Caused by:\n" +
				"    → exit status 2\n" +
				"      signal: none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntriesExported(tt.entries))
		})
	}
}

func TestCollectAndFormat_DependencyFailure(t *testing.T) {
	marker := zerr.With(zerr.Wrap(domain.ErrDependencyFailed, "not built"), "dependency", "lib.a")
	err := zerr.With(zerr.Wrap(marker, "build stopped before target started"), "target", "app")

	got := logger.FormatErrorEntriesExported(logger.CollectErrorEntriesExported(err))

	assert.Equal(t, "Error: build stopped before target started\n"+
		"       target: app\n\n"+
		"  Caused by:\n"+
		"    → not built\n"+
		"      dependency: lib.a\n"+
		"    → skipped because a dependency failed", got)
}
