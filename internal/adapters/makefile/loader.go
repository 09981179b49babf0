package makefile

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.GraphLoader = (*FileLoader)(nil)
	_ ports.GraphLoader = (*DatabaseLoader)(nil)
)

// FileLoader reads the graph by parsing the build file directly.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads and parses inv.BuildFile.
func (l *FileLoader) Load(_ context.Context, inv *domain.Invocation) (*domain.Graph, error) {
	path := buildFilePath(inv)

	//nolint:gosec // reading the user's build file is the point
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrBuildFileNotFound, err.Error()), "file", path)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrBuildFileReadFailed, err.Error()), "file", path)
	}

	graph, err := Parse(string(data))
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return graph, nil
}

// DatabaseLoader reads the graph from the rule database make prints with -p.
type DatabaseLoader struct{}

// NewDatabaseLoader creates a new DatabaseLoader.
func NewDatabaseLoader() *DatabaseLoader {
	return &DatabaseLoader{}
}

// Load runs make -p -q for inv and parses its output.
// Exit status 1 only means some target is out of date and is not an error.
func (l *DatabaseLoader) Load(ctx context.Context, inv *domain.Invocation) (*domain.Graph, error) {
	cmd := exec.CommandContext(ctx, inv.Make, inv.DatabaseArgs()...) //nolint:gosec // user provided make
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			launchErr := zerr.With(zerr.Wrap(domain.ErrLaunchFailed, "could not run make -p"), "make", inv.Make)
			return nil, zerr.With(launchErr, "cause", err.Error())
		}
		if exitErr.ExitCode() != 1 {
			dumpErr := zerr.With(zerr.Wrap(domain.ErrDatabaseDumpFailed, lastLine(stderr.String())), "exit_code", exitErr.ExitCode())
			return nil, zerr.With(dumpErr, "file", inv.BuildFile)
		}
	}

	graph, err := ParseDatabase(stdout.String(), inv.BuildFile)
	if err != nil {
		return nil, zerr.With(err, "source", "make -p")
	}
	return graph, nil
}

func buildFilePath(inv *domain.Invocation) string {
	if filepath.IsAbs(inv.BuildFile) || inv.Dir == "" {
		return inv.BuildFile
	}
	return filepath.Join(inv.Dir, inv.BuildFile)
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
