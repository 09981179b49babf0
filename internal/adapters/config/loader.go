// Package config reads the optional .fake.yaml settings file and locates build files.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"

	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.SettingsLoader = (*Loader)(nil)

// Loader implements ports.SettingsLoader.
type Loader struct {
	Logger ports.Logger
	fs     FileSystem
}

// NewLoader creates a Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, fs: fsys}
}

// Load walks up from cwd and reads the first settings file found.
// A relative makefile setting is resolved against the directory of the settings file.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	path, found := l.findSettingsFile(cwd)
	if !found {
		return &domain.Settings{}, nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "file", path)
	}

	var file SettingsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			l.Logger.Warn(path + " is empty")
			return &domain.Settings{}, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "file", path)
	}

	settings := &domain.Settings{
		Makefile:    file.Makefile,
		Make:        file.Make,
		GraphSource: domain.GraphSource(file.GraphSource),
		OutputMode:  domain.OutputMode(file.OutputMode),
		Jobs:        file.Jobs,
		LogJSON:     file.LogJSON,
		Variables:   file.Variables,
	}
	if settings.Makefile != "" && !filepath.IsAbs(settings.Makefile) {
		settings.Makefile = filepath.Join(filepath.Dir(path), settings.Makefile)
	}

	if err := settings.Validate(); err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return settings, nil
}

func (l *Loader) findSettingsFile(cwd string) (string, bool) {
	dir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := l.fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ResolveBuildFile returns the build file make would read in dir.
// An explicit path is returned as given once it exists; relative paths are relative to dir.
func (l *Loader) ResolveBuildFile(dir, explicit string) (string, error) {
	if explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if _, err := l.fs.Stat(path); err != nil {
			return "", buildFileError(err, path)
		}
		return explicit, nil
	}

	for _, name := range domain.DefaultMakefileNames() {
		info, err := l.fs.Stat(filepath.Join(dir, name))
		if err == nil && !info.IsDir() {
			return name, nil
		}
	}

	err := zerr.Wrap(domain.ErrBuildFileNotFound, "no makefile found")
	err = zerr.With(err, "dir", dir)
	return "", zerr.With(err, "tried", domain.DefaultMakefileNames())
}

func buildFileError(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(domain.ErrBuildFileNotFound, err.Error()), "file", path)
	}
	return zerr.With(zerr.Wrap(domain.ErrBuildFileReadFailed, err.Error()), "file", path)
}
