package ports

import "go.trai.ch/fake/internal/core/domain"

// SettingsLoader defines the interface for reading persistent settings and locating build files.
//
//go:generate mockgen -source=settings_loader.go -destination=mocks/mock_settings_loader.go -package=mocks
type SettingsLoader interface {
	// Load walks up from cwd to the nearest settings file.
	// A missing file yields zero Settings and no error.
	Load(cwd string) (*domain.Settings, error)

	// ResolveBuildFile returns the build file for dir.
	// An explicit path is checked for existence; otherwise make's default names are tried.
	ResolveBuildFile(dir, explicit string) (string, error)
}
