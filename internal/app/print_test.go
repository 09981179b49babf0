package app_test

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fake/internal/app"
	"go.trai.ch/fake/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func TestApp_PrintGraph(t *testing.T) {
	f := newFixture(t)
	f.expectSettings(nil, "")
	f.syntax.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testGraph(), nil)

	require.NoError(t, f.app(nil).PrintGraph(t.Context(), app.Options{}))

	g := goldie.New(t)
	g.Assert(t, "print_graph", f.stdout.Bytes())
}

func TestApp_PrintGraph_LoadError(t *testing.T) {
	f := newFixture(t)
	f.expectSettings(nil, "")
	f.syntax.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, domain.ErrInvalidBuildFile)

	err := f.app(nil).PrintGraph(t.Context(), app.Options{})

	require.ErrorIs(t, err, domain.ErrInvalidBuildFile)
	assert.Empty(t, f.stdout.String())
}

func TestApp_PrintTargets(t *testing.T) {
	f := newFixture(t)
	f.expectSettings(nil, "")
	f.syntax.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testGraph(), nil)

	require.NoError(t, f.app(nil).PrintTargets(t.Context(), app.Options{}))

	assert.Equal(t, "all\nlib\ndocs\nutil.o\n", f.stdout.String())
}

func TestApp_PrintTargets_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{
			name: "settings",
			setup: func(f *fixture) {
				f.settings.EXPECT().Load(f.dir).Return(nil, domain.ErrConfigReadFailed)
			},
		},
		{
			name: "no build file",
			setup: func(f *fixture) {
				f.settings.EXPECT().Load(f.dir).Return(&domain.Settings{}, nil)
				f.settings.EXPECT().ResolveBuildFile(f.dir, "").Return("", domain.ErrBuildFileNotFound)
			},
		},
		{
			name: "graph",
			setup: func(f *fixture) {
				f.expectSettings(nil, "")
				f.syntax.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, errors.New("make: not found"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			require.NoError(t, f.app(nil).PrintTargets(t.Context(), app.Options{}))
			assert.Empty(t, f.stdout.String())
		})
	}
}
