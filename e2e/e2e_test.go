//go:build e2e

package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var fakeBinary string

// stubMake prints the target it was asked to build and fails for targets named fail*.
const stubMake = `#!/bin/sh
target=""
skip=0
for arg in "$@"; do
	if [ "$skip" = 1 ]; then
		skip=0
		continue
	fi
	case "$arg" in
		-f|-o) skip=1 ;;
		-*) ;;
		*=*) ;;
		*) target="$arg" ;;
	esac
done
echo "building $target"
case "$target" in
	fail*)
		echo "error in $target" >&2
		exit 2
		;;
esac
`

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "fake-e2e-*")
	if err != nil {
		panic(err)
	}

	fakeBinary = filepath.Join(tmpDir, "fake")

	//nolint:gosec // Building binary with static arguments, not user input
	cmd := exec.Command("go", "build", "-o", fakeBinary, "./cmd/fake")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build fake binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
	})
}

func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	stubDir := filepath.Join(env.WorkDir, ".bin")
	if err := os.MkdirAll(stubDir, 0o750); err != nil {
		return err
	}
	//nolint:gosec // the stub must be executable
	if err := os.WriteFile(filepath.Join(stubDir, "make"), []byte(stubMake), 0o755); err != nil {
		return err
	}

	binDir := filepath.Dir(fakeBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", stubDir+string(os.PathListSeparator)+binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	return nil
}
