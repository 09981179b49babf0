package linear_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fake/internal/adapters/linear"
	"go.trai.ch/fake/internal/core/domain"
)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr), &stdout, &stderr
}

func plan(targets ...string) domain.Plan {
	g := domain.NewGraph()
	g.Declare(domain.NewTargetName("all"), domain.NewTargetNames([]string{"lib"}))
	g.Declare(domain.NewTargetName("lib"), domain.NewTargetNames([]string{"lib.c"}))
	g.Declare(domain.NewTargetName("install"), domain.NewTargetNames([]string{"all"}))
	return domain.NewPlan(g, domain.NewTargetNames(targets))
}

func TestRenderer_Run(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, r.Start(t.Context()))
	r.OnPlanEmit(plan("install"))

	r.OnTaskStart("s1", "", "lib.c", t0)
	r.OnTaskComplete("s1", t0.Add(5*time.Millisecond), nil)

	r.OnTaskStart("s2", "", "lib", t0.Add(5*time.Millisecond))
	r.OnTaskLog("s2", []byte("cc -c lib.c\n\n  \n"))
	r.OnTaskComplete("s2", t0.Add(255*time.Millisecond), nil)

	r.OnTaskStart("s3", "", "all", t0.Add(255*time.Millisecond))
	r.OnTaskLog("s3", []byte("partial"))
	r.OnTaskComplete("s3", t0.Add(1505*time.Millisecond), errors.New("make exited with status 2"))

	r.OnTaskSkip("install", "all", t0.Add(1505*time.Millisecond))
	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	assert.Equal(t, strings.Join([]string{
		"queued 4 task(s) for install",
		"      ● lib.c started",
		"      ✓ lib.c done in 5ms",
		"    ● lib started",
		"    ✓ lib done in 250ms",
		"  ● all started",
		"  ✗ all failed after 1.25s: make exited with status 2",
		"– install skipped: dependency all failed",
		"✗ 2 done, 1 failed, 1 skipped in 1.51s",
		"",
	}, "\n"), stderr.String())

	assert.Equal(t, strings.Join([]string{
		"    lib │ cc -c lib.c",
		"  all │ partial",
		"",
	}, "\n"), stdout.String())
}

func TestRenderer_PartialLines(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	start := time.Now()

	r.OnTaskStart("span1", "", "lib", start)
	r.OnTaskLog("span1", []byte("partial"))
	assert.Empty(t, stdout.String())

	r.OnTaskLog("span1", []byte(" line\r\nsecond"))
	assert.Equal(t, "lib │ partial line\n", stdout.String())

	r.OnTaskComplete("span1", start.Add(time.Second), nil)
	assert.Equal(t, "lib │ partial line\nlib │ second\n", stdout.String())
}

func TestRenderer_StopFlushesRunningTasks(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnTaskStart("span1", "", "lib", time.Now())
	r.OnTaskLog("span1", []byte("interrupted"))
	require.NoError(t, r.Stop())

	assert.Equal(t, "lib │ interrupted\n", stdout.String())
	assert.Equal(t, "● lib started\n", stderr.String(), "no summary without finished tasks")
}

func TestRenderer_SuccessSummary(t *testing.T) {
	r, _, stderr := newRenderer(t)
	start := time.Now()

	r.OnTaskStart("span1", "", "lib", start)
	r.OnTaskComplete("span1", start.Add(2*time.Second), nil)
	require.NoError(t, r.Stop())

	assert.True(t, strings.HasSuffix(stderr.String(), "✓ 1 done, 0 failed, 0 skipped in 2s\n"), stderr.String())
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnTaskLog("missing", []byte("ignored\n"))
	r.OnTaskComplete("missing", time.Now(), nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_ConcurrentTasks(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	start := time.Now()

	const tasks, lines = 8, 50
	var wg sync.WaitGroup
	for i := range tasks {
		spanID := fmt.Sprintf("span%d", i)
		r.OnTaskStart(spanID, "", fmt.Sprintf("t%d", i), start)
		wg.Go(func() {
			for j := range lines {
				r.OnTaskLog(spanID, fmt.Appendf(nil, "line %d\n", j))
			}
			r.OnTaskComplete(spanID, start.Add(time.Second), nil)
		})
	}
	wg.Wait()

	out := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	assert.Len(t, out, tasks*lines)
	for _, line := range out {
		assert.Regexp(t, `^t\d │ line \d+$`, line)
	}
}
