package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fake/internal/adapters/watcher"
)

// batches records every delivered batch.
type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, paths)
}

func (b *batches) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/src/util.c")
		d.Add("/src/main.c")
		d.Add("/src/util.c")
		d.Add("/Makefile")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/Makefile", "/src/main.c", "/src/util.c"}}, b.all())
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/src/a.c")
		time.Sleep(60 * time.Millisecond)
		d.Add("/src/b.c")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, b.all(), "quiet period restarted by the second path")

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/src/a.c", "/src/b.c"}}, b.all())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Flush()
		assert.Empty(t, b.all(), "nothing pending")

		d.Add("/src/a.c")
		d.Flush()
		require.Equal(t, [][]string{{"/src/a.c"}}, b.all(), "delivered synchronously")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, b.all(), 1, "the stopped timer does not deliver again")

		d.Add("/src/b.c")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/src/a.c"}, {"/src/b.c"}}, b.all())
	})
}

func TestDebouncer_FlushAfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("/src/a.c")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()

		assert.Len(t, b.all(), 1)
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var b batches
		d := watcher.NewDebouncer(50*time.Millisecond, b.add)

		d.Add("/src/a.c")
		d.Stop()
		d.Add("/src/b.c")
		d.Flush()

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, b.all())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add("/src/a.c")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add("/src/b.c")
		d.Flush()
	})
}
