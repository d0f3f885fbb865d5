package capability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestProbeMemoizes(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	probe := New("counting", func() bool {
		calls.Inc()

		return true
	})

	assert.False(t, probe.Checked())
	assert.Equal(t, "counting", probe.Name())

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.True(t, probe.Available())
		}()
	}

	wg.Wait()

	assert.True(t, probe.Checked())
	assert.Equal(t, int32(1), calls.Load())
}

func TestProbePanicIsUnavailable(t *testing.T) {
	t.Parallel()

	probe := New("panics", func() bool {
		panic("internal layout changed")
	})

	assert.NotPanics(t, func() {
		assert.False(t, probe.Available())
	})
	assert.True(t, probe.Checked())
	assert.False(t, probe.Available())
}

func TestProbeNilCheck(t *testing.T) {
	t.Parallel()

	assert.False(t, New("nil", nil).Available())
}

func TestStatic(t *testing.T) {
	t.Parallel()

	on := Static("on", true)
	assert.True(t, on.Checked())
	assert.True(t, on.Available())

	assert.False(t, Static("off", false).Available())
}
