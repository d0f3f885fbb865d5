// Package capability provides one-shot, memoized feature probes.
//
// A Probe answers a yes/no question about the running process (for example
// "does a fresh TreeSet expose an appendable backing tree?") exactly once.
// A probe whose check panics reports false; it never surfaces an error.
package capability

import (
	"context"
	"fmt"
	"sync"

	"github.com/amp-labs/amp-marshal/logger"
	"go.uber.org/atomic"
)

// Check is the question a Probe answers.
type Check func() bool

// Probe is a process-wide, lazily evaluated capability flag.
type Probe struct {
	name  string
	check Check
	once  sync.Once

	checked   atomic.Bool
	available atomic.Bool
}

// New creates a probe. The check runs on the first call to Available.
func New(name string, check Check) *Probe {
	return &Probe{name: name, check: check}
}

// Name returns the probe's name.
func (p *Probe) Name() string {
	return p.name
}

// Available runs the check if it hasn't run yet and returns the memoized result.
func (p *Probe) Available() bool {
	p.once.Do(func() {
		ok, err := run(p.check)
		if err != nil {
			logger.Get(logger.WithSubsystem(context.Background(), "capability")).
				Debug("capability probe failed, treating as unavailable",
					"probe", p.name, "error", err)
		}

		p.available.Store(ok)
		p.checked.Store(true)
	})

	return p.available.Load()
}

// Checked reports whether the check has already run.
func (p *Probe) Checked() bool {
	return p.checked.Load()
}

func run(check Check) (ok bool, err error) {
	if check == nil {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w: %v", ErrProbePanicked, r)
		}
	}()

	return check(), nil
}

// Static returns a probe with a fixed answer, already checked.
func Static(name string, available bool) *Probe {
	p := &Probe{name: name}
	p.once.Do(func() {})
	p.available.Store(available)
	p.checked.Store(true)

	return p
}
