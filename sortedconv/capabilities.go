package sortedconv

import (
	"slices"

	"github.com/amp-labs/amp-marshal/capability"
	"github.com/amp-labs/amp-marshal/ordering"
	"github.com/amp-labs/amp-marshal/sorted"
)

// refusingRule panics when consulted. The probes use it to prove that a
// population entry point trusts its input order.
func refusingRule() ordering.Rule[int] { //nolint:ireturn
	return ordering.Func[int](func(int, int) int {
		panic("ordering rule consulted")
	})
}

var probeInput = []int{1, 2, 3} //nolint:gochecknoglobals

//nolint:gochecknoglobals
var (
	fastPathProbe = capability.New("sorted-backing-append", func() bool {
		var set sorted.Set[int] = sorted.NewTreeSetWithRule(refusingRule())

		backed, ok := set.(sorted.Backed[int])
		if !ok {
			return false
		}

		backing := backed.Backing()
		for _, v := range probeInput {
			backing.AppendSorted(v, struct{}{})
		}

		return set.Size() == len(probeInput) && slices.Equal(slices.Collect(set.Seq()), probeInput)
	})

	bulkLoadProbe = capability.New("sorted-bulk-load", func() bool {
		var set sorted.Set[int] = sorted.NewTreeSetWithRule(refusingRule())

		loader, ok := set.(sorted.Loader[int])
		if !ok {
			return false
		}

		loader.LoadSorted(slices.Clone(probeInput))

		return set.Size() == len(probeInput) && slices.Equal(slices.Collect(set.Seq()), probeInput)
	})
)

// Capabilities are the probes a converter consults when choosing a path.
type Capabilities struct {
	FastPath *capability.Probe
	BulkLoad *capability.Probe
}

// DefaultCapabilities returns the process-wide probes.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		FastPath: fastPathProbe,
		BulkLoad: bulkLoadProbe,
	}
}

// ForcePath returns capabilities that steer converters to path, provided the
// container supports it. Unsupported paths still degrade along
// fast, buffered, ordinary.
func ForcePath(path Path) Capabilities {
	switch path {
	case PathFast:
		return Capabilities{
			FastPath: capability.Static("forced-fast", true),
			BulkLoad: capability.Static("forced-fast", true),
		}
	case PathBuffered:
		return Capabilities{
			FastPath: capability.Static("forced-buffered", false),
			BulkLoad: capability.Static("forced-buffered", true),
		}
	case PathOrdinary:
		return Capabilities{
			FastPath: capability.Static("forced-ordinary", false),
			BulkLoad: capability.Static("forced-ordinary", false),
		}
	default:
		return DefaultCapabilities()
	}
}

func (c Capabilities) fast() bool {
	return c.FastPath != nil && c.FastPath.Available()
}

func (c Capabilities) bulk() bool {
	return c.BulkLoad != nil && c.BulkLoad.Available()
}
