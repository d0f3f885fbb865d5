package sortedconv

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// State is a step of unmarshalling a sorted container.
type State int

const (
	AwaitingRuleNode State = iota
	RuleKnown
	InFirstElement
	PopulatingFast
	PopulatingBuffered
	PopulatingOrdinary
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingRuleNode:
		return "awaiting-rule-node"
	case RuleKnown:
		return "rule-known"
	case InFirstElement:
		return "in-first-element"
	case PopulatingFast:
		return "populating-fast"
	case PopulatingBuffered:
		return "populating-buffered"
	case PopulatingOrdinary:
		return "populating-ordinary"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Path is the population strategy for a reconstructed container.
type Path int

const (
	// PathAuto picks the best path the container and the probes allow.
	PathAuto Path = iota
	// PathFast appends to the container's backing tree in stream order.
	PathFast
	// PathBuffered stages the stream in a Presorted buffer and bulk loads it.
	PathBuffered
	// PathOrdinary inserts element by element through the rule.
	PathOrdinary
)

func (p Path) String() string {
	switch p {
	case PathAuto:
		return "auto"
	case PathFast:
		return "fast"
	case PathBuffered:
		return "buffered"
	case PathOrdinary:
		return "ordinary"
	default:
		return fmt.Sprintf("path(%d)", int(p))
	}
}

// ParsePath parses "auto", "fast", "buffered" or "ordinary".
func ParsePath(name string) (Path, error) {
	for _, p := range []Path{PathAuto, PathFast, PathBuffered, PathOrdinary} {
		if p.String() == name {
			return p, nil
		}
	}

	return PathAuto, fmt.Errorf("%w: %q", ErrUnknownPath, name)
}

func (p Path) state() State {
	switch p {
	case PathFast:
		return PopulatingFast
	case PathBuffered:
		return PopulatingBuffered
	default:
		return PopulatingOrdinary
	}
}

// Transition observes state changes, for logging and tests.
type Transition func(from, to State)

type machine struct {
	state State
	hooks []Transition
	span  trace.Span
}

func (m *machine) to(next State) {
	for _, hook := range m.hooks {
		hook(m.state, next)
	}

	if m.span != nil {
		m.span.AddEvent("transition", trace.WithAttributes(
			attribute.String("from", m.state.String()),
			attribute.String("to", next.String())))
		m.span.SetAttributes(attribute.String("state", next.String()))
	}

	m.state = next
}
