package sortedconv

import (
	"reflect"

	"github.com/amp-labs/amp-marshal/errors"
	"github.com/amp-labs/amp-marshal/marshal"
	"github.com/amp-labs/amp-marshal/ordering"
	"github.com/amp-labs/amp-marshal/stream"
)

const (
	// RuleNode holds an explicit ordering rule.
	RuleNode = "comparator"
	// NoRuleNode marks a container that uses natural order.
	NoRuleNode = "no-comparator"
	// FormatAttribute on the container node announces the stream layout.
	FormatAttribute = "format"
	// FormatVersion is written by this package. Streams carrying it always
	// start with RuleNode or NoRuleNode.
	FormatVersion = "2"
)

// Outcome is what RuleCodec.Unmarshal found as the container's first child.
type Outcome int

const (
	// Rule means an explicit rule node was decoded.
	Rule Outcome = iota
	// NoRule means the explicit null marker was read.
	NoRule
	// LegacyElement means the first child is already a data element. The
	// reader is left inside it.
	LegacyElement
	// Empty means the container node has no children.
	Empty
)

func (o Outcome) String() string {
	switch o {
	case Rule:
		return "rule"
	case NoRule:
		return "no-rule"
	case LegacyElement:
		return "legacy-element"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Decoded is the result of reading the rule position of a container.
type Decoded[T any] struct {
	// Rule is nil unless Outcome is Rule.
	Rule    ordering.Rule[T]
	Outcome Outcome
}

// InFirstElement reports whether the reader sits inside the first data
// element, which the caller must consume before moving on.
func (d Decoded[T]) InFirstElement() bool {
	return d.Outcome == LegacyElement
}

// RuleCodec writes and reads the ordering rule of a sorted container. A nil
// rule stands for natural order.
type RuleCodec[T any] struct{}

// Marshal writes the rule as the first child of the open container node.
func (RuleCodec[T]) Marshal(rule ordering.Rule[T], w stream.Writer, mc marshal.MarshalContext) error {
	if rule == nil {
		if err := w.StartNode(NoRuleNode); err != nil {
			return err
		}

		return w.EndNode()
	}

	value := reflect.ValueOf(rule)

	if err := w.StartNode(RuleNode); err != nil {
		return err
	}

	if err := w.AddAttribute(marshal.ClassAttribute, mc.Alias(value.Type())); err != nil {
		return err
	}

	if err := mc.ConvertAnother(w, value); err != nil {
		return errors.Annotate(err, "rule-type", value.Type().String())
	}

	return w.EndNode()
}

// Unmarshal reads the first child of the container the reader is on. When
// tagged is true the stream declared FormatVersion and the first child must
// be a rule node or the null marker. Untagged streams fall back to the
// structural check: anything else is taken to be the first data element.
func (RuleCodec[T]) Unmarshal(r stream.Reader, uc marshal.UnmarshalContext, tagged bool) (Decoded[T], error) {
	if !r.HasMoreChildren() {
		return Decoded[T]{Outcome: Empty}, nil
	}

	if err := r.MoveDown(); err != nil {
		return Decoded[T]{}, malformed(err, r)
	}

	switch r.NodeName() {
	case NoRuleNode:
		if err := r.MoveUp(); err != nil {
			return Decoded[T]{}, malformed(err, r)
		}

		return Decoded[T]{Outcome: NoRule}, nil
	case RuleNode:
		rule, err := readRule[T](r, uc)
		if err != nil {
			return Decoded[T]{}, err
		}

		if err := r.MoveUp(); err != nil {
			return Decoded[T]{}, malformed(err, r)
		}

		return Decoded[T]{Rule: rule, Outcome: Rule}, nil
	default:
		if tagged {
			return Decoded[T]{}, errors.NewConversionError("expected ordering rule", ErrMalformedStream).
				Add("found", r.NodeName()).
				Add("path", r.Path())
		}

		return Decoded[T]{Outcome: LegacyElement}, nil
	}
}

func readRule[T any](r stream.Reader, uc marshal.UnmarshalContext) (ordering.Rule[T], error) { //nolint:ireturn
	class, ok := r.Attribute(marshal.ClassAttribute)
	if !ok {
		return nil, errors.NewConversionError("ordering rule has no class", ErrMalformedStream).
			Add("path", r.Path())
	}

	typ, found := uc.TypeOf(class)
	if !found {
		return nil, errors.NewConversionError("unknown ordering rule", marshal.ErrUnknownAlias).
			Add("class", class).
			Add("path", r.Path())
	}

	ruleType := reflect.TypeFor[ordering.Rule[T]]()

	if !typ.Implements(ruleType) {
		return nil, errors.NewConversionError("not an ordering rule", errors.ErrWrongType).
			Add("class", class).
			Add("required-type", ruleType.String()).
			Add("path", r.Path())
	}

	value, err := uc.ConvertAnother(r, typ)
	if err != nil {
		return nil, err
	}

	rule, _ := value.Interface().(ordering.Rule[T])

	return rule, nil
}

func malformed(err error, r stream.Reader) error {
	return errors.NewConversionError("malformed sorted container", err).Add("path", r.Path())
}
