package sortedconv

import (
	"cmp"
	"fmt"
	"reflect"

	"github.com/amp-labs/amp-marshal/marshal"
	"github.com/amp-labs/amp-marshal/ordering"
	"github.com/amp-labs/amp-marshal/sorted"
)

// RegisterSet installs conv and names *sorted.TreeSet[T] alias.
func RegisterSet[T any](m *marshal.Marshaller, alias string, conv *SetConverter[T]) error {
	if err := m.Registry().Register(alias, reflect.TypeFor[*sorted.TreeSet[T]]()); err != nil {
		return err
	}

	m.Register(conv)

	return nil
}

// RegisterMap installs conv and names *sorted.TreeMap[K, V] alias.
func RegisterMap[K any, V any](m *marshal.Marshaller, alias string, conv *MapConverter[K, V]) error {
	if err := m.Registry().Register(alias, reflect.TypeFor[*sorted.TreeMap[K, V]]()); err != nil {
		return err
	}

	m.Register(conv)

	return nil
}

// RegisterRules names the natural and reverse rules for T as
// "natural.<name>" and "reverse.<name>".
func RegisterRules[T cmp.Ordered](reg *marshal.Registry, name string) error {
	if err := marshal.RegisterType[ordering.Natural[T]](reg, "natural."+name); err != nil {
		return err
	}

	return marshal.RegisterType[ordering.Reverse[T]](reg, "reverse."+name)
}

// RegisterStringRules names the string rules shipped with package ordering.
func RegisterStringRules(reg *marshal.Registry) error {
	if err := RegisterRules[string](reg, "string"); err != nil {
		return err
	}

	for alias, t := range map[string]reflect.Type{
		"natsort":          reflect.TypeFor[ordering.NaturalString](),
		"case-insensitive": reflect.TypeFor[ordering.CaseInsensitive](),
		"collation":        reflect.TypeFor[*ordering.Collation](),
	} {
		if err := reg.Register(alias, t); err != nil {
			return fmt.Errorf("registering %s: %w", alias, err)
		}
	}

	return nil
}
