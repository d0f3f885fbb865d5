package beans

import (
	"context"
	"reflect"
	"strings"
	"unicode"

	"github.com/amp-labs/amp-marshal/logger"
)

// Introspector reports the raw properties of a struct type, readable,
// writable or both, in a stable order.
type Introspector interface {
	Introspect(t reflect.Type) ([]*Descriptor, error)
}

// ReflectIntrospector discovers properties with package reflect.
//
// Fields: every exported field, in declaration order, with embedded structs
// promoted in place. A `bean:"name"` tag renames the property, `bean:"-"`
// skips it and `bean:",readonly"` drops its write capability.
//
// Methods: on the pointer type, X() T or X() (T, error) is a getter and
// SetX(T) or SetX(T) error is a setter for property "x". Method properties
// follow field properties, in method-set (lexical) order.
type ReflectIntrospector struct{}

var _ Introspector = ReflectIntrospector{}

const tagName = "bean"

type candidate struct {
	desc   *Descriptor
	field  string
	depth  int
	tagged bool
}

func (ReflectIntrospector) Introspect(t reflect.Type) ([]*Descriptor, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil
	}

	var fields []candidate

	collectFields(t, nil, 0, &fields)

	props := resolveFields(t, fields)

	seen := make(map[string]bool, len(props))
	for _, d := range props {
		seen[d.Name] = true
	}

	for _, d := range methodProperties(t) {
		if !seen[d.Name] {
			props = append(props, d)
		}
	}

	return props, nil
}

func collectFields(t reflect.Type, prefix []int, depth int, out *[]candidate) {
	for i := range t.NumField() {
		field := t.Field(i)

		name, readonly, skip := parseTag(field.Tag.Get(tagName))
		if skip {
			continue
		}

		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && name == "" && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, depth+1, out)

			continue
		}

		if !field.IsExported() {
			continue
		}

		tagged := name != ""
		if !tagged {
			name = PropertyName(field.Name)
		}

		*out = append(*out, candidate{
			field:  field.Name,
			depth:  depth,
			tagged: tagged,
			desc: &Descriptor{
				Name:     name,
				Type:     field.Type,
				Owner:    t,
				Readable: true,
				Writable: !readonly,
				Access:   fieldAccessor{index: index},
			},
		})
	}
}

// resolveFields picks one field per property name the way encoding/json
// does: the shallowest fields win, and among those a single tagged field
// beats untagged ones. Any other tie hides the name entirely.
func resolveFields(owner reflect.Type, fields []candidate) []*Descriptor {
	var (
		order  []string
		groups = make(map[string][]candidate)
	)

	for _, c := range fields {
		if _, ok := groups[c.desc.Name]; !ok {
			order = append(order, c.desc.Name)
		}

		groups[c.desc.Name] = append(groups[c.desc.Name], c)
	}

	winners := make(map[*Descriptor]bool, len(groups))

	for _, name := range order {
		group := groups[name]

		desc, ok := dominant(group)
		if !ok {
			names := make([]string, 0, len(group))
			for _, c := range group {
				names = append(names, c.field)
			}

			logger.Get(logger.WithSubsystem(context.Background(), "beans")).Debug("ambiguous property hidden",
				"type", owner.String(), "property", name, "fields", names)

			continue
		}

		winners[desc] = true
	}

	out := make([]*Descriptor, 0, len(winners))

	for _, c := range fields {
		if winners[c.desc] {
			out = append(out, c.desc)
		}
	}

	return out
}

func dominant(group []candidate) (*Descriptor, bool) {
	shallowest := group[0].depth
	for _, c := range group {
		shallowest = min(shallowest, c.depth)
	}

	var (
		top    []candidate
		tagged []candidate
	)

	for _, c := range group {
		if c.depth != shallowest {
			continue
		}

		top = append(top, c)

		if c.tagged {
			tagged = append(tagged, c)
		}
	}

	switch {
	case len(top) == 1:
		return top[0].desc, true
	case len(tagged) == 1:
		return tagged[0].desc, true
	default:
		return nil, false
	}
}

func parseTag(tag string) (name string, readonly bool, skip bool) {
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")

	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "readonly" {
			readonly = true
		}
	}

	return name, readonly, false
}

var errorType = reflect.TypeFor[error]() //nolint:gochecknoglobals

type methodPair struct {
	name string
	typ  reflect.Type
	acc  methodAccessor
}

func methodProperties(t reflect.Type) []*Descriptor {
	ptr := reflect.PointerTo(t)

	var (
		order []string
		pairs = make(map[string]*methodPair)
	)

	pairFor := func(name string) *methodPair {
		p, ok := pairs[name]
		if !ok {
			p = &methodPair{name: name, acc: methodAccessor{getter: -1, setter: -1}}
			pairs[name] = p
			order = append(order, name)
		}

		return p
	}

	for i := range ptr.NumMethod() {
		method := ptr.Method(i)
		mt := method.Type // includes the receiver

		if typ, withErr, ok := getterShape(mt); ok {
			p := pairFor(PropertyName(method.Name))
			if p.typ == nil || p.typ == typ {
				p.typ = typ
				p.acc.getter = i
				p.acc.getterErr = withErr
			}

			continue
		}

		if prop, found := strings.CutPrefix(method.Name, "Set"); found && prop != "" {
			if typ, withErr, ok := setterShape(mt); ok {
				p := pairFor(PropertyName(prop))
				if p.typ == nil || p.typ == typ {
					p.typ = typ
					p.acc.setter = i
					p.acc.setterErr = withErr
				}
			}
		}
	}

	out := make([]*Descriptor, 0, len(order))

	for _, name := range order {
		p := pairs[name]
		out = append(out, &Descriptor{
			Name:     p.name,
			Type:     p.typ,
			Owner:    t,
			Readable: p.acc.getter >= 0,
			Writable: p.acc.setter >= 0,
			Access:   p.acc,
		})
	}

	return out
}

func getterShape(mt reflect.Type) (reflect.Type, bool, bool) {
	if mt.NumIn() != 1 {
		return nil, false, false
	}

	switch mt.NumOut() {
	case 1:
		if mt.Out(0) == errorType {
			return nil, false, false
		}

		return mt.Out(0), false, true
	case 2: //nolint:mnd
		if mt.Out(1) != errorType {
			return nil, false, false
		}

		return mt.Out(0), true, true
	default:
		return nil, false, false
	}
}

func setterShape(mt reflect.Type) (reflect.Type, bool, bool) {
	if mt.NumIn() != 2 { //nolint:mnd
		return nil, false, false
	}

	switch {
	case mt.NumOut() == 0:
		return mt.In(1), false, true
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
		return mt.In(1), true, true
	default:
		return nil, false, false
	}
}

// PropertyName converts a Go identifier to a property name by lowering its
// leading capital or leading acronym: "Name" -> "name", "URLPath" -> "urlPath",
// "ID" -> "id".
func PropertyName(ident string) string {
	runes := []rune(ident)

	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}

	switch {
	case upper == 0:
		return ident
	case upper == 1 || upper == len(runes):
	default:
		// Keep the capital that starts the next word.
		if unicode.IsLetter(runes[upper]) {
			upper--
		}
	}

	for i := range upper {
		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}
