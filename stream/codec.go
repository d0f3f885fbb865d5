package stream

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format selects the document encoding.
type Format uint8

const (
	FormatYAML Format = 1
	FormatCBOR Format = 2
)

// String returns the configuration name of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// ParseFormat parses "yaml" or "cbor".
func ParseFormat(name string) (Format, error) {
	switch name {
	case "yaml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("%w: document format %q", ErrUnknownFormat, name)
	}
}

// cborEnc uses Core Deterministic Encoding so equal documents produce
// identical bytes, which keeps envelope checksums stable.
var (
	cborEnc cbor.EncMode //nolint:gochecknoglobals
	cborDec cbor.DecMode //nolint:gochecknoglobals
)

func init() { //nolint:gochecknoinits
	var err error

	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("stream: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("stream: CBOR decoder initialization failed: " + err.Error())
	}
}

// EncodeYAML renders a document as YAML.
func EncodeYAML(root *Node) ([]byte, error) {
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml document: %w", err)
	}

	return out, nil
}

// DecodeYAML parses a document produced by EncodeYAML.
func DecodeYAML(data []byte) (*Node, error) {
	root := &Node{}

	if err := yaml.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("decoding yaml document: %w", err)
	}

	return root, nil
}

// EncodeCBOR renders a document as deterministic CBOR.
func EncodeCBOR(root *Node) ([]byte, error) {
	out, err := cborEnc.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding cbor document: %w", err)
	}

	return out, nil
}

// DecodeCBOR parses a document produced by EncodeCBOR.
func DecodeCBOR(data []byte) (*Node, error) {
	root := &Node{}

	if err := cborDec.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("decoding cbor document: %w", err)
	}

	return root, nil
}

// Encode renders a document in the given format.
func Encode(format Format, root *Node) ([]byte, error) {
	switch format {
	case FormatYAML:
		return EncodeYAML(root)
	case FormatCBOR:
		return EncodeCBOR(root)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Decode parses a document in the given format.
func Decode(format Format, data []byte) (*Node, error) {
	switch format {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatCBOR:
		return DecodeCBOR(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
