package stream

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Envelope layout:
//
//	magic "AMS1" | format (1) | compression (1) | xxh3 of payload (8, big endian) | payload
var envelopeMagic = []byte("AMS1") //nolint:gochecknoglobals

const envelopeHeaderLen = 4 + 1 + 1 + 8

// Seal encodes, compresses and checksums a document.
func Seal(format Format, compression Compression, root *Node) ([]byte, error) {
	encoded, err := Encode(format, root)
	if err != nil {
		return nil, err
	}

	payload, err := Compress(compression, encoded)
	if err != nil {
		return nil, err
	}

	out := make([]byte, envelopeHeaderLen, envelopeHeaderLen+len(payload))
	copy(out, envelopeMagic)
	out[4] = byte(format)
	out[5] = byte(compression)
	binary.BigEndian.PutUint64(out[6:envelopeHeaderLen], xxh3.Hash(payload))

	return append(out, payload...), nil
}

// Open verifies and decodes an envelope produced by Seal.
func Open(data []byte) (*Node, error) {
	if len(data) < envelopeHeaderLen || !bytes.Equal(data[:4], envelopeMagic) {
		return nil, ErrBadEnvelope
	}

	format := Format(data[4])
	compression := Compression(data[5])
	sum := binary.BigEndian.Uint64(data[6:envelopeHeaderLen])
	payload := data[envelopeHeaderLen:]

	if got := xxh3.Hash(payload); got != sum {
		return nil, fmt.Errorf("%w: expected %016x, got %016x", ErrChecksumMismatch, sum, got)
	}

	encoded, err := Decompress(compression, payload)
	if err != nil {
		return nil, err
	}

	return Decode(format, encoded)
}
