package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T) *Node {
	t.Helper()

	w := NewWriter()

	require.NoError(t, w.StartNode("sorted-set"))
	require.NoError(t, w.AddAttribute("format", "2"))
	require.NoError(t, w.StartNode("no-comparator"))
	require.NoError(t, w.EndNode())

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, w.StartNode("string"))
		require.NoError(t, w.SetValue(v))
		require.NoError(t, w.EndNode())
	}

	require.NoError(t, w.EndNode())
	assert.Zero(t, w.Depth())

	return w.Root()
}

func TestWriter(t *testing.T) {
	t.Parallel()

	root := sampleDocument(t)

	assert.Equal(t,
		`<sorted-set format="2"><no-comparator/><string>a</string><string>b</string><string>c</string></sorted-set>`,
		root.String())

	w := NewWriter()
	require.ErrorIs(t, w.AddAttribute("k", "v"), ErrNoOpenNode)
	require.ErrorIs(t, w.EndNode(), ErrNoOpenNode)
	require.NoError(t, w.StartNode("a"))
	require.NoError(t, w.EndNode())
	require.ErrorIs(t, w.StartNode("b"), ErrMultipleRoots)
}

func TestReaderPaths(t *testing.T) {
	t.Parallel()

	r := NewReader(sampleDocument(t))

	assert.Equal(t, "/sorted-set", r.Path())

	format, ok := r.Attribute("format")
	assert.True(t, ok)
	assert.Equal(t, "2", format)

	require.NoError(t, r.MoveDown())
	assert.Equal(t, "no-comparator", r.NodeName())
	assert.False(t, r.HasMoreChildren())
	require.NoError(t, r.MoveUp())

	var values []string

	for r.HasMoreChildren() {
		require.NoError(t, r.MoveDown())
		values = append(values, r.Value())

		if r.Value() == "b" {
			assert.Equal(t, "/sorted-set/string[2]", r.Path())
		}

		require.NoError(t, r.MoveUp())
	}

	assert.Equal(t, []string{"a", "b", "c"}, values)
	require.ErrorIs(t, r.MoveDown(), ErrNoMoreChildren)
	require.ErrorIs(t, r.MoveUp(), ErrAtRoot)
	assert.Zero(t, r.Depth())
}

func TestEncodings(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatYAML, FormatCBOR} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			root := sampleDocument(t)

			data, err := Encode(format, root)
			require.NoError(t, err)

			decoded, err := Decode(format, data)
			require.NoError(t, err)
			assert.Equal(t, root.String(), decoded.String())
		})
	}

	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestCBORIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := EncodeCBOR(sampleDocument(t))
	require.NoError(t, err)

	second, err := EncodeCBOR(sampleDocument(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompression(t *testing.T) {
	t.Parallel()

	data := []byte("sorted-set sorted-set sorted-set sorted-set sorted-set sorted-set")

	for _, name := range []string{"none", "zstd", "lz4", "brotli"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := ParseCompression(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.String())

			compressed, err := Compress(c, data)
			require.NoError(t, err)

			out, err := Decompress(c, compressed)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	root := sampleDocument(t)

	sealed, err := Seal(FormatCBOR, CompressionZstd, root)
	require.NoError(t, err)

	opened, err := Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, root.String(), opened.String())

	corrupt := append([]byte(nil), sealed...)
	corrupt[len(corrupt)-1] ^= 0xff

	_, err = Open(corrupt)
	require.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = Open([]byte("nope"))
	require.ErrorIs(t, err, ErrBadEnvelope)
}
