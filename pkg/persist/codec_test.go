package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip codec testing.
type testState struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Values map[string]int `json:"values"`
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	original := testState{
		Name:   "test",
		Count:  42,
		Values: map[string]int{"a": 1, "b": 2},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
}

func TestJSONCodec_CompactNoIndent(t *testing.T) {
	t.Parallel()

	codec := &JSONCodec{Indent: ""}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, testState{Name: "compact", Count: 1}))

	// Compact JSON has at most one trailing newline (from json.Encoder).
	assert.LessOrEqual(t, strings.Count(buf.String(), "\n"), 1)
}

func TestJSONCodec_PrettyPrintNoHTMLEscape(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&buf, testState{Name: "<Maru & Clem>"}))

	assert.Contains(t, buf.String(), defaultIndent)
	assert.Contains(t, buf.String(), "<Maru & Clem>")
}

func TestJSONCodec_Errors(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	var decoded testState

	err := codec.Decode(strings.NewReader("not valid json{{{"), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")

	// Channels cannot be JSON-encoded.
	err = codec.Encode(&bytes.Buffer{}, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")
}

func TestLZ4Codec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewJSONCodec())
	assert.Equal(t, ".json.lz4", codec.Extension())

	original := testState{Name: strings.Repeat("Zergling", 200), Count: 7}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))
	assert.Less(t, buf.Len(), len(original.Name))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
}

func TestLZ4Codec_Errors(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewJSONCodec())

	err := codec.Encode(&bytes.Buffer{}, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")

	var decoded testState

	require.Error(t, codec.Decode(strings.NewReader("plain text, not a frame"), &decoded))
}

func TestCodecForPath(t *testing.T) {
	t.Parallel()

	codec, err := CodecForPath("out/match_info.json")
	require.NoError(t, err)
	assert.Equal(t, ".json", codec.Extension())

	codec, err = CodecForPath("out/MATCH_INFO.JSON.LZ4")
	require.NoError(t, err)
	assert.Equal(t, ".json.lz4", codec.Extension())

	_, err = CodecForPath("out/match_info.csv")
	require.ErrorIs(t, err, ErrUnknownExtension)
}

func TestSaveLoadState(t *testing.T) {
	t.Parallel()

	for _, codec := range []Codec{NewJSONCodec(), NewLZ4Codec(NewJSONCodec())} {
		dir := t.TempDir()
		original := testState{Name: "load-test", Count: 77, Values: map[string]int{"k": 5}}

		path, err := SaveState(dir, "test_state", codec, original)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "test_state"+codec.Extension()), path)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary file left behind")

		var loaded testState

		require.NoError(t, LoadState(dir, "test_state", codec, &loaded))
		assert.Equal(t, original, loaded)
	}
}

func TestSaveState_Overwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewJSONCodec()

	_, err := SaveState(dir, "s", codec, testState{Name: "first", Values: map[string]int{"long": 1}})
	require.NoError(t, err)

	_, err = SaveState(dir, "s", codec, testState{Name: "second"})
	require.NoError(t, err)

	var loaded testState

	require.NoError(t, LoadState(dir, "s", codec, &loaded))
	assert.Equal(t, testState{Name: "second"}, loaded)
}

func TestLoadState_FileNotFound(t *testing.T) {
	t.Parallel()

	var state testState

	err := LoadState(t.TempDir(), "nonexistent", NewJSONCodec(), &state)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "open")
}

func TestSaveState_InvalidDirectory(t *testing.T) {
	t.Parallel()

	_, err := SaveState("/nonexistent/path/that/does/not/exist", "test", NewJSONCodec(), testState{Name: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}

func TestSaveState_EncodeError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Channels cannot be JSON-encoded.
	_, err := SaveState(dir, "bad", NewJSONCodec(), make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadState_DecodeError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("not json{{{"), 0o600))

	var state testState

	err := LoadState(dir, "corrupt", NewJSONCodec(), &state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
