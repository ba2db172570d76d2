// Package persist provides codec-based file persistence for arbitrary state types.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	lz4Extension  = ".lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// ErrUnknownExtension is returned by CodecForPath for unrecognized files.
var ErrUnknownExtension = errors.New("no codec for file extension")

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g., ".json", ".json.lz4").
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	decoder := json.NewDecoder(r)

	err := decoder.Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	inner Codec
}

// NewLZ4Codec creates an LZ4 codec around inner.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{inner: inner}
}

// Encode implements Codec.Encode, compressing the inner encoding.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := c.inner.Encode(zw, state)
	if err != nil {
		return errors.Join(err, zw.Close())
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode, decompressing before the inner decode.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	return c.inner.Decode(lz4.NewReader(r), state)
}

// Extension implements Codec.Extension as the inner extension plus ".lz4".
func (c *LZ4Codec) Extension() string {
	return c.inner.Extension() + lz4Extension
}

// CodecForPath picks a codec from a file name: ".json" or ".json.lz4".
func CodecForPath(path string) (Codec, error) {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasSuffix(name, jsonExtension+lz4Extension):
		return NewLZ4Codec(NewJSONCodec()), nil
	case strings.HasSuffix(name, jsonExtension):
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, path)
	}
}

// StatePath returns the file that SaveState and LoadState use.
func StatePath(dir, basename string, codec Codec) string {
	return filepath.Join(dir, basename+codec.Extension())
}

// SaveState saves the given state to a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
// It returns the path written.
func SaveState(dir, basename string, codec Codec, state any) (string, error) {
	path := StatePath(dir, basename, codec)

	err := WriteFile(path, codec, state)
	if err != nil {
		return "", err
	}

	return path, nil
}

// LoadState loads state from a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
// The state parameter must be a pointer to the target struct.
func LoadState(dir, basename string, codec Codec, state any) error {
	return ReadFile(StatePath(dir, basename, codec), codec, state)
}

// WriteFile encodes state into path. The file is written next to its
// destination and renamed into place, so readers never see a partial file.
func WriteFile(path string, codec Codec, state any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	err = codec.Encode(tmp, state)
	if err != nil {
		cleanup()

		return fmt.Errorf("encode state: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("close state file: %w", err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}

// ReadFile decodes path into state, which must be a pointer.
func ReadFile(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}
