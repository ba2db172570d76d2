// Package export persists unit records as the match_info artifact and
// renders them as CSV, JSON, YAML or a terminal table.
package export

//go:generate go run ../../tools/schemagen -o schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/replaystats/pkg/persist"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
)

// SchemaName is the file name of the artifact JSON schema.
const SchemaName = "match_info.schema.json"

// DefaultArtifactName is the artifact basename, without extension.
const DefaultArtifactName = "match_info"

// Sentinel artifact errors.
var (
	ErrInvalidArtifact = errors.New("artifact does not match schema")
	ErrSchema          = errors.New("artifact schema")
)

//go:embed schema/match_info.schema.json
var artifactSchema []byte

// Artifact is the persisted form of a run.
type Artifact struct {
	MatchInfo []records.Record `json:"match_info" yaml:"match_info"`
}

// ValidationError lists every schema violation of an artifact.
type ValidationError struct {
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidArtifact, strings.Join(e.Problems, "; "))
}

// Unwrap makes errors.Is match ErrInvalidArtifact.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidArtifact
}

// Schema returns the embedded artifact schema.
func Schema() []byte {
	return append([]byte(nil), artifactSchema...)
}

// Codec returns the artifact codec: compact JSON, optionally LZ4 framed.
func Codec(compress bool) persist.Codec {
	codec := persist.Codec(&persist.JSONCodec{})
	if compress {
		codec = persist.NewLZ4Codec(codec)
	}

	return codec
}

// SaveArtifact writes recs to dir/name with the artifact codec and returns
// the file path.
func SaveArtifact(dir, name string, recs []records.Record, compress bool) (string, error) {
	if name == "" {
		name = DefaultArtifactName
	}

	if recs == nil {
		recs = []records.Record{}
	}

	path, err := persist.NewPersister[Artifact](name, Codec(compress)).Save(dir, &Artifact{MatchInfo: recs})
	if err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}

	return path, nil
}

// LoadArtifact reads an artifact file. The codec follows the extension.
// With validate set, the document is checked against the embedded schema
// before decoding.
func LoadArtifact(path string, validate bool) ([]records.Record, error) {
	codec, err := persist.CodecForPath(path)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage

	err = persist.ReadFile(path, codec, &raw)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}

	if validate {
		err = Validate(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	var artifact Artifact

	err = json.Unmarshal(raw, &artifact)
	if err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	return artifact.MatchInfo, nil
}

// Validate checks an artifact document against the embedded schema.
func Validate(document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(artifactSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ValidationError{Problems: problems}
}
