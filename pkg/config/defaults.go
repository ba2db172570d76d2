package config

import "time"

// Input and output defaults.
const (
	DefaultInputRoot      = "hsc_replays"
	DefaultOutputDir      = "."
	DefaultOutputArtifact = "match_info"
	DefaultOutputCSV      = "match_info.csv"
	DefaultOutputCompress = false
)

// Parser defaults.
const (
	DefaultParserKind    = ParserDump
	DefaultParserTimeout = 2 * time.Minute
)

// Matching defaults.
const (
	DefaultMatchingScorer   = "partial"
	DefaultMatchingStrategy = "first-name"
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = LogFormatText
	DefaultLoggingOutput = "stderr"
)

// Default returns the configuration used when no file or environment
// overrides anything.
func Default() Config {
	return Config{
		Input: InputConfig{Root: DefaultInputRoot},
		Output: OutputConfig{
			Dir:      DefaultOutputDir,
			Artifact: DefaultOutputArtifact,
			CSV:      DefaultOutputCSV,
			Compress: DefaultOutputCompress,
		},
		Parser: ParserConfig{
			Kind:    DefaultParserKind,
			Args:    []string{},
			Timeout: DefaultParserTimeout,
		},
		Matching: MatchingConfig{
			Scorer:   DefaultMatchingScorer,
			Strategy: DefaultMatchingStrategy,
		},
		Logging: LoggingConfig{
			Level:  DefaultLoggingLevel,
			Format: DefaultLoggingFormat,
			Output: DefaultLoggingOutput,
		},
	}
}
