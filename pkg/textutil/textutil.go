// Package textutil sniffs leaf file contents: binary detection and the MPQ
// archive signature used by raw replay files.
package textutil

import "bytes"

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// mpqMagic prefixes every MPQ archive, including .SC2Replay files.
var mpqMagic = []byte("MPQ\x1b")

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// IsMPQArchive reports whether data starts with the MPQ user-data header.
func IsMPQArchive(data []byte) bool {
	return bytes.HasPrefix(data, mpqMagic)
}
