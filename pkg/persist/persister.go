package persist

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given basename and codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		basename: basename,
		codec:    codec,
	}
}

// Path returns the file the persister uses inside dir.
func (p *Persister[T]) Path(dir string) string {
	return StatePath(dir, p.basename, p.codec)
}

// Save writes state to dir and returns the file path.
func (p *Persister[T]) Save(dir string, state *T) (string, error) {
	return SaveState(dir, p.basename, p.codec, state)
}

// Load restores state from dir.
func (p *Persister[T]) Load(dir string) (*T, error) {
	var state T

	err := LoadState(dir, p.basename, p.codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
