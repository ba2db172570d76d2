package fuzz

import "github.com/Sumatoshi-tech/replaystats/pkg/alg/lru"

// pair is an ordered scorer argument pair.
type pair struct {
	a, b string
}

// CachedScorer memoizes a scorer. Tournament trees score the same name
// pairs once per game of a series.
type CachedScorer struct {
	score ScorerFunc
	cache *lru.Cache[pair, int]
}

// NewCachedScorer wraps score with an LRU of size entries.
func NewCachedScorer(score ScorerFunc, size int) *CachedScorer {
	return &CachedScorer{score: score, cache: lru.New[pair, int](size)}
}

// Score returns score(a, b), computing it at most once per cached pair.
func (c *CachedScorer) Score(a, b string) int {
	return c.cache.GetOrCompute(pair{a: a, b: b}, func() int {
		return c.score(a, b)
	})
}

// Stats reports cache hits and misses.
func (c *CachedScorer) Stats() lru.Stats {
	return c.cache.Stats()
}
