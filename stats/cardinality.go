package stats

import "sort"

// DefaultTopK is the spec's default top-K cardinality width (§4.6).
const DefaultTopK = 100

// cardinality tracks an exact distinct-value counter and exposes its
// top-K most-common entries; values beyond K are still counted toward
// nuniques, only excluded from the top-K view itself (spec.md §4.6).
type cardinality struct {
	k      int
	counts map[string]int
}

func newCardinality(k int) *cardinality {
	if k <= 0 {
		k = DefaultTopK
	}
	return &cardinality{k: k, counts: map[string]int{}}
}

func (c *cardinality) Observe(s string) {
	c.counts[s]++
}

// NUniques is the total number of distinct values observed.
func (c *cardinality) NUniques() int { return len(c.counts) }

// TopK returns the k most frequent distinct values, ties broken
// lexically for determinism.
func (c *cardinality) TopK() map[string]int {
	type kv struct {
		k string
		v int
	}
	all := make([]kv, 0, len(c.counts))
	for k, v := range c.counts {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	if len(all) > c.k {
		all = all[:c.k]
	}
	out := make(map[string]int, len(all))
	for _, e := range all {
		out[e.k] = e.v
	}
	return out
}
