// Package analysis computes category frequency tables over table columns.
package analysis

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/carflow/pkg/config"
)

// Bucket is one category and the number of rows holding it
type Bucket struct {
	Category string
	Count    int
}

// FrequencyTable is a list of buckets ordered by descending count. Ties keep
// the order in which their categories were first seen.
type FrequencyTable []Bucket

// Count builds the frequency table of values. Empty and whitespace-only
// values are missing and are not counted.
func Count(values []string) FrequencyTable {
	var ft FrequencyTable
	index := make(map[string]int)
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if i, ok := index[v]; ok {
			ft[i].Count++
			continue
		}
		index[v] = len(ft)
		ft = append(ft, Bucket{Category: v, Count: 1})
	}

	sort.SliceStable(ft, func(i, j int) bool {
		return ft[i].Count > ft[j].Count
	})
	return ft
}

// Categories returns the category labels in table order
func (ft FrequencyTable) Categories() []string {
	out := make([]string, len(ft))
	for i, b := range ft {
		out[i] = b.Category
	}
	return out
}

// Counts returns the counts in table order
func (ft FrequencyTable) Counts() []int {
	out := make([]int, len(ft))
	for i, b := range ft {
		out[i] = b.Count
	}
	return out
}

// Total returns the number of counted (non-missing) values
func (ft FrequencyTable) Total() int {
	n := 0
	for _, b := range ft {
		n += b.Count
	}
	return n
}

// Max returns the largest count, or 0 for an empty table
func (ft FrequencyTable) Max() int {
	if len(ft) == 0 {
		return 0
	}
	return ft[0].Count
}

// Get returns the count of category
func (ft FrequencyTable) Get(category string) int {
	for _, b := range ft {
		if b.Category == category {
			return b.Count
		}
	}
	return 0
}

// IsMissing reports whether a cell holds no value
func IsMissing(v string) bool {
	return strings.TrimSpace(v) == ""
}

// Normalizer rewrites a cell value before it is counted
type Normalizer func(string) string

// Replace returns a normalizer that rewrites cells exactly equal to from
func Replace(from, to string) Normalizer {
	return func(v string) string {
		if v == from {
			return to
		}
		return v
	}
}

// FirstToken keeps the first whitespace-delimited token of v, so "Dark Blue"
// becomes "Dark". A value with no tokens becomes missing.
func FirstToken(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Chain applies normalizers in order
func Chain(normalizers ...Normalizer) Normalizer {
	return func(v string) string {
		for _, n := range normalizers {
			v = n(v)
		}
		return v
	}
}

// NewNormalizer builds the normalizer a chart asks for: exact replacements
// first, then first-token reduction.
func NewNormalizer(ch config.ChartConfig) Normalizer {
	var chain []Normalizer
	if len(ch.Replace) > 0 {
		table := make(map[string]string, len(ch.Replace))
		for _, r := range ch.Replace {
			if _, dup := table[r.From]; !dup {
				table[r.From] = r.To
			}
		}
		chain = append(chain, func(v string) string {
			if to, ok := table[v]; ok {
				return to
			}
			return v
		})
	}
	if ch.FirstToken {
		chain = append(chain, FirstToken)
	}
	return Chain(chain...)
}

// Apply returns a normalized copy of values
func Apply(values []string, n Normalizer) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = n(v)
	}
	return out
}
