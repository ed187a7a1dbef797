package search

import (
	"sort"
	"strings"

	"github.com/heatparts/storefront/pkg/types"
)

// Field weights.
const (
	WeightPartNumber   = 10.0
	WeightGCNumber     = 8.0
	WeightName         = 6.0
	WeightDescription  = 3.0
	WeightManufacturer = 2.0
)

const (
	exactMultiplier     = 3.0
	prefixMultiplier    = 2.0
	substringMultiplier = 1.0
	proximityFactor     = 0.5
)

// Scored pairs a part with its relevance score.
type Scored struct {
	Part  types.Part `json:"part"`
	Score float64    `json:"score"`
}

// fieldScore grades one field against an already lower-cased query.
func fieldScore(query, value string, weight float64) float64 {
	field := strings.ToLower(strings.TrimSpace(value))
	if field == "" || query == "" {
		return 0
	}
	switch {
	case field == query:
		return weight * exactMultiplier
	case strings.HasPrefix(field, query):
		return weight * prefixMultiplier
	}
	pos := strings.Index(field, query)
	if pos < 0 {
		return 0
	}
	proximity := (1 - float64(pos)/float64(len(field))) * proximityFactor
	return weight*substringMultiplier + weight*proximity
}

// Score returns the weighted relevance of part for query. Only the best
// GC code counts when a part carries several.
func Score(query string, part types.Part) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	total := fieldScore(q, part.PartNumber, WeightPartNumber)

	bestGC := 0.0
	for _, gc := range part.GCNumbers {
		if s := fieldScore(q, gc, WeightGCNumber); s > bestGC {
			bestGC = s
		}
	}
	total += bestGC

	total += fieldScore(q, part.Name, WeightName)
	total += fieldScore(q, part.Description, WeightDescription)
	total += fieldScore(q, part.Manufacturer, WeightManufacturer)
	return total
}

// Rank scores every candidate, drops those scoring zero and orders the rest
// by descending score. Equal scores keep their input order.
func Rank(query string, parts []types.Part) []Scored {
	out := make([]Scored, 0, len(parts))
	for _, p := range parts {
		if s := Score(query, p); s > 0 {
			out = append(out, Scored{Part: p, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
