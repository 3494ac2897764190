package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/recommend"
)

// maxPerTypeLimit caps the per-type limit a client may request.
const maxPerTypeLimit = 50

// parseCriteria reads brand, type and max_per_type from a form or query.
// Values may be repeated or comma separated. A missing max_per_type
// defaults to recommend.DefaultMaxPerType; 0 asks for every product.
func parseCriteria(values func(string) []string, value func(string) (string, bool)) (recommend.Criteria, error) {
	criteria := recommend.Criteria{MaxPerType: recommend.DefaultMaxPerType}

	criteria.Brands = splitValues(values("brand"))
	for _, raw := range splitValues(values("type")) {
		t, err := catalog.ParseProductType(raw)
		if err != nil {
			return recommend.Criteria{}, err
		}
		criteria.Types = append(criteria.Types, t)
	}

	if raw, ok := value("max_per_type"); ok && strings.TrimSpace(raw) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 || n > maxPerTypeLimit {
			return recommend.Criteria{}, fmt.Errorf("max_per_type must be an integer between 0 and %d", maxPerTypeLimit)
		}
		criteria.MaxPerType = n
	}
	return criteria, nil
}

func splitValues(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
