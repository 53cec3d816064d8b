package ingest

import "sort"

// MergeIndicators unions indicator sets per type, deduplicated and sorted.
func MergeIndicators(sets []map[string][]string) map[string][]string {
	merged := map[string]map[string]struct{}{}
	for _, set := range sets {
		for typ, vals := range set {
			bucket, ok := merged[typ]
			if !ok {
				bucket = map[string]struct{}{}
				merged[typ] = bucket
			}
			for _, v := range vals {
				bucket[v] = struct{}{}
			}
		}
	}
	out := make(map[string][]string, len(merged))
	for typ, bucket := range merged {
		vals := make([]string, 0, len(bucket))
		for v := range bucket {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[typ] = vals
	}
	return out
}

// TopValues caps each indicator list at n entries.
func TopValues(indicators map[string][]string, n int) map[string][]string {
	out := make(map[string][]string, len(indicators))
	for typ, vals := range indicators {
		if len(vals) > n {
			vals = vals[:n]
		}
		out[typ] = vals
	}
	return out
}
