package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shanehull/aipsscraper/internal/types"
)

func countDistinct(records []types.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Identifier] = struct{}{}
	}
	return len(seen)
}

func retain(records []types.Record, keep func(types.Record) bool) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterSince keeps records dated on or after since (YYYY-MM-DD). Records
// without a date sort before every cutoff and are dropped.
func FilterSince(records []types.Record, since string) []types.Record {
	return retain(records, func(r types.Record) bool {
		return r.Date >= since
	})
}

func FilterDate(records []types.Record, date string) []types.Record {
	return retain(records, func(r types.Record) bool {
		return r.Date == date
	})
}

// NormalizedIdentifiers returns the distinct numeric identifiers as sorted
// five digit zero padded strings. Non numeric identifiers are skipped.
func NormalizedIdentifiers(records []types.Record) []string {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		n, err := strconv.ParseUint(r.Identifier, 10, 32)
		if err != nil {
			continue
		}
		set[fmt.Sprintf("%05d", n)] = struct{}{}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilterLarger keeps the first record of every identifier whose numeric
// value exceeds threshold, in the order given. It also returns the number of
// qualifying identifiers.
func FilterLarger(records []types.Record, threshold uint32) ([]types.Record, int) {
	qualifying := make(map[string]struct{})
	for _, r := range records {
		n, err := strconv.ParseUint(r.Identifier, 10, 32)
		if err != nil {
			continue
		}
		if n > uint64(threshold) {
			qualifying[r.Identifier] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(qualifying))
	out := retain(records, func(r types.Record) bool {
		if _, ok := qualifying[r.Identifier]; !ok {
			return false
		}
		if _, ok := seen[r.Identifier]; ok {
			return false
		}
		seen[r.Identifier] = struct{}{}
		return true
	})
	return out, len(qualifying)
}

// SortByDateDesc sorts in place, newest first. Equal dates keep their order.
func SortByDateDesc(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}
