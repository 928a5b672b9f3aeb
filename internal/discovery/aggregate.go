package discovery

import "sort"

const defaultPerCreatorLimit = 3

// Aggregate groups scored items by owner in order of first appearance and keeps
// the perCreatorLimit best items of each group, best first.
func Aggregate(scored []ScoredMediaItem, perCreatorLimit int) []CreatorAggregate {
	if perCreatorLimit <= 0 {
		perCreatorLimit = defaultPerCreatorLimit
	}
	index := make(map[string]int)
	var out []CreatorAggregate
	for _, it := range scored {
		key := it.Owner.Key()
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, CreatorAggregate{ID: key, Owner: it.Owner})
		}
		out[i].Items = append(out[i].Items, it)
	}
	for i := range out {
		items := out[i].Items
		sort.SliceStable(items, func(a, b int) bool { return items[a].RelevanceScore > items[b].RelevanceScore })
		if len(items) > perCreatorLimit {
			items = items[:perCreatorLimit:perCreatorLimit]
		}
		out[i].Items = items
	}
	return out
}
