package media

// MergeGenres combines genre lists from the movie and TV catalogs into
// one list deduplicated by id. First occurrence fixes a genre's position;
// a later list's name wins on id collision.
func MergeGenres(lists ...[]Genre) []Genre {
	merged := make([]Genre, 0)
	index := make(map[int]int) // id -> position in merged

	for _, list := range lists {
		for _, g := range list {
			if pos, seen := index[g.ID]; seen {
				merged[pos].Name = g.Name
				continue
			}
			index[g.ID] = len(merged)
			merged = append(merged, g)
		}
	}

	return merged
}
