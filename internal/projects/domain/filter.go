package domain

import (
	"sort"
	"strings"
)

// AllGenres disables the genre criterion.
const AllGenres = "All"

// Filter keeps the projects matching genre (AllGenres or exact) and whose title or owner name
// contains query, case-insensitively. It never modifies projects.
func Filter(projects []Project, genre, query string) []Project {
	q := strings.ToLower(query)
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if genre != AllGenres && genre != "" && p.Genre != genre {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.OwnerName), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortNewestFirst orders by CreatedAt descending, keeping store order among equal timestamps.
func SortNewestFirst(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt > projects[j].CreatedAt
	})
}

// TotalLikes sums the like counters of projects.
func TotalLikes(projects []Project) int64 {
	var n int64
	for _, p := range projects {
		n += p.Likes
	}
	return n
}
