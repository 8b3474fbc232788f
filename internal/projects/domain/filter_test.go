package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProjects() []Project {
	return []Project{
		{ID: "1", Title: "Demo Velocity", Genre: "Action", OwnerName: "Ana", CreatedAt: 30},
		{ID: "2", Title: "Slow pan", Genre: "Cinematic", OwnerName: "demo_user", CreatedAt: 20},
		{ID: "3", Title: "Anime edit", Genre: "Anime", OwnerName: "Bo", CreatedAt: 10},
		{ID: "4", Title: "Action DEMO", Genre: "Action", OwnerName: "Cy", CreatedAt: 40},
	}
}

func ids(ps []Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	ps := sampleProjects()

	tests := []struct {
		name  string
		genre string
		query string
		want  []string
	}{
		{"all genres empty query", AllGenres, "", []string{"1", "2", "3", "4"}},
		{"exact genre", "Action", "", []string{"1", "4"}},
		{"genre is case sensitive", "action", "", []string{}},
		{"query matches title case-insensitively", AllGenres, "demo", []string{"1", "2", "4"}},
		{"query matches owner name", AllGenres, "bo", []string{"3"}},
		{"both criteria", "Action", "demo", []string{"1", "4"}},
		{"no match", "Sports", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(ps, tt.genre, tt.query)))
		})
	}
}

func TestFilter_IsIntersectionOfCriteria(t *testing.T) {
	ps := sampleProjects()
	for _, genre := range []string{AllGenres, "Action", "Anime", "Cinematic"} {
		for _, q := range []string{"", "demo", "a", "zzz"} {
			both := ids(Filter(ps, genre, q))
			byGenre := ids(Filter(ps, genre, ""))
			byQuery := ids(Filter(ps, AllGenres, q))

			var inter []string
			for _, id := range byGenre {
				for _, other := range byQuery {
					if id == other {
						inter = append(inter, id)
					}
				}
			}
			if inter == nil {
				inter = []string{}
			}
			assert.Equal(t, inter, both, "genre=%s q=%s", genre, q)
			assert.Equal(t, both, ids(Filter(Filter(ps, AllGenres, q), genre, "")), "order of criteria")
		}
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	ps := sampleProjects()
	_ = Filter(ps, "Anime", "x")
	assert.Equal(t, sampleProjects(), ps)
}

func TestSortNewestFirst(t *testing.T) {
	ps := []Project{
		{ID: "t3", CreatedAt: 100},
		{ID: "t1", CreatedAt: 300},
		{ID: "t2a", CreatedAt: 200},
		{ID: "t2b", CreatedAt: 200},
	}
	SortNewestFirst(ps)
	assert.Equal(t, []string{"t1", "t2a", "t2b", "t3"}, ids(ps))
}

func TestTotalLikes(t *testing.T) {
	assert.Equal(t, int64(0), TotalLikes(nil))
	assert.Equal(t, int64(5), TotalLikes([]Project{{Likes: 2}, {Likes: 3}}))
}

func TestParseView(t *testing.T) {
	v, err := ParseView("feed")
	require.NoError(t, err)
	assert.Equal(t, ViewFeed, v)

	v, err = ParseView("my-projects")
	require.NoError(t, err)
	assert.Equal(t, ViewProfile, v)

	_, err = ParseView("explore")
	assert.ErrorIs(t, err, ErrInvalidView)
}

func TestQueryFor(t *testing.T) {
	pub := &Project{OwnerID: "u1", Visibility: VisibilityPublic}
	priv := &Project{OwnerID: "u1", Visibility: VisibilityPrivate}
	other := &Project{OwnerID: "u2", Visibility: VisibilityPublic}

	feed := QueryFor(ViewFeed, "u1")
	assert.True(t, feed.Matches(pub))
	assert.False(t, feed.Matches(priv))
	assert.True(t, feed.Matches(other))

	profile := QueryFor(ViewProfile, "u1")
	assert.True(t, profile.Matches(pub))
	assert.True(t, profile.Matches(priv))
	assert.False(t, profile.Matches(other))
}
