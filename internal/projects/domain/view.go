package domain

import "fmt"

// View selects which projects a feed subscription covers.
type View string

const (
	// ViewFeed covers every public project.
	ViewFeed View = "feed"
	// ViewProfile covers every project owned by the current user.
	ViewProfile View = "profile"
)

// ParseView accepts "my-projects" as an alias of the profile view.
func ParseView(s string) (View, error) {
	switch s {
	case "", string(ViewFeed):
		return ViewFeed, nil
	case string(ViewProfile), "my-projects":
		return ViewProfile, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// Query is the single equality predicate a live project query filters on.
type Query struct {
	Field string
	Value string
}

func QueryFor(view View, uid string) Query {
	if view == ViewProfile {
		return Query{Field: "ownerId", Value: uid}
	}
	return Query{Field: "visibility", Value: string(VisibilityPublic)}
}

// Matches evaluates q against p the way the document store does.
func (q Query) Matches(p *Project) bool {
	switch q.Field {
	case "ownerId":
		return p.OwnerID == q.Value
	case "visibility":
		return string(p.Visibility) == q.Value
	}
	return false
}
