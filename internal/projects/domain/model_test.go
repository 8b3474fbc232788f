package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alightgram/alightgram-backend/internal/validate"
)

func TestProject_Permissions(t *testing.T) {
	p := &Project{OwnerID: "owner", Visibility: VisibilityPrivate, LikedBy: []string{"fan"}}
	assert.True(t, p.IsOwner("owner"))
	assert.False(t, p.IsOwner(""))
	assert.True(t, p.CanDownload("owner"))
	assert.False(t, p.CanDownload("fan"))
	assert.True(t, p.LikedByUser("fan"))
	assert.False(t, p.LikedByUser("owner"))

	p.Visibility = VisibilityPublic
	assert.True(t, p.CanDownload("fan"))
}

func TestProject_DownloadFileName(t *testing.T) {
	p := &Project{Title: "My  cool\tedit"}
	assert.Equal(t, "My_cool_edit.xml", p.DownloadFileName())
}

func TestProject_Validation(t *testing.T) {
	ok := &Project{Title: "Demo", Visibility: VisibilityPublic, OwnerID: "u", AspectRatio: "9:16"}
	assert.NoError(t, validate.Struct(ok))

	bad := &Project{Title: "", Visibility: "friends", OwnerID: "", AspectRatio: "3:2"}
	err := validate.Struct(bad)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "title")
		assert.Contains(t, err.Error(), "visibility")
		assert.Contains(t, err.Error(), "ownerId")
		assert.Contains(t, err.Error(), "aspectRatio")
	}
}

func TestUpdate_Apply(t *testing.T) {
	title := "New"
	vis := VisibilityPrivate
	u := Update{Title: &title, Visibility: &vis}
	assert.False(t, u.Empty())
	assert.True(t, Update{}.Empty())

	p := &Project{Title: "Old", Description: "keep", Visibility: VisibilityPublic}
	u.Apply(p)
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, "keep", p.Description)
	assert.Equal(t, VisibilityPrivate, p.Visibility)

	content, none := "<x/>", ""
	p.FileURL, p.FileName = "https://cdn.example.com/a.xml", "a.xml"
	Update{XMLContent: &content, FileURL: &none, FileName: &none}.Apply(p)
	assert.Equal(t, "<x/>", p.XMLContent)
	assert.Empty(t, p.FileURL)
	assert.Empty(t, p.FileName)
}

func TestParseVisibility(t *testing.T) {
	v, ok := ParseVisibility(" Public ")
	assert.True(t, ok)
	assert.Equal(t, VisibilityPublic, v)
	_, ok = ParseVisibility("friends")
	assert.False(t, ok)
}
