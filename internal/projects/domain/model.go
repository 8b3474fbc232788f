package domain

import (
	"regexp"
	"slices"
	"strings"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Project is a shared project file with an optional preview video, stored in projects/{id}.
// Likes is meant to equal len(LikedBy), but the two are written independently and may drift.
type Project struct {
	ID          string     `json:"id" firestore:"-"`
	Title       string     `json:"title" firestore:"title" validate:"required"`
	Description string     `json:"description" firestore:"description"`
	Genre       string     `json:"genre" firestore:"genre"`
	AspectRatio string     `json:"aspectRatio,omitempty" firestore:"aspectRatio,omitempty" validate:"omitempty,oneof=9:16 16:9 1:1 4:5"`
	XMLContent  string     `json:"xmlContent,omitempty" firestore:"xmlContent,omitempty"`
	FileURL     string     `json:"fileUrl,omitempty" firestore:"fileUrl,omitempty" validate:"omitempty,url"`
	FileName    string     `json:"fileName,omitempty" firestore:"fileName,omitempty"`
	VideoURL    string     `json:"videoUrl" firestore:"videoUrl" validate:"omitempty,url"`
	Visibility  Visibility `json:"visibility" firestore:"visibility" validate:"required,oneof=public private"`
	OwnerID     string     `json:"ownerId" firestore:"ownerId" validate:"required"`
	OwnerName   string     `json:"ownerName" firestore:"ownerName"`
	OwnerPhoto  string     `json:"ownerPhoto,omitempty" firestore:"ownerPhoto,omitempty"`
	CreatedAt   int64      `json:"createdAt" firestore:"createdAt" validate:"gte=0"`
	Likes       int64      `json:"likes" firestore:"likes"`
	LikedBy     []string   `json:"likedBy" firestore:"likedBy"`
}

func (p *Project) IsOwner(uid string) bool {
	return uid != "" && p.OwnerID == uid
}

// CanDownload reports whether uid may fetch the project file.
func (p *Project) CanDownload(uid string) bool {
	return p.Visibility == VisibilityPublic || p.IsOwner(uid)
}

func (p *Project) LikedByUser(uid string) bool {
	return slices.Contains(p.LikedBy, uid)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DownloadFileName is the attachment name for the legacy inline XML content.
func (p *Project) DownloadFileName() string {
	return whitespaceRun.ReplaceAllString(p.Title, "_") + ".xml"
}

// Update is a partial edit of a project. Nil fields are left untouched.
type Update struct {
	Title       *string
	Description *string
	Genre       *string
	AspectRatio *string
	Visibility  *Visibility
	XMLContent  *string
	FileURL     *string
	FileName    *string
	VideoURL    *string
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Genre == nil && u.AspectRatio == nil &&
		u.Visibility == nil && u.XMLContent == nil && u.FileURL == nil && u.FileName == nil &&
		u.VideoURL == nil
}

// Apply writes the set fields of u onto p.
func (u Update) Apply(p *Project) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Genre != nil {
		p.Genre = *u.Genre
	}
	if u.AspectRatio != nil {
		p.AspectRatio = *u.AspectRatio
	}
	if u.Visibility != nil {
		p.Visibility = *u.Visibility
	}
	if u.XMLContent != nil {
		p.XMLContent = *u.XMLContent
	}
	if u.FileURL != nil {
		p.FileURL = *u.FileURL
	}
	if u.FileName != nil {
		p.FileName = *u.FileName
	}
	if u.VideoURL != nil {
		p.VideoURL = *u.VideoURL
	}
}

func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case VisibilityPublic:
		return VisibilityPublic, true
	case VisibilityPrivate:
		return VisibilityPrivate, true
	}
	return "", false
}
