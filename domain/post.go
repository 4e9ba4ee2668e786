package domain

import (
	"errors"
	"time"
)

// Term is one taxonomy term attached to a post.
type Term struct {
	ID       int64
	Taxonomy string
	Slug     string
	Name     string
}

// Taxonomy describes a registered taxonomy: the query variable it is
// addressed by in navigation URLs and its human-readable singular label.
type Taxonomy struct {
	Name          string
	QueryVar      string
	SingularLabel string
}

// PostType describes a registered content type.
type PostType struct {
	Name              string
	SingularLabel     string
	ExcludeFromSearch bool
}

// Post is one content entry of the corpus, denormalized with its author and
// taxonomy terms the way the index stores it.
type Post struct {
	ID          int64
	Type        string
	Title       string
	Content     string
	Excerpt     string
	AuthorID    int64
	AuthorLogin string
	AuthorName  string
	Date        time.Time
	DateGMT     time.Time
	Terms       []Term
}

// NewPost validates the fields every index document needs.
func NewPost(id int64, postType, title string) (*Post, error) {
	if id <= 0 {
		return nil, errors.New("post ID must be positive")
	}
	if postType == "" {
		return nil, errors.New("post type cannot be empty")
	}
	return &Post{ID: id, Type: postType, Title: title}, nil
}
