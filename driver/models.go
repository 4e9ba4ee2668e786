package driver

import "time"

// PostRow is a post as read from the content database, terms flattened
// into parallel arrays the way the aggregate query returns them.
type PostRow struct {
	ID             int64
	Type           string
	Title          string
	Content        string
	Excerpt        string
	AuthorID       int64
	AuthorLogin    string
	AuthorName     string
	Date           time.Time
	DateGMT        time.Time
	TermIDs        []int64
	TermTaxonomies []string
	TermSlugs      []string
	TermNames      []string
}

// TermRow is one taxonomy term row.
type TermRow struct {
	ID       int64
	Taxonomy string
	Slug     string
	Name     string
}

// TaxonomyRow is one registered taxonomy row.
type TaxonomyRow struct {
	Name          string
	QueryVar      string
	SingularLabel string
}

// PostTypeRow is one registered post type row.
type PostTypeRow struct {
	Name              string
	SingularLabel     string
	ExcludeFromSearch bool
}

// SyncStateRecord is the persisted sync state as stored in Redis.
type SyncStateRecord struct {
	Running         bool
	Processed       int64
	Total           int64
	CurrentPage     int64
	Cursor          int64
	CancelRequested bool
	Wiped           bool
	RunID           string
	LastStatus      string
	LastError       string
	StartedAt       time.Time
	UpdatedAt       time.Time
}
