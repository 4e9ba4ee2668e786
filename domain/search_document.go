package domain

// IndexDateFormat is the datetime layout stored in the index's date fields.
const IndexDateFormat = "2006-01-02 15:04:05"

// TermDocument is a taxonomy term as embedded in an index document. Filters
// target the slug sub-field, terms aggregations the term_id sub-field.
type TermDocument struct {
	TermID int64  `json:"term_id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
}

// SearchDocument is the denormalized index representation of a post. The
// document ID is the stable post ID, which makes every upsert idempotent.
type SearchDocument struct {
	PostID      int64                     `json:"post_id"`
	PostType    string                    `json:"post_type"`
	Title       string                    `json:"title"`
	Content     string                    `json:"content"`
	Excerpt     string                    `json:"excerpt"`
	AuthorID    int64                     `json:"author_id"`
	AuthorLogin string                    `json:"author_login"`
	AuthorName  string                    `json:"author_name"`
	Author      string                    `json:"author"`
	Date        string                    `json:"date"`
	DateGMT     string                    `json:"date_gmt"`
	Tags        []TermDocument            `json:"tag,omitempty"`
	Categories  []TermDocument            `json:"category,omitempty"`
	Taxonomy    map[string][]TermDocument `json:"taxonomy,omitempty"`
}

// NewSearchDocument builds the index document for a post. Tags and
// categories get their own top-level fields; every other taxonomy nests
// under the taxonomy map, mirroring the filter field layout.
func NewSearchDocument(p *Post) SearchDocument {
	doc := SearchDocument{
		PostID:      p.ID,
		PostType:    p.Type,
		Title:       p.Title,
		Content:     p.Content,
		Excerpt:     p.Excerpt,
		AuthorID:    p.AuthorID,
		AuthorLogin: p.AuthorLogin,
		AuthorName:  p.AuthorName,
		Author:      p.AuthorName,
		Date:        p.Date.Format(IndexDateFormat),
		DateGMT:     p.DateGMT.Format(IndexDateFormat),
	}

	for _, t := range p.Terms {
		td := TermDocument{TermID: t.ID, Slug: t.Slug, Name: t.Name}
		switch t.Taxonomy {
		case "post_tag":
			doc.Tags = append(doc.Tags, td)
		case "category":
			doc.Categories = append(doc.Categories, td)
		default:
			if doc.Taxonomy == nil {
				doc.Taxonomy = make(map[string][]TermDocument)
			}
			doc.Taxonomy[t.Taxonomy] = append(doc.Taxonomy[t.Taxonomy], td)
		}
	}

	return doc
}
