package gateway

import (
	"context"

	"content-search/domain"
	"content-search/driver"
)

// ContentDriver is the raw database access the gateway adapts.
type ContentDriver interface {
	CountPosts(ctx context.Context) (int64, error)
	PostsAfter(ctx context.Context, cursor int64, pageSize int) ([]*driver.PostRow, int64, error)
	PostByID(ctx context.Context, id int64) (*driver.PostRow, error)
	AuthorLogin(ctx context.Context, id int64) (string, error)
	Taxonomy(ctx context.Context, name string) (*driver.TaxonomyRow, error)
	TermByID(ctx context.Context, taxonomy string, id int64) (*driver.TermRow, error)
	TermBySlug(ctx context.Context, taxonomy, slug string) (*driver.TermRow, error)
	PostType(ctx context.Context, name string) (*driver.PostTypeRow, error)
	SearchablePostTypes(ctx context.Context) ([]string, error)
}

// ContentGateway adapts database rows to domain entities and wraps failures
// in *domain.RepositoryError. Missing entities stay (nil, nil).
type ContentGateway struct {
	driver ContentDriver
}

func NewContentGateway(d ContentDriver) *ContentGateway {
	return &ContentGateway{driver: d}
}

func (g *ContentGateway) CountPosts(ctx context.Context) (int64, error) {
	count, err := g.driver.CountPosts(ctx)
	if err != nil {
		return 0, &domain.RepositoryError{Op: "CountPosts", Err: err}
	}
	return count, nil
}

func (g *ContentGateway) PostsAfter(ctx context.Context, cursor int64, pageSize int) ([]*domain.Post, int64, error) {
	rows, next, err := g.driver.PostsAfter(ctx, cursor, pageSize)
	if err != nil {
		return nil, cursor, &domain.RepositoryError{Op: "PostsAfter", Err: err}
	}

	posts := make([]*domain.Post, len(rows))
	for i, row := range rows {
		posts[i] = convertPost(row)
	}
	return posts, next, nil
}

func (g *ContentGateway) PostByID(ctx context.Context, id int64) (*domain.Post, error) {
	row, err := g.driver.PostByID(ctx, id)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "PostByID", Err: err}
	}
	if row == nil {
		return nil, nil
	}
	return convertPost(row), nil
}

func convertPost(row *driver.PostRow) *domain.Post {
	post := &domain.Post{
		ID:          row.ID,
		Type:        row.Type,
		Title:       row.Title,
		Content:     row.Content,
		Excerpt:     row.Excerpt,
		AuthorID:    row.AuthorID,
		AuthorLogin: row.AuthorLogin,
		AuthorName:  row.AuthorName,
		Date:        row.Date,
		DateGMT:     row.DateGMT,
	}
	for i := range row.TermIDs {
		post.Terms = append(post.Terms, domain.Term{
			ID:       row.TermIDs[i],
			Taxonomy: row.TermTaxonomies[i],
			Slug:     row.TermSlugs[i],
			Name:     row.TermNames[i],
		})
	}
	return post
}

func (g *ContentGateway) AuthorLogin(ctx context.Context, id int64) (string, error) {
	login, err := g.driver.AuthorLogin(ctx, id)
	if err != nil {
		return "", &domain.RepositoryError{Op: "AuthorLogin", Err: err}
	}
	return login, nil
}

func (g *ContentGateway) Taxonomy(ctx context.Context, name string) (*domain.Taxonomy, error) {
	row, err := g.driver.Taxonomy(ctx, name)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "Taxonomy", Err: err}
	}
	if row == nil {
		return nil, nil
	}
	return &domain.Taxonomy{
		Name:          row.Name,
		QueryVar:      row.QueryVar,
		SingularLabel: row.SingularLabel,
	}, nil
}

func (g *ContentGateway) TermByID(ctx context.Context, taxonomy string, id int64) (*domain.Term, error) {
	row, err := g.driver.TermByID(ctx, taxonomy, id)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "TermByID", Err: err}
	}
	return convertTerm(row), nil
}

func (g *ContentGateway) TermBySlug(ctx context.Context, taxonomy, slug string) (*domain.Term, error) {
	row, err := g.driver.TermBySlug(ctx, taxonomy, slug)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "TermBySlug", Err: err}
	}
	return convertTerm(row), nil
}

func convertTerm(row *driver.TermRow) *domain.Term {
	if row == nil {
		return nil
	}
	return &domain.Term{
		ID:       row.ID,
		Taxonomy: row.Taxonomy,
		Slug:     row.Slug,
		Name:     row.Name,
	}
}

func (g *ContentGateway) PostType(ctx context.Context, name string) (*domain.PostType, error) {
	row, err := g.driver.PostType(ctx, name)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "PostType", Err: err}
	}
	if row == nil {
		return nil, nil
	}
	return &domain.PostType{
		Name:              row.Name,
		SingularLabel:     row.SingularLabel,
		ExcludeFromSearch: row.ExcludeFromSearch,
	}, nil
}

func (g *ContentGateway) SearchablePostTypes(ctx context.Context) ([]string, error) {
	names, err := g.driver.SearchablePostTypes(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "SearchablePostTypes", Err: err}
	}
	return names, nil
}
