package port

import (
	"context"

	"content-search/domain"
)

// ContentRepository is the boundary to the host CMS's content store.
// Failures surface as *domain.RepositoryError. Lookup methods return
// (nil, nil) for entities that simply do not exist.
type ContentRepository interface {
	// CountPosts returns the size of the indexable corpus.
	CountPosts(ctx context.Context) (int64, error)
	// PostsAfter returns the next page of posts ordered by ID, strictly
	// after cursor, plus the cursor for the following page. An empty page
	// marks end of corpus.
	PostsAfter(ctx context.Context, cursor int64, pageSize int) ([]*domain.Post, int64, error)
	PostByID(ctx context.Context, id int64) (*domain.Post, error)

	// AuthorLogin resolves an author ID to the stable key the index stores.
	AuthorLogin(ctx context.Context, id int64) (string, error)

	Taxonomy(ctx context.Context, name string) (*domain.Taxonomy, error)
	TermByID(ctx context.Context, taxonomy string, id int64) (*domain.Term, error)
	TermBySlug(ctx context.Context, taxonomy, slug string) (*domain.Term, error)

	PostType(ctx context.Context, name string) (*domain.PostType, error)
	// SearchablePostTypes lists every type not excluded from search.
	SearchablePostTypes(ctx context.Context) ([]string, error)
}
