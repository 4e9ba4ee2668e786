package driver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseDriver reads the content corpus from Postgres. Pages use keyset
// pagination on the post ID so a resumed reindex continues exactly where
// its checkpoint left off.
type DatabaseDriver struct {
	pool *pgxpool.Pool
}

func NewDatabaseDriver(pool *pgxpool.Pool) *DatabaseDriver {
	return &DatabaseDriver{pool: pool}
}

const postColumns = `
	p.id, p.post_type, p.title, p.content, p.excerpt,
	p.author_id, COALESCE(u.login, ''), COALESCE(u.display_name, ''),
	p.post_date, p.post_date_gmt,
	COALESCE(array_agg(t.id ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}'),
	COALESCE(array_agg(t.taxonomy ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}'),
	COALESCE(array_agg(t.slug ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}'),
	COALESCE(array_agg(t.name ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}')`

const postGroupBy = `
	GROUP BY p.id, p.post_type, p.title, p.content, p.excerpt,
	         p.author_id, u.login, u.display_name, p.post_date, p.post_date_gmt`

// CountPosts counts the indexable corpus: published posts of searchable
// types.
func (d *DatabaseDriver) CountPosts(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM posts p
		JOIN post_types pt ON pt.name = p.post_type AND NOT pt.exclude_from_search
		WHERE p.status = 'publish'`

	var count int64
	if err := d.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, &Error{Op: "CountPosts", Err: err}
	}
	return count, nil
}

// PostsAfter returns the next page of indexable posts strictly after
// cursor, ordered by ID, plus the cursor for the following page.
func (d *DatabaseDriver) PostsAfter(ctx context.Context, cursor int64, pageSize int) ([]*PostRow, int64, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN post_types pt ON pt.name = p.post_type AND NOT pt.exclude_from_search
		LEFT JOIN users u ON u.id = p.author_id
		LEFT JOIN post_terms rel ON rel.post_id = p.id
		LEFT JOIN terms t ON t.id = rel.term_id
		WHERE p.status = 'publish' AND p.id > $1` + postGroupBy + `
		ORDER BY p.id
		LIMIT $2`

	rows, err := d.pool.Query(ctx, query, cursor, pageSize)
	if err != nil {
		return nil, cursor, &Error{Op: "PostsAfter", Err: err}
	}
	defer rows.Close()

	var posts []*PostRow
	next := cursor
	for rows.Next() {
		row, err := scanPostRow(rows)
		if err != nil {
			return nil, cursor, &Error{Op: "PostsAfter", Err: err}
		}
		posts = append(posts, row)
		next = row.ID
	}
	if err := rows.Err(); err != nil {
		return nil, cursor, &Error{Op: "PostsAfter", Err: err}
	}

	return posts, next, nil
}

// PostByID fetches one indexable post, or nil when it does not exist.
func (d *DatabaseDriver) PostByID(ctx context.Context, id int64) (*PostRow, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN post_types pt ON pt.name = p.post_type AND NOT pt.exclude_from_search
		LEFT JOIN users u ON u.id = p.author_id
		LEFT JOIN post_terms rel ON rel.post_id = p.id
		LEFT JOIN terms t ON t.id = rel.term_id
		WHERE p.status = 'publish' AND p.id = $1` + postGroupBy

	rows, err := d.pool.Query(ctx, query, id)
	if err != nil {
		return nil, &Error{Op: "PostByID", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &Error{Op: "PostByID", Err: err}
		}
		return nil, nil
	}
	row, err := scanPostRow(rows)
	if err != nil {
		return nil, &Error{Op: "PostByID", Err: err}
	}
	return row, nil
}

func scanPostRow(rows pgx.Rows) (*PostRow, error) {
	var row PostRow
	err := rows.Scan(
		&row.ID, &row.Type, &row.Title, &row.Content, &row.Excerpt,
		&row.AuthorID, &row.AuthorLogin, &row.AuthorName,
		&row.Date, &row.DateGMT,
		&row.TermIDs, &row.TermTaxonomies, &row.TermSlugs, &row.TermNames,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// AuthorLogin resolves an author ID to its login. Unknown authors resolve
// to the empty string, not an error.
func (d *DatabaseDriver) AuthorLogin(ctx context.Context, id int64) (string, error) {
	var login string
	err := d.pool.QueryRow(ctx, `SELECT login FROM users WHERE id = $1`, id).Scan(&login)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &Error{Op: "AuthorLogin", Err: err}
	}
	return login, nil
}

// Taxonomy fetches one registered taxonomy, or nil when unknown.
func (d *DatabaseDriver) Taxonomy(ctx context.Context, name string) (*TaxonomyRow, error) {
	var row TaxonomyRow
	err := d.pool.QueryRow(ctx,
		`SELECT name, query_var, singular_label FROM taxonomies WHERE name = $1`, name,
	).Scan(&row.Name, &row.QueryVar, &row.SingularLabel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "Taxonomy", Err: err}
	}
	return &row, nil
}

// TermByID fetches one term of a taxonomy, or nil when it was deleted.
func (d *DatabaseDriver) TermByID(ctx context.Context, taxonomy string, id int64) (*TermRow, error) {
	return d.term(ctx, "TermByID",
		`SELECT id, taxonomy, slug, name FROM terms WHERE taxonomy = $1 AND id = $2`,
		taxonomy, id)
}

// TermBySlug fetches one term of a taxonomy by slug, or nil.
func (d *DatabaseDriver) TermBySlug(ctx context.Context, taxonomy, slug string) (*TermRow, error) {
	return d.term(ctx, "TermBySlug",
		`SELECT id, taxonomy, slug, name FROM terms WHERE taxonomy = $1 AND slug = $2`,
		taxonomy, slug)
}

func (d *DatabaseDriver) term(ctx context.Context, op, query string, args ...any) (*TermRow, error) {
	var row TermRow
	err := d.pool.QueryRow(ctx, query, args...).Scan(&row.ID, &row.Taxonomy, &row.Slug, &row.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	return &row, nil
}

// PostType fetches one registered post type, or nil when unknown.
func (d *DatabaseDriver) PostType(ctx context.Context, name string) (*PostTypeRow, error) {
	var row PostTypeRow
	err := d.pool.QueryRow(ctx,
		`SELECT name, singular_label, exclude_from_search FROM post_types WHERE name = $1`, name,
	).Scan(&row.Name, &row.SingularLabel, &row.ExcludeFromSearch)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "PostType", Err: err}
	}
	return &row, nil
}

// SearchablePostTypes lists every type not excluded from search.
func (d *DatabaseDriver) SearchablePostTypes(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT name FROM post_types WHERE NOT exclude_from_search ORDER BY name`)
	if err != nil {
		return nil, &Error{Op: "SearchablePostTypes", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &Error{Op: "SearchablePostTypes", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "SearchablePostTypes", Err: err}
	}
	return names, nil
}
