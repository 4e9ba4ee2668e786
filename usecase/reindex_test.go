package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-search/domain"
	"content-search/esquery"
)

type fakeIndexClient struct {
	queryResp   *esquery.Response
	queryErr    error
	upsertErr   error
	wipeErr     error
	wipes       int
	upserted    [][]domain.SearchDocument
	deleted     [][]int64
	queriedDocs []*esquery.Document
}

func (f *fakeIndexClient) Query(_ context.Context, doc *esquery.Document) (*esquery.Response, error) {
	f.queriedDocs = append(f.queriedDocs, doc)
	return f.queryResp, f.queryErr
}

func (f *fakeIndexClient) BulkUpsert(_ context.Context, docs []domain.SearchDocument) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, docs)
	return nil
}

func (f *fakeIndexClient) Delete(_ context.Context, ids []int64) error {
	f.deleted = append(f.deleted, ids)
	return nil
}

func (f *fakeIndexClient) DeleteAll(_ context.Context) error {
	if f.wipeErr != nil {
		return f.wipeErr
	}
	f.wipes++
	return nil
}

type fakeContentRepo struct {
	posts       []*domain.Post
	types       []string
	authors     map[int64]string
	taxonomies  map[string]*domain.Taxonomy
	termsByID   map[int64]*domain.Term
	termsBySlug map[string]*domain.Term
	postTypes   map[string]*domain.PostType
	countErr    error
	pageErr     error
}

func (f *fakeContentRepo) CountPosts(context.Context) (int64, error) {
	return int64(len(f.posts)), f.countErr
}

func (f *fakeContentRepo) PostsAfter(_ context.Context, cursor int64, pageSize int) ([]*domain.Post, int64, error) {
	if f.pageErr != nil {
		return nil, cursor, f.pageErr
	}
	var page []*domain.Post
	next := cursor
	for _, p := range f.posts {
		if p.ID > cursor {
			page = append(page, p)
			next = p.ID
			if len(page) == pageSize {
				break
			}
		}
	}
	return page, next, nil
}

func (f *fakeContentRepo) PostByID(_ context.Context, id int64) (*domain.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeContentRepo) AuthorLogin(_ context.Context, id int64) (string, error) {
	return f.authors[id], nil
}

func (f *fakeContentRepo) Taxonomy(_ context.Context, name string) (*domain.Taxonomy, error) {
	return f.taxonomies[name], nil
}

func (f *fakeContentRepo) TermByID(_ context.Context, _ string, id int64) (*domain.Term, error) {
	return f.termsByID[id], nil
}

func (f *fakeContentRepo) TermBySlug(_ context.Context, _ string, slug string) (*domain.Term, error) {
	return f.termsBySlug[slug], nil
}

func (f *fakeContentRepo) PostType(_ context.Context, name string) (*domain.PostType, error) {
	return f.postTypes[name], nil
}

func (f *fakeContentRepo) SearchablePostTypes(context.Context) ([]string, error) {
	return f.types, nil
}

// fakeStateStore mimics the atomic transition semantics of the Redis store.
type fakeStateStore struct {
	state domain.SyncState
}

func (f *fakeStateStore) Load(context.Context) (*domain.SyncState, error) {
	st := f.state
	return &st, nil
}

func (f *fakeStateStore) TryStart(_ context.Context, total int64, runID string) (*domain.SyncState, error) {
	if f.state.Running {
		return nil, domain.ErrAlreadyRunning
	}
	f.state = domain.SyncState{
		Running:    true,
		Total:      total,
		RunID:      runID,
		LastStatus: domain.SyncRunning,
		StartedAt:  time.Now().UTC(),
	}
	st := f.state
	return &st, nil
}

func (f *fakeStateStore) RequestCancel(context.Context) error {
	if !f.state.Running {
		return domain.ErrNotRunning
	}
	f.state.CancelRequested = true
	return nil
}

func (f *fakeStateStore) Checkpoint(_ context.Context, st *domain.SyncState) error {
	f.state = *st
	return nil
}

func makePosts(n int) []*domain.Post {
	posts := make([]*domain.Post, n)
	for i := range posts {
		posts[i] = &domain.Post{ID: int64(i + 1), Type: "post", Title: "post"}
	}
	return posts
}

func TestReindex_StartIsExclusive(t *testing.T) {
	repo := &fakeContentRepo{posts: makePosts(5)}
	store := &fakeStateStore{}
	u := NewReindexUsecase(repo, &fakeIndexClient{}, store, 10, nil)

	st, err := u.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, int64(5), st.Total)
	assert.NotEmpty(t, st.RunID)

	_, err = u.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
}

func TestReindex_RunToCompletion(t *testing.T) {
	repo := &fakeContentRepo{posts: makePosts(25)}
	index := &fakeIndexClient{}
	store := &fakeStateStore{}
	u := NewReindexUsecase(repo, index, store, 10, nil)

	_, err := u.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, u.Run(context.Background()))

	// Wipe happened exactly once, before any page.
	assert.Equal(t, 1, index.wipes)

	// 25 posts at page size 10 means three bulk submissions.
	require.Len(t, index.upserted, 3)
	assert.Len(t, index.upserted[0], 10)
	assert.Len(t, index.upserted[1], 10)
	assert.Len(t, index.upserted[2], 5)

	st := store.state
	assert.False(t, st.Running)
	assert.Equal(t, domain.SyncCompleted, st.LastStatus)
	assert.Equal(t, int64(25), st.Processed)
	assert.Equal(t, int64(3), st.CurrentPage)
	assert.Equal(t, int64(25), st.Cursor)
}

func TestReindex_CancelStopsAtPageBoundary(t *testing.T) {
	repo := &fakeContentRepo{posts: makePosts(30)}
	index := &fakeIndexClient{}
	store := &fakeStateStore{}
	u := NewReindexUsecase(repo, index, store, 10, nil)

	ctx := context.Background()
	_, err := u.Start(ctx)
	require.NoError(t, err)

	done, err := u.ProcessNextPage(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, u.Cancel(ctx))

	done, err = u.ProcessNextPage(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	st := store.state
	assert.False(t, st.Running)
	assert.Equal(t, domain.SyncCancelled, st.LastStatus)
	assert.Equal(t, int64(10), st.Processed)
	require.Len(t, index.upserted, 1)
}

func TestReindex_CancelWithoutRun(t *testing.T) {
	u := NewReindexUsecase(&fakeContentRepo{}, &fakeIndexClient{}, &fakeStateStore{}, 10, nil)
	assert.ErrorIs(t, u.Cancel(context.Background()), domain.ErrNotRunning)
}

func TestReindex_WipeFailureFailsRun(t *testing.T) {
	repo := &fakeContentRepo{posts: makePosts(5)}
	index := &fakeIndexClient{wipeErr: errors.New("backend down")}
	store := &fakeStateStore{}
	u := NewReindexUsecase(repo, index, store, 10, nil)

	ctx := context.Background()
	_, err := u.Start(ctx)
	require.NoError(t, err)

	done, err := u.ProcessNextPage(ctx)
	assert.True(t, done)
	require.Error(t, err)

	st := store.state
	assert.False(t, st.Running)
	assert.Equal(t, domain.SyncFailed, st.LastStatus)
	assert.Contains(t, st.LastError, "backend down")
	assert.Empty(t, index.upserted)
}

func TestReindex_ResumeFromCheckpoint(t *testing.T) {
	repo := &fakeContentRepo{posts: makePosts(25)}
	index := &fakeIndexClient{}
	store := &fakeStateStore{}
	u := NewReindexUsecase(repo, index, store, 10, nil)

	ctx := context.Background()
	_, err := u.Start(ctx)
	require.NoError(t, err)

	done, err := u.ProcessNextPage(ctx)
	require.NoError(t, err)
	require.False(t, done)

	// A fresh usecase over the same store picks the run up mid-flight.
	resumed := NewReindexUsecase(repo, index, store, 10, nil)
	require.NoError(t, resumed.Run(ctx))

	// The wipe is not repeated on resume.
	assert.Equal(t, 1, index.wipes)
	require.Len(t, index.upserted, 3)
	assert.Equal(t, domain.SyncCompleted, store.state.LastStatus)
	assert.Equal(t, int64(25), store.state.Processed)
}

func TestReindex_NothingRunningIsDone(t *testing.T) {
	u := NewReindexUsecase(&fakeContentRepo{}, &fakeIndexClient{}, &fakeStateStore{}, 10, nil)

	done, err := u.ProcessNextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestReindex_EmptyCorpusCompletesImmediately(t *testing.T) {
	repo := &fakeContentRepo{}
	index := &fakeIndexClient{}
	store := &fakeStateStore{}
	u := NewReindexUsecase(repo, index, store, 10, nil)

	ctx := context.Background()
	_, err := u.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, u.Run(ctx))

	assert.Equal(t, 1, index.wipes)
	assert.Empty(t, index.upserted)
	assert.Equal(t, domain.SyncCompleted, store.state.LastStatus)
}
