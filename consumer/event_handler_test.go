package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-search/domain"
	"content-search/esquery"
	"content-search/usecase"
)

type recordingIndex struct {
	upserted [][]domain.SearchDocument
	deleted  [][]int64
}

func (r *recordingIndex) Query(context.Context, *esquery.Document) (*esquery.Response, error) {
	return &esquery.Response{}, nil
}

func (r *recordingIndex) BulkUpsert(_ context.Context, docs []domain.SearchDocument) error {
	r.upserted = append(r.upserted, docs)
	return nil
}

func (r *recordingIndex) Delete(_ context.Context, ids []int64) error {
	r.deleted = append(r.deleted, ids)
	return nil
}

func (r *recordingIndex) DeleteAll(context.Context) error { return nil }

type stubContentRepo struct {
	posts map[int64]*domain.Post
}

func (s *stubContentRepo) CountPosts(context.Context) (int64, error) { return 0, nil }

func (s *stubContentRepo) PostsAfter(context.Context, int64, int) ([]*domain.Post, int64, error) {
	return nil, 0, nil
}

func (s *stubContentRepo) PostByID(_ context.Context, id int64) (*domain.Post, error) {
	return s.posts[id], nil
}

func (s *stubContentRepo) AuthorLogin(context.Context, int64) (string, error) { return "", nil }

func (s *stubContentRepo) Taxonomy(context.Context, string) (*domain.Taxonomy, error) {
	return nil, nil
}

func (s *stubContentRepo) TermByID(context.Context, string, int64) (*domain.Term, error) {
	return nil, nil
}

func (s *stubContentRepo) TermBySlug(context.Context, string, string) (*domain.Term, error) {
	return nil, nil
}

func (s *stubContentRepo) PostType(context.Context, string) (*domain.PostType, error) {
	return nil, nil
}

func (s *stubContentRepo) SearchablePostTypes(context.Context) ([]string, error) {
	return []string{"post"}, nil
}

func newTestEventHandler(index *recordingIndex) *PostEventHandler {
	repo := &stubContentRepo{posts: map[int64]*domain.Post{
		7: {ID: 7, Type: "post", Title: "hello"},
	}}
	return NewPostEventHandler(usecase.NewSyncPostUsecase(repo, index, nil), nil)
}

func TestHandleEvent_PostSaved(t *testing.T) {
	index := &recordingIndex{}
	h := newTestEventHandler(index)

	err := h.HandleEvent(context.Background(), Event{
		EventID:   "evt-1",
		EventType: EventPostSaved,
		Payload:   json.RawMessage(`{"post_id":7}`),
	})
	require.NoError(t, err)

	require.Len(t, index.upserted, 1)
	assert.Equal(t, int64(7), index.upserted[0][0].PostID)
	assert.Empty(t, index.deleted)
}

func TestHandleEvent_SavedButUnindexableIsDeleted(t *testing.T) {
	index := &recordingIndex{}
	h := newTestEventHandler(index)

	err := h.HandleEvent(context.Background(), Event{
		EventID:   "evt-2",
		EventType: EventPostSaved,
		Payload:   json.RawMessage(`{"post_id":99}`),
	})
	require.NoError(t, err)

	assert.Empty(t, index.upserted)
	require.Len(t, index.deleted, 1)
	assert.Equal(t, []int64{99}, index.deleted[0])
}

func TestHandleEvent_PostDeleted(t *testing.T) {
	index := &recordingIndex{}
	h := newTestEventHandler(index)

	err := h.HandleEvent(context.Background(), Event{
		EventID:   "evt-3",
		EventType: EventPostDeleted,
		Payload:   json.RawMessage(`{"post_id":7}`),
	})
	require.NoError(t, err)

	require.Len(t, index.deleted, 1)
	assert.Equal(t, []int64{7}, index.deleted[0])
}

func TestHandleEvent_UnknownTypeIsSkipped(t *testing.T) {
	index := &recordingIndex{}
	h := newTestEventHandler(index)

	err := h.HandleEvent(context.Background(), Event{
		EventID:   "evt-4",
		EventType: "comment_saved",
		Payload:   json.RawMessage(`{"post_id":7}`),
	})
	require.NoError(t, err)
	assert.Empty(t, index.upserted)
	assert.Empty(t, index.deleted)
}

func TestHandleEvent_BadPayloadFails(t *testing.T) {
	h := newTestEventHandler(&recordingIndex{})

	err := h.HandleEvent(context.Background(), Event{
		EventID:   "evt-5",
		EventType: EventPostSaved,
		Payload:   json.RawMessage(`not json`),
	})
	assert.Error(t, err, "bad payloads must stay pending for retry")
}

func TestHandleEvent_MissingPostIDIsSkipped(t *testing.T) {
	index := &recordingIndex{}
	h := newTestEventHandler(index)

	err := h.HandleEvent(context.Background(), Event{
		EventID:   "evt-6",
		EventType: EventPostDeleted,
		Payload:   json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	assert.Empty(t, index.deleted)
}
