package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-search/domain"
)

func TestSyncPost_IndexKnownPost(t *testing.T) {
	index := &fakeIndexClient{}
	repo := &fakeContentRepo{posts: []*domain.Post{{ID: 7, Type: "post", Title: "hello"}}}
	u := NewSyncPostUsecase(repo, index, nil)

	require.NoError(t, u.IndexPost(context.Background(), 7))

	require.Len(t, index.upserted, 1)
	require.Len(t, index.upserted[0], 1)
	assert.Equal(t, int64(7), index.upserted[0][0].PostID)
	assert.Empty(t, index.deleted)
}

func TestSyncPost_MissingPostIsDeleted(t *testing.T) {
	index := &fakeIndexClient{}
	repo := &fakeContentRepo{}
	u := NewSyncPostUsecase(repo, index, nil)

	require.NoError(t, u.IndexPost(context.Background(), 99))

	assert.Empty(t, index.upserted)
	require.Len(t, index.deleted, 1)
	assert.Equal(t, []int64{99}, index.deleted[0])
}

func TestSyncPost_Delete(t *testing.T) {
	index := &fakeIndexClient{}
	u := NewSyncPostUsecase(&fakeContentRepo{}, index, nil)

	require.NoError(t, u.DeletePost(context.Background(), 5))

	require.Len(t, index.deleted, 1)
	assert.Equal(t, []int64{5}, index.deleted[0])
}
