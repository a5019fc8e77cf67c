package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"chapamarket/backend/internal/models"
	"chapamarket/backend/internal/utils"
)

func setupTestDBStory(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "stories")
}

func createTestStory(t *testing.T, svc IStoryService, title string) *models.Story {
	t.Helper()
	st, err := svc.Create(context.Background(), adminSession(), title, "Body text", "Mwandishi", "")
	require.NoError(t, err)
	return st
}

func TestStoryService_CreateStartsAsDraft(t *testing.T) {
	db := setupTestDBStory(t, "chapamarket_test_story_create")
	svc := NewStoryService(db, utils.TestConfig())

	st := createTestStory(t, svc, "Market day in Dodoma")
	assert.Equal(t, models.StoryStatusDraft, st.Status)
	assert.False(t, st.Featured)
	assert.Equal(t, "admin-1", st.AuthorID)
}

func TestStoryService_PublishedFeedExcludesDrafts(t *testing.T) {
	db := setupTestDBStory(t, "chapamarket_test_story_feed")
	svc := NewStoryService(db, utils.TestConfig())
	ctx := context.Background()

	draft := createTestStory(t, svc, "Draft story")
	published := createTestStory(t, svc, "Published story")
	require.NoError(t, svc.Publish(ctx, adminSession(), published.ID))

	feed, err := svc.FindPublished(ctx, 20)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, published.ID, feed[0].ID)

	// Admin view still sees everything.
	all, err := svc.FindRecent(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_ = draft
}

func TestStoryService_FeaturedStoriesSortFirst(t *testing.T) {
	db := setupTestDBStory(t, "chapamarket_test_story_featured")
	svc := NewStoryService(db, utils.TestConfig())
	ctx := context.Background()

	older := createTestStory(t, svc, "Older featured")
	newer := createTestStory(t, svc, "Newer plain")
	require.NoError(t, svc.Publish(ctx, adminSession(), older.ID))
	require.NoError(t, svc.Publish(ctx, adminSession(), newer.ID))
	require.NoError(t, svc.ToggleFeatured(ctx, adminSession(), older.ID))

	feed, err := svc.FindPublished(ctx, 20)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, older.ID, feed[0].ID)
}

func TestStoryService_UpdateRestrictsFields(t *testing.T) {
	db := setupTestDBStory(t, "chapamarket_test_story_update")
	svc := NewStoryService(db, utils.TestConfig())
	ctx := context.Background()

	st := createTestStory(t, svc, "Before")

	updated, err := svc.Update(ctx, adminSession(), st.ID, map[string]interface{}{"title": "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)

	_, err = svc.Update(ctx, adminSession(), st.ID, map[string]interface{}{"featured": true})
	assert.Error(t, err)

	_, err = svc.Update(ctx, adminSession(), st.ID, map[string]interface{}{})
	assert.Error(t, err)
}

func TestStoryService_DeleteMissingIsNoop(t *testing.T) {
	db := setupTestDBStory(t, "chapamarket_test_story_delete")
	svc := NewStoryService(db, utils.TestConfig())
	ctx := context.Background()

	st := createTestStory(t, svc, "Short lived")
	require.NoError(t, svc.Delete(ctx, adminSession(), st.ID))

	_, err := svc.FindByID(ctx, st.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	assert.NoError(t, svc.Delete(ctx, adminSession(), st.ID))
}
