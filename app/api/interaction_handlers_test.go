package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/quill/app/database"
)

func seedPublished(t *testing.T, server *testServer) int64 {
	t.Helper()

	_, token := server.createUser(t, "Author", "author@example.com", database.RoleEditor)
	rec := server.do(t, http.MethodPost, "/content", token, map[string]any{"title": "Post", "body": "Body", "status": "published"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[database.Content](t, rec).ID
}

func TestRecordInteraction_ViewAndLike(t *testing.T) {
	server := newTestServer(t)
	contentID := seedPublished(t, server)

	view := map[string]any{"contentId": contentID, "fingerprint": "device-1", "action": "view"}
	require.Equal(t, http.StatusOK, server.do(t, http.MethodPost, "/interactions", "", view).Code)
	rec := server.do(t, http.MethodPost, "/interactions", "", view)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[database.InteractionResult](t, rec).Counts.Views)

	like := map[string]any{"contentId": contentID, "fingerprint": "device-1", "action": "like"}
	first := decode[database.InteractionResult](t, server.do(t, http.MethodPost, "/interactions", "", like))
	second := decode[database.InteractionResult](t, server.do(t, http.MethodPost, "/interactions", "", like))
	require.NotNil(t, first.Liked)
	require.NotNil(t, second.Liked)
	assert.True(t, *first.Liked)
	assert.False(t, *second.Liked)
	assert.Equal(t, 0, second.Counts.Likes)
}

func TestRecordInteraction_BadTokenFallsBackToAnonymous(t *testing.T) {
	server := newTestServer(t)
	contentID := seedPublished(t, server)

	rec := server.do(t, http.MethodPost, "/interactions", "garbage-token", map[string]any{
		"contentId": contentID, "fingerprint": "device-1", "action": "comment", "comment": "hello",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[database.InteractionResult](t, rec)
	require.NotNil(t, result.Comment)
	assert.Equal(t, "Anonymous", result.Comment.AuthorName)
}

func TestRecordInteraction_EmptyCommentRejected(t *testing.T) {
	server := newTestServer(t)
	contentID := seedPublished(t, server)

	rec := server.do(t, http.MethodPost, "/interactions", "", map[string]any{
		"contentId": contentID, "fingerprint": "device-1", "action": "comment", "comment": "",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "comment", decode[map[string]string](t, rec)["field"])

	rec = server.do(t, http.MethodGet, "/interactions/"+strconv.FormatInt(contentID, 10), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[database.InteractionSummary](t, rec).InteractionCounts.Comments)
}

func TestGetInteractions_LikedByCaller(t *testing.T) {
	server := newTestServer(t)
	contentID := seedPublished(t, server)
	_, token := server.createUser(t, "Reader", "reader@example.com", database.RoleUser)
	path := "/interactions/" + strconv.FormatInt(contentID, 10)

	like := map[string]any{"contentId": contentID, "fingerprint": "device-1", "action": "like"}
	require.Equal(t, http.StatusOK, server.do(t, http.MethodPost, "/interactions", token, like).Code)

	authed := decode[map[string]any](t, server.do(t, http.MethodGet, path, token, nil))
	assert.Equal(t, true, authed["likedByCaller"])
	assert.EqualValues(t, 1, authed["likeCount"])

	anonymous := decode[map[string]any](t, server.do(t, http.MethodGet, path, "", nil))
	assert.Equal(t, false, anonymous["likedByCaller"])

	assert.Equal(t, http.StatusNotFound, server.do(t, http.MethodGet, "/interactions/999", "", nil).Code)
}

func TestRecordInteraction_TokenOfDeletedUser(t *testing.T) {
	server := newTestServer(t)
	contentID := seedPublished(t, server)
	reader, token := server.createUser(t, "Reader", "reader@example.com", database.RoleUser)
	require.NoError(t, server.users.DeleteUser(context.Background(), reader.ID))

	rec := server.do(t, http.MethodPost, "/interactions", token, map[string]any{
		"contentId": contentID, "fingerprint": "device-1", "action": "view",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[database.InteractionResult](t, rec).Counts.Views)

	rec = server.do(t, http.MethodGet, "/interactions/"+strconv.FormatInt(contentID, 10), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["likedByCaller"])
}
