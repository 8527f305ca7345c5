package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContent_NormalizesTags(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)

	item := seedContent(t, db, author.ID, "Go Tips", StatusPublished, "Go", " go ", "Tips", "")

	assert.Equal(t, []string{"go", "tips"}, item.Tags)
	assert.Equal(t, "Ann", item.AuthorName)
	assert.Equal(t, DefaultTemplate, item.Template)
	require.NotNil(t, item.PublishDate)

	var tagCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&tagCount))
	assert.Equal(t, 2, tagCount)
}

func TestCreateContent_DraftHasNoPublishDate(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)

	item := seedContent(t, db, author.ID, "Draft", StatusDraft)

	assert.Nil(t, item.PublishDate)
	assert.Equal(t, []string{}, item.Tags)
}

func TestCreateContent_Validation(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	repo := NewContentRepository(db)

	tests := []struct {
		name  string
		input NewContent
		field string
	}{
		{"empty title", NewContent{AuthorID: author.ID, Title: "  ", Body: "b", Status: StatusDraft}, "title"},
		{"empty body", NewContent{AuthorID: author.ID, Title: "t", Body: "", Status: StatusDraft}, "body"},
		{"archived status", NewContent{AuthorID: author.ID, Title: "t", Body: "b", Status: StatusArchived}, "status"},
		{"unknown author", NewContent{AuthorID: 4242, Title: "t", Body: "b", Status: StatusDraft}, "author_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateContent(context.Background(), tt.input)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}

	count, err := repo.CountContent(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed creates must leave no content rows")
}

func TestCreateContent_SharesExistingTags(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)

	seedContent(t, db, author.ID, "First", StatusPublished, "go")
	seedContent(t, db, author.ID, "Second", StatusPublished, "GO", "db")

	var tagCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&tagCount))
	assert.Equal(t, 2, tagCount)
}

func TestListContent_Filters(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	bob := seedUser(t, db, "Bob", "bob@example.com", RoleEditor)
	repo := NewContentRepository(db)
	ctx := context.Background()

	first := seedContent(t, db, ann.ID, "First", StatusPublished, "go")
	second := seedContent(t, db, ann.ID, "Second", StatusDraft, "go", "db")
	third := seedContent(t, db, bob.ID, "Third", StatusPublished, "db")

	titles := func(items []Content) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Title)
		}
		return out
	}

	all, err := repo.ListContent(ctx, ContentFilter{})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{third.Title, second.Title, first.Title}, titles(all)); diff != "" {
		t.Errorf("ListContent() order mismatch (-want +got):\n%s", diff)
	}

	published, err := repo.ListContent(ctx, ContentFilter{Status: StatusPublished})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"First", "Third"}, titles(published))

	tagged, err := repo.ListContent(ctx, ContentFilter{TagName: "DB"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Second", "Third"}, titles(tagged))

	combined, err := repo.ListContent(ctx, ContentFilter{TagName: "go", AuthorID: ann.ID, Status: StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, []string{"Second"}, titles(combined))

	none, err := repo.ListContent(ctx, ContentFilter{TagName: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetContent_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := NewContentRepository(db).GetContent(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateContent_Permissions(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	bob := seedUser(t, db, "Bob", "bob@example.com", RoleEditor)
	admin := seedUser(t, db, "Root", "root@example.com", RoleAdmin)
	repo := NewContentRepository(db)
	ctx := context.Background()

	item := seedContent(t, db, ann.ID, "Original", StatusDraft)
	title := "Changed"

	_, err := repo.UpdateContent(ctx, item.ID, Requester{ID: bob.ID, Role: RoleEditor}, ContentPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = repo.UpdateContent(ctx, 999, Requester{ID: ann.ID, Role: RoleEditor}, ContentPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := repo.UpdateContent(ctx, item.ID, Requester{ID: admin.ID, Role: RoleAdmin}, ContentPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.Equal(t, item.Body, updated.Body, "unsupplied fields must stay untouched")
}

func TestUpdateContent_PublishDateStampedOnTransition(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	repo := NewContentRepository(db)
	ctx := context.Background()
	owner := Requester{ID: ann.ID, Role: RoleEditor}

	item := seedContent(t, db, ann.ID, "Draft", StatusDraft)
	require.Nil(t, item.PublishDate)

	published := StatusPublished
	updated, err := repo.UpdateContent(ctx, item.ID, owner, ContentPatch{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishDate)
	stamped := *updated.PublishDate

	body := "new body"
	again, err := repo.UpdateContent(ctx, item.ID, owner, ContentPatch{Body: &body})
	require.NoError(t, err)
	require.NotNil(t, again.PublishDate)
	assert.True(t, stamped.Equal(*again.PublishDate), "publish date must not move on unrelated edits")
}

func TestUpdateContent_ReplacesTags(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	repo := NewContentRepository(db)
	ctx := context.Background()
	owner := Requester{ID: ann.ID, Role: RoleEditor}

	item := seedContent(t, db, ann.ID, "Tagged", StatusDraft, "a", "b")

	tags := []string{"B", "c", "c"}
	updated, err := repo.UpdateContent(ctx, item.ID, owner, ContentPatch{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)

	title := "Retitled"
	kept, err := repo.UpdateContent(ctx, item.ID, owner, ContentPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, kept.Tags, "absent tags must leave associations alone")

	empty := []string{}
	cleared, err := repo.UpdateContent(ctx, item.ID, owner, ContentPatch{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)

	var orphanCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags WHERE name = 'a'`).Scan(&orphanCount))
	assert.Equal(t, 1, orphanCount, "orphan tags are kept")
}

func TestDeleteContent(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	bob := seedUser(t, db, "Bob", "bob@example.com", RoleUser)
	repo := NewContentRepository(db)
	ctx := context.Background()

	item := seedContent(t, db, ann.ID, "Doomed", StatusPublished, "x")
	_, err := NewInteractionRepository(db).RecordInteraction(ctx, InteractionRequest{
		ContentID: item.ID, Fingerprint: "fp", Action: ActionView,
	})
	require.NoError(t, err)

	err = repo.DeleteContent(ctx, item.ID, Requester{ID: bob.ID, Role: RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, repo.DeleteContent(ctx, item.ID, Requester{ID: ann.ID, Role: RoleEditor}))

	_, err = repo.GetContent(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var links, interactions int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM content_tags`).Scan(&links))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM content_interactions`).Scan(&interactions))
	assert.Zero(t, links)
	assert.Zero(t, interactions)

	err = repo.DeleteContent(ctx, item.ID, Requester{ID: ann.ID, Role: RoleEditor})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchPublished(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	repo := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, db, ann.ID, "Learning Go", StatusPublished)
	seedContent(t, db, ann.ID, "Hidden Go draft", StatusDraft)
	seedContent(t, db, ann.ID, "Databases", StatusPublished, "golang")
	seedContent(t, db, ann.ID, "100% coverage", StatusPublished)

	results, err := repo.SearchPublished(ctx, "GO")
	require.NoError(t, err)
	titles := []string{}
	for _, item := range results {
		titles = append(titles, item.Title)
	}
	assert.ElementsMatch(t, []string{"Learning Go", "Databases"}, titles)

	percent, err := repo.SearchPublished(ctx, "0%")
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "100% coverage", percent[0].Title)

	none, err := repo.SearchPublished(ctx, "nothing-like-this")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Zeta", "alpha", "ALPHA", " ", "Ünïcode"})
	want := []string{"alpha", "zeta", "ünïcode"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeTags() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchPublished_UnicodeCaseFolding(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "Ann", "ann@example.com", RoleEditor)
	repo := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, db, ann.ID, "Élan vital", StatusPublished)
	seedContent(t, db, ann.ID, "Straße", StatusPublished, "Über")

	for _, term := range []string{"élan", "ÉLAN", "Élan"} {
		results, err := repo.SearchPublished(ctx, term)
		require.NoError(t, err)
		require.Len(t, results, 1, term)
		assert.Equal(t, "Élan vital", results[0].Title)
	}

	byTag, err := repo.SearchPublished(ctx, "ÜBER")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Straße", byTag[0].Title)
}
