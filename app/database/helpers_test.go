package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.False(t, dirty)

	return db
}

func seedUser(t *testing.T, db *DB, name, email string, role Role) *User {
	t.Helper()

	user, err := NewUserRepository(db).CreateUser(context.Background(), NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func seedContent(t *testing.T, db *DB, authorID int64, title string, status Status, tags ...string) *Content {
	t.Helper()

	item, err := NewContentRepository(db).CreateContent(context.Background(), NewContent{
		AuthorID: authorID,
		Title:    title,
		Body:     "Body of " + title,
		Status:   status,
		Tags:     tags,
	})
	require.NoError(t, err)
	return item
}
