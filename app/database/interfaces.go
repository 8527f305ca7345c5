package database

import (
	"context"
)

type ContentStore interface {
	ListContent(ctx context.Context, filter ContentFilter) ([]Content, error)
	SearchPublished(ctx context.Context, term string) ([]Content, error)
	GetContent(ctx context.Context, id int64) (*Content, error)
	CountContent(ctx context.Context) (int, error)

	CreateContent(ctx context.Context, input NewContent) (*Content, error)
	UpdateContent(ctx context.Context, id int64, requester Requester, patch ContentPatch) (*Content, error)
	DeleteContent(ctx context.Context, id int64, requester Requester) error
}

type InteractionStore interface {
	GetInteractions(ctx context.Context, contentID int64, userID *int64) (*InteractionSummary, error)
	RecordInteraction(ctx context.Context, req InteractionRequest) (*InteractionResult, error)
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	CreateUser(ctx context.Context, input NewUser) (*User, error)
	EnsureUser(ctx context.Context, input NewUser) (*User, bool, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context) (int, error)
}

type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

var (
	_ ContentStore     = (*ContentRepository)(nil)
	_ InteractionStore = (*InteractionRepository)(nil)
	_ UserStore        = (*UserRepository)(nil)
	_ SettingsStore    = (*SettingsRepository)(nil)
)
