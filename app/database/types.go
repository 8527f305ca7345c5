package database

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Action string

const (
	ActionView    Action = "view"
	ActionLike    Action = "like"
	ActionComment Action = "comment"
)

func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionLike, ActionComment:
		return true
	}
	return false
}

const DefaultTemplate = "article"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Content is both the list summary and the detail view; tags are sorted and lower-cased.
type Content struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	Status        Status     `json:"status"`
	AuthorID      int64      `json:"author_id"`
	AuthorName    string     `json:"author_name"`
	Template      string     `json:"template"`
	FeaturedImage *string    `json:"featured_image"`
	PublishDate   *time.Time `json:"publish_date"`
	Tags          []string   `json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ContentFilter struct {
	Status   Status
	TagName  string
	AuthorID int64
}

type NewContent struct {
	AuthorID      int64
	Title         string
	Body          string
	Status        Status
	Template      string
	FeaturedImage *string
	Tags          []string
}

// ContentPatch carries only the fields supplied by the caller. A non-nil Tags
// replaces the whole association set, including with an empty set.
type ContentPatch struct {
	Title         *string
	Body          *string
	Status        *Status
	Template      *string
	FeaturedImage *string
	Tags          *[]string
}

// Requester is the authenticated actor performing a content mutation.
type Requester struct {
	ID   int64
	Role Role
}

func (r Requester) CanModify(authorID int64) bool {
	return r.Role == RoleAdmin || r.ID == authorID
}

type Comment struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	UserID     *int64    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type InteractionCounts struct {
	Views    int `json:"viewCount"`
	Likes    int `json:"likeCount"`
	Comments int `json:"commentCount"`
}

type InteractionSummary struct {
	InteractionCounts
	Comments      []Comment `json:"comments"`
	LikedByCaller bool      `json:"likedByCaller"`
}

type InteractionRequest struct {
	ContentID   int64
	Fingerprint string
	Action      Action
	UserID      *int64 // nil for anonymous callers
	Comment     string
}

type InteractionResult struct {
	Action   Action            `json:"action"`
	Recorded bool              `json:"recorded"`
	Liked    *bool             `json:"liked,omitempty"`
	Counts   InteractionCounts `json:"interactions"`
	Comment  *Comment          `json:"comment,omitempty"`
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
}
