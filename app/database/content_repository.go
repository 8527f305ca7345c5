package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const contentSelect = `
	SELECT c.id, c.title, c.body, c.status, c.author_id, COALESCE(u.name, ''), c.template,
	       c.featured_image, c.publish_date, c.created_at, c.updated_at,
	       (SELECT json_group_array(t.name)
	          FROM content_tags ct
	          JOIN tags t ON t.id = ct.tag_id
	         WHERE ct.content_id = c.id) AS tags
	FROM content c
	LEFT JOIN users u ON u.id = c.author_id`

// ContentRepository handles database operations for content and its tags
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListContent returns content matching every supplied filter, newest first
func (r *ContentRepository) ListContent(ctx context.Context, filter ContentFilter) ([]Content, error) {
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "c.status = ?")
		args = append(args, filter.Status)
	}

	if filter.AuthorID != 0 {
		conditions = append(conditions, "c.author_id = ?")
		args = append(args, filter.AuthorID)
	}

	if filter.TagName != "" {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM content_tags ct
			JOIN tags t ON t.id = ct.tag_id
			WHERE ct.content_id = c.id AND t.name = ?)`)
		args = append(args, firstTag(filter.TagName))
	}

	query := contentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id DESC"

	return r.queryContent(ctx, r.db, query, args...)
}

// SearchPublished matches a case-insensitive substring against title, body and tag names
// of published content. Case folding follows Unicode, not just ASCII.
func (r *ContentRepository) SearchPublished(ctx context.Context, term string) ([]Content, error) {
	pattern := "%" + escapeLike(foldText(term)) + "%"

	query := contentSelect + `
		WHERE c.status = 'published'
		  AND (` + foldFunction + `(c.title) LIKE ? ESCAPE '\'
		       OR ` + foldFunction + `(c.body) LIKE ? ESCAPE '\'
		       OR EXISTS (
		           SELECT 1 FROM content_tags ct
		           JOIN tags t ON t.id = ct.tag_id
		           WHERE ct.content_id = c.id AND t.name LIKE ? ESCAPE '\'))
		ORDER BY c.created_at DESC, c.id DESC`

	return r.queryContent(ctx, r.db, query, pattern, pattern, pattern)
}

// GetContent returns a single content item or ErrNotFound
func (r *ContentRepository) GetContent(ctx context.Context, id int64) (*Content, error) {
	return r.getContent(ctx, r.db, id)
}

// CountContent returns the total number of content rows
func (r *ContentRepository) CountContent(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get content count: %w", err)
	}
	return count, nil
}

// CreateContent inserts the content and its tag associations atomically
func (r *ContentRepository) CreateContent(ctx context.Context, input NewContent) (*Content, error) {
	if err := validateNewContent(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var publishDate *time.Time
	if input.Status == StatusPublished {
		publishDate = &now
	}

	var created *Content
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO content (title, body, status, author_id, template, featured_image,
			                     publish_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, input.Title, input.Body, input.Status, input.AuthorID, input.Template,
			input.FeaturedImage, publishDate, now, now).Scan(&id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return invalid("author_id", "author does not exist")
			}
			return fmt.Errorf("failed to insert content: %w", err)
		}

		if err := replaceContentTags(ctx, tx, id, input.Tags); err != nil {
			return err
		}

		created, err = r.getContent(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateContent applies a partial update. Only the author or an admin may update.
func (r *ContentRepository) UpdateContent(ctx context.Context, id int64, requester Requester, patch ContentPatch) (*Content, error) {
	if err := validateContentPatch(&patch); err != nil {
		return nil, err
	}

	var updated *Content
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := r.lockOwnership(ctx, tx, id, requester)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sets := []string{"updated_at = ?"}
		args := []any{now}

		if patch.Title != nil {
			sets = append(sets, "title = ?")
			args = append(args, *patch.Title)
		}
		if patch.Body != nil {
			sets = append(sets, "body = ?")
			args = append(args, *patch.Body)
		}
		if patch.Template != nil {
			sets = append(sets, "template = ?")
			args = append(args, *patch.Template)
		}
		if patch.FeaturedImage != nil {
			sets = append(sets, "featured_image = ?")
			args = append(args, nullIfEmpty(*patch.FeaturedImage))
		}
		if patch.Status != nil {
			sets = append(sets, "status = ?")
			args = append(args, *patch.Status)
			if *patch.Status == StatusPublished && current != StatusPublished {
				sets = append(sets, "publish_date = ?")
				args = append(args, now)
			}
		}

		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE content SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return fmt.Errorf("failed to update content: %w", err)
		}

		if patch.Tags != nil {
			if err := replaceContentTags(ctx, tx, id, *patch.Tags); err != nil {
				return err
			}
		}

		updated, err = r.getContent(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteContent removes the content together with its associations and interactions
func (r *ContentRepository) DeleteContent(ctx context.Context, id int64, requester Requester) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.lockOwnership(ctx, tx, id, requester); err != nil {
			return err
		}

		statements := []string{
			`DELETE FROM content_tags WHERE content_id = ?`,
			`DELETE FROM content_interactions WHERE content_id = ?`,
			`DELETE FROM content WHERE id = ?`,
		}
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement, id); err != nil {
				return fmt.Errorf("failed to delete content: %w", err)
			}
		}

		return nil
	})
}

// lockOwnership loads the author and status of a content row inside the transaction
// and checks that the requester may modify it.
func (r *ContentRepository) lockOwnership(ctx context.Context, tx *sql.Tx, id int64, requester Requester) (Status, error) {
	var authorID int64
	var status Status
	err := tx.QueryRowContext(ctx, `SELECT author_id, status FROM content WHERE id = ?`, id).Scan(&authorID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("content %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load content: %w", err)
	}

	if !requester.CanModify(authorID) {
		return "", fmt.Errorf("content %d: %w", id, ErrForbidden)
	}

	return status, nil
}

func (r *ContentRepository) getContent(ctx context.Context, q queryer, id int64) (*Content, error) {
	items, err := r.queryContent(ctx, q, contentSelect+" WHERE c.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("content %d: %w", id, ErrNotFound)
	}
	return &items[0], nil
}

func (r *ContentRepository) queryContent(ctx context.Context, q queryer, query string, args ...any) ([]Content, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	items := []Content{}
	for rows.Next() {
		var item Content
		var featuredImage sql.NullString
		var publishDate sql.NullTime
		var tags sql.NullString

		err := rows.Scan(
			&item.ID, &item.Title, &item.Body, &item.Status, &item.AuthorID, &item.AuthorName,
			&item.Template, &featuredImage, &publishDate, &item.CreatedAt, &item.UpdatedAt, &tags,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}

		if featuredImage.Valid {
			item.FeaturedImage = &featuredImage.String
		}
		if publishDate.Valid {
			item.PublishDate = &publishDate.Time
		}
		if item.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}

	return items, nil
}

func validateNewContent(input *NewContent) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return invalid("title", "title is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return invalid("body", "content body is required")
	}
	if input.Status != StatusDraft && input.Status != StatusPublished {
		return invalid("status", "status must be draft or published")
	}
	if input.AuthorID == 0 {
		return invalid("author_id", "author is required")
	}

	input.Template = strings.TrimSpace(input.Template)
	if input.Template == "" {
		input.Template = DefaultTemplate
	}
	if input.FeaturedImage != nil && strings.TrimSpace(*input.FeaturedImage) == "" {
		input.FeaturedImage = nil
	}

	return nil
}

func validateContentPatch(patch *ContentPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return invalid("title", "title cannot be empty")
		}
		patch.Title = &title
	}
	if patch.Body != nil && strings.TrimSpace(*patch.Body) == "" {
		return invalid("body", "content body cannot be empty")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return invalid("status", "status must be draft, published or archived")
	}
	if patch.Template != nil {
		template := strings.TrimSpace(*patch.Template)
		if template == "" {
			return invalid("template", "template cannot be empty")
		}
		patch.Template = &template
	}
	return nil
}

func firstTag(name string) string {
	if tags := NormalizeTags([]string{name}); len(tags) > 0 {
		return tags[0]
	}
	return name
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
