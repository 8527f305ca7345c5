package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const anonymousAuthor = "Anonymous"

// InteractionRepository is the engagement ledger: views, toggleable likes and comments
type InteractionRepository struct {
	db *DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// GetInteractions returns aggregate counts and comments for a content item.
// LikedByCaller is only computed for authenticated callers; anonymous callers
// always see false.
func (r *InteractionRepository) GetInteractions(ctx context.Context, contentID int64, userID *int64) (*InteractionSummary, error) {
	if err := ensureContentExists(ctx, r.db, contentID); err != nil {
		return nil, err
	}

	userID, err := knownUser(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}

	counts, err := r.countInteractions(ctx, r.db, contentID)
	if err != nil {
		return nil, err
	}

	comments, err := r.listComments(ctx, contentID)
	if err != nil {
		return nil, err
	}

	summary := &InteractionSummary{
		InteractionCounts: counts,
		Comments:          comments,
	}

	if userID != nil {
		err := r.db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM content_interactions
				WHERE content_id = ? AND user_id = ? AND action = 'like')
		`, contentID, *userID).Scan(&summary.LikedByCaller)
		if err != nil {
			return nil, fmt.Errorf("failed to check like state: %w", err)
		}
	}

	return summary, nil
}

// RecordInteraction records a view (idempotent per identity), toggles a like, or
// appends a comment. The check and the write share one transaction.
func (r *InteractionRepository) RecordInteraction(ctx context.Context, req InteractionRequest) (*InteractionResult, error) {
	if err := validateInteraction(&req); err != nil {
		return nil, err
	}

	var result *InteractionResult
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := ensureContentExists(ctx, tx, req.ContentID); err != nil {
			return err
		}

		userID, err := knownUser(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		req.UserID = userID

		result = &InteractionResult{Action: req.Action}

		switch req.Action {
		case ActionView:
			existing, err := r.countIdentityRows(ctx, tx, req)
			if err != nil {
				return err
			}
			if existing == 0 {
				if _, err := r.insert(ctx, tx, req); err != nil {
					return err
				}
				result.Recorded = true
			}

		case ActionLike:
			removed, err := r.deleteIdentityRows(ctx, tx, req)
			if err != nil {
				return err
			}
			liked := removed == 0
			if liked {
				if _, err := r.insert(ctx, tx, req); err != nil {
					return err
				}
			}
			result.Liked = &liked
			result.Recorded = true

		case ActionComment:
			id, err := r.insert(ctx, tx, req)
			if err != nil {
				return err
			}
			comment, err := r.getComment(ctx, tx, id)
			if err != nil {
				return err
			}
			result.Comment = comment
			result.Recorded = true
		}

		counts, err := r.countInteractions(ctx, tx, req.ContentID)
		if err != nil {
			return err
		}
		result.Counts = counts

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// identityClause matches the caller's earlier rows: by fingerprint, or by user id
// when the caller is authenticated, so a prior anonymous like on the same device is
// still recognised after login.
func identityClause(req InteractionRequest) (string, []any) {
	if req.UserID != nil {
		return `content_id = ? AND action = ? AND (fingerprint = ? OR user_id = ?)`,
			[]any{req.ContentID, req.Action, req.Fingerprint, *req.UserID}
	}
	return `content_id = ? AND action = ? AND fingerprint = ?`,
		[]any{req.ContentID, req.Action, req.Fingerprint}
}

func (r *InteractionRepository) countIdentityRows(ctx context.Context, tx *sql.Tx, req InteractionRequest) (int, error) {
	clause, args := identityClause(req)

	var count int
	err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_interactions WHERE "+clause, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing %s: %w", req.Action, err)
	}
	return count, nil
}

func (r *InteractionRepository) deleteIdentityRows(ctx context.Context, tx *sql.Tx, req InteractionRequest) (int64, error) {
	clause, args := identityClause(req)

	res, err := tx.ExecContext(ctx, "DELETE FROM content_interactions WHERE "+clause, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to remove %s: %w", req.Action, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return removed, nil
}

func (r *InteractionRepository) insert(ctx context.Context, tx *sql.Tx, req InteractionRequest) (int64, error) {
	var comment any
	if req.Action == ActionComment {
		comment = req.Comment
	}

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO content_interactions (content_id, user_id, fingerprint, action, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, req.ContentID, req.UserID, req.Fingerprint, req.Action, comment, time.Now().UTC()).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s already recorded", ErrConflict, req.Action)
		}
		return 0, fmt.Errorf("failed to record %s: %w", req.Action, err)
	}

	return id, nil
}

func (r *InteractionRepository) countInteractions(ctx context.Context, q queryer, contentID int64) (InteractionCounts, error) {
	var counts InteractionCounts

	rows, err := q.QueryContext(ctx, `
		SELECT action, COUNT(*)
		FROM content_interactions
		WHERE content_id = ?
		GROUP BY action
	`, contentID)
	if err != nil {
		return counts, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action Action
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return counts, fmt.Errorf("failed to scan interaction count: %w", err)
		}

		switch action {
		case ActionView:
			counts.Views = count
		case ActionLike:
			counts.Likes = count
		case ActionComment:
			counts.Comments = count
		}
	}

	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("error iterating interaction counts: %w", err)
	}

	return counts, nil
}

const commentSelect = `
	SELECT ci.id, COALESCE(ci.comment, ''), COALESCE(u.name, '` + anonymousAuthor + `'), ci.user_id, ci.created_at
	FROM content_interactions ci
	LEFT JOIN users u ON u.id = ci.user_id`

func (r *InteractionRepository) listComments(ctx context.Context, contentID int64) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+`
		WHERE ci.content_id = ? AND ci.action = 'comment'
		ORDER BY ci.created_at DESC, ci.id DESC
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

func (r *InteractionRepository) getComment(ctx context.Context, tx *sql.Tx, id int64) (*Comment, error) {
	rows, err := tx.QueryContext(ctx, commentSelect+` WHERE ci.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get comment: %w", err)
		}
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}

	return scanComment(rows)
}

func scanComment(rows *sql.Rows) (*Comment, error) {
	var comment Comment
	var userID sql.NullInt64

	if err := rows.Scan(&comment.ID, &comment.Text, &comment.AuthorName, &userID, &comment.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan comment row: %w", err)
	}
	if userID.Valid {
		comment.UserID = &userID.Int64
	}

	return &comment, nil
}

func ensureContentExists(ctx context.Context, q queryer, contentID int64) error {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM content WHERE id = ?`, contentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("content %d: %w", contentID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	return nil
}

// knownUser drops a user id whose account no longer exists, so a token that
// outlived its user records anonymously.
func knownUser(ctx context.Context, q queryer, userID *int64) (*int64, error) {
	if userID == nil {
		return nil, nil
	}

	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, *userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return userID, nil
}

func validateInteraction(req *InteractionRequest) error {
	if req.ContentID <= 0 {
		return invalid("contentId", "content ID is required")
	}

	req.Fingerprint = strings.TrimSpace(req.Fingerprint)
	if req.Fingerprint == "" {
		return invalid("fingerprint", "fingerprint is required")
	}

	if !req.Action.Valid() {
		return invalid("action", "action must be view, like or comment")
	}

	if req.Action == ActionComment {
		req.Comment = strings.TrimSpace(req.Comment)
		if req.Comment == "" {
			return invalid("comment", "comment text is required")
		}
	}

	return nil
}
