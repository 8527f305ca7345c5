package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userSelect = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users`

func (r *UserRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	return getUser(ctx, r.db, `WHERE id = ?`, id)
}

// GetUserByEmail matches case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return getUser(ctx, r.db, `WHERE email = ?`, strings.TrimSpace(email))
}

func getUser(ctx context.Context, q queryer, where string, arg any) (*User, error) {
	var u User
	err := q.QueryRowContext(ctx, userSelect+" "+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, input NewUser) (*User, error) {
	if err := validateNewUser(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, input.Name, input.Email, input.PasswordHash, input.Role, now, now).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, input.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetUser(ctx, id)
}

// EnsureUser creates the user unless one with the same email already exists.
// The boolean reports whether a row was inserted.
func (r *UserRepository) EnsureUser(ctx context.Context, input NewUser) (*User, bool, error) {
	existing, err := r.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	created, err := r.CreateUser(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// UpdateUser applies the supplied fields. Demoting the last admin is a conflict.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	if err := validateUserPatch(&patch); err != nil {
		return nil, err
	}

	var updated *User
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := getUser(ctx, tx, `WHERE id = ?`, id)
		if err != nil {
			return err
		}

		if patch.Role != nil && current.Role == RoleAdmin && *patch.Role != RoleAdmin {
			if err := ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}

		sets := []string{}
		args := []any{}
		if patch.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *patch.Name)
		}
		if patch.Email != nil {
			sets = append(sets, "email = ?")
			args = append(args, *patch.Email)
		}
		if patch.PasswordHash != nil {
			sets = append(sets, "password_hash = ?")
			args = append(args, *patch.PasswordHash)
		}
		if patch.Role != nil {
			sets = append(sets, "role = ?")
			args = append(args, *patch.Role)
		}

		if len(sets) > 0 {
			sets = append(sets, "updated_at = ?")
			args = append(args, time.Now().UTC(), id)

			_, err := tx.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: email %s is already registered", ErrConflict, *patch.Email)
				}
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		updated, err = getUser(ctx, tx, `WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteUser removes a user. The last admin and users who still author content
// cannot be deleted. Their comments are kept and become anonymous.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := getUser(ctx, tx, `WHERE id = ?`, id)
		if err != nil {
			return err
		}

		if current.Role == RoleAdmin {
			if err := ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}

		// Views and likes would collide with anonymous rows once user_id is nulled.
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM content_interactions
			WHERE user_id = ? AND action IN ('view', 'like')
		`, id); err != nil {
			return fmt.Errorf("failed to remove user interactions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: user %d still authors content", ErrConflict, id)
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}

		return nil
	})
}

func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	return countAdmins(ctx, r.db)
}

func countAdmins(ctx context.Context, q queryer) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func ensureAnotherAdmin(ctx context.Context, q queryer) error {
	count, err := countAdmins(ctx, q)
	if err != nil {
		return err
	}
	if count <= 1 {
		return fmt.Errorf("%w: cannot remove the last admin", ErrConflict)
	}
	return nil
}

func validateNewUser(input *NewUser) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return invalid("name", "name is required")
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return err
	}
	input.Email = email

	if input.PasswordHash == "" {
		return invalid("password", "password is required")
	}

	if input.Role == "" {
		input.Role = RoleUser
	}
	if !input.Role.Valid() {
		return invalid("role", "role must be admin, editor or user")
	}

	return nil
}

func validateUserPatch(patch *UserPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return invalid("name", "name cannot be empty")
		}
		patch.Name = &name
	}

	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return err
		}
		patch.Email = &email
	}

	if patch.PasswordHash != nil && *patch.PasswordHash == "" {
		return invalid("password", "password cannot be empty")
	}

	if patch.Role != nil && !patch.Role.Valid() {
		return invalid("role", "role must be admin, editor or user")
	}

	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid("email", "email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "email is malformed")
	}

	return email, nil
}
