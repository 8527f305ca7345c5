package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldText lower-cases with Unicode rules. A Caser is not safe for concurrent
// use, so each call gets its own.
func foldText(text string) string {
	return cases.Lower(language.Und).String(text)
}

// NormalizeTags lower-cases, trims and de-duplicates tag names. The result is sorted.
func NormalizeTags(names []string) []string {
	caser := cases.Lower(language.Und)

	seen := make(map[string]struct{}, len(names))
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		name = caser.String(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}

	sort.Strings(normalized)
	return normalized
}

// replaceContentTags drops every association of the content and links the given
// names, creating missing tags on the way. Must run inside the caller's transaction.
func replaceContentTags(ctx context.Context, tx *sql.Tx, contentID int64, names []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM content_tags WHERE content_id = ?`, contentID); err != nil {
		return fmt.Errorf("failed to clear content tags: %w", err)
	}

	for _, name := range NormalizeTags(names) {
		tagID, err := upsertTag(ctx, tx, name)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO content_tags (content_id, tag_id)
			VALUES (?, ?)
			ON CONFLICT (content_id, tag_id) DO NOTHING
		`, contentID, tagID)
		if err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
	}

	return nil
}

// upsertTag inserts the tag or, when the name already exists, returns the existing id
// in the same statement.
func upsertTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var tagID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO tags (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id
	`, name).Scan(&tagID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tag %q: %w", name, err)
	}
	return tagID, nil
}

func decodeTags(raw sql.NullString) ([]string, error) {
	tags := []string{}
	if !raw.Valid || raw.String == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	sort.Strings(tags)
	return tags, nil
}
