package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staybook/internal/models"
)

// UpsertUser creates the user on first sight and refreshes profile fields
// from the identity provider afterwards. Empty fields never overwrite
// stored ones. Role and recent cities are owned by this service and are
// left untouched on conflict.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	cities, err := encodeList(user.RecentSearchedCities)
	if err != nil {
		return fmt.Errorf("failed to encode recent cities: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO users (id, username, email, image, role, recent_searched_cities, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = COALESCE(NULLIF(excluded.username, ''), users.username),
			email = COALESCE(NULLIF(excluded.email, ''), users.email),
			image = COALESCE(NULLIF(excluded.image, ''), users.image),
			updated_at = excluded.updated_at`
	_, err = db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Image, user.Role, cities, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	var cities string
	err := db.QueryRowContext(ctx,
		`SELECT id, username, email, image, role, recent_searched_cities, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Image, &user.Role, &cities, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", notFound(err))
	}
	if user.RecentSearchedCities, err = decodeList(cities); err != nil {
		return nil, fmt.Errorf("failed to decode recent cities: %w", err)
	}
	return &user, nil
}

func (db *DB) UpdateUserRole(ctx context.Context, id, role string) error {
	return db.updateUser(ctx, "role", role, id)
}

func (db *DB) UpdateRecentSearchedCities(ctx context.Context, id string, cities []string) error {
	encoded, err := encodeList(cities)
	if err != nil {
		return fmt.Errorf("failed to encode recent cities: %w", err)
	}
	return db.updateUser(ctx, "recent_searched_cities", encoded, id)
}

func (db *DB) updateUser(ctx context.Context, column string, value interface{}, id string) error {
	query := fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, column)
	result, err := db.ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", column, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update user %s: %w", column, ErrNotFound)
	}
	return nil
}

func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}
