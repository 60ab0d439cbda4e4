package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
)

type NewUser struct {
	Email              string
	PasswordHash       string
	Role               models.UserRole
	MustChangePassword bool
}

const userColumns = `id, email, password_hash, role, status, must_change_password, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.MustChangePassword,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func CreateUser(ctx context.Context, db database.DBTX, in NewUser) (*models.User, error) {
	user := &models.User{}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}

	query := `
		INSERT INTO users (email, password_hash, role, must_change_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + userColumns

	err := scanUser(db.QueryRowContext(ctx, query,
		strings.ToLower(in.Email), in.PasswordHash, role, in.MustChangePassword), user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db database.DBTX, id int64) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	err := scanUser(db.QueryRowContext(ctx, query, id), user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func CreateProfile(ctx context.Context, db database.DBTX, userID int64, name, email, phone string) (*models.Profile, error) {
	profile := &models.Profile{}

	query := `
		INSERT INTO profiles (user_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, user_id, name, email, phone, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, userID, name, strings.ToLower(email), phone).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Email,
		&profile.Phone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return profile, nil
}

func GetProfileByEmail(ctx context.Context, db database.DBTX, email string) (*models.Profile, error) {
	profile := &models.Profile{}

	query := `
		SELECT id, user_id, name, email, phone, created_at, updated_at
		FROM profiles
		WHERE email = $1`

	err := db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Email,
		&profile.Phone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}
