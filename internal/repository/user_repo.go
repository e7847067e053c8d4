package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

const userColumns = `id, email, username, full_name, avatar_url, avatar_local_path, password_hash, role,
	is_email_verified, email_verification_token_hash, email_verification_expiry,
	forgot_password_token_hash, forgot_password_expiry, refresh_token, created_at, updated_at`

// UserRepository is the credential store.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	var avatarURL, avatarPath *string
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &avatarURL, &avatarPath, &u.PasswordHash, &u.Role,
		&u.IsEmailVerified, &u.EmailVerificationTokenHash, &u.EmailVerificationExpiry,
		&u.ForgotPasswordTokenHash, &u.ForgotPasswordExpiry, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if avatarURL != nil {
		u.Avatar = &model.Avatar{URL: *avatarURL}
		if avatarPath != nil {
			u.Avatar.LocalPath = *avatarPath
		}
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, op string, where string, arg any) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		return model.User{}, wrapError(op, err, model.ErrUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, "find user by id", "id = $1", id)
}

// FindByEmail matches the address exactly; emails are case-sensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, "find user by email", "email = $1", email)
}

func (r *UserRepository) FindByVerificationHash(ctx context.Context, hash string) (model.User, error) {
	return r.findOne(ctx, "find user by verification hash", "email_verification_token_hash = $1", hash)
}

func (r *UserRepository) FindByResetHash(ctx context.Context, hash string) (model.User, error) {
	return r.findOne(ctx, "find user by reset hash", "forgot_password_token_hash = $1", hash)
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	var avatarURL, avatarPath *string
	if u.Avatar != nil {
		avatarURL, avatarPath = &u.Avatar.URL, &u.Avatar.LocalPath
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, username, full_name, avatar_url, avatar_local_path, password_hash, role,
		                    is_email_verified, email_verification_token_hash, email_verification_expiry,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Email, u.Username, u.FullName, avatarURL, avatarPath, u.PasswordHash, u.Role,
		u.IsEmailVerified, u.EmailVerificationTokenHash, u.EmailVerificationExpiry, u.CreatedAt, u.UpdatedAt)
	return wrapError("create user", err, model.ErrUserNotFound)
}

func (r *UserRepository) exec(ctx context.Context, op string, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return wrapError(op, err, model.ErrUserNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, userID string, hash string, expiry time.Time) error {
	return r.exec(ctx, "set verification token",
		`UPDATE users SET email_verification_token_hash = $2, email_verification_expiry = $3, updated_at = $4
		 WHERE id = $1`, userID, hash, expiry, time.Now().UTC())
}

// MarkVerified flips the flag and nulls the consumed token so it can never match again.
func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	return r.exec(ctx, "mark user verified",
		`UPDATE users SET is_email_verified = TRUE, email_verification_token_hash = NULL,
		                  email_verification_expiry = NULL, updated_at = $2
		 WHERE id = $1`, userID, time.Now().UTC())
}

// SetRefreshToken overwrites the single refresh slot; nil clears it.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	return r.exec(ctx, "set refresh token",
		`UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`,
		userID, token, time.Now().UTC())
}

// SwapRefreshToken replaces presented with next only if presented is still the stored value.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, userID string, presented string, next string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3, updated_at = $4
		 WHERE id = $1 AND refresh_token = $2`,
		userID, presented, next, time.Now().UTC())
	if err != nil {
		return false, wrapError("swap refresh token", err, model.ErrUserNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	return r.exec(ctx, "update password",
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID string, hash string, expiry time.Time) error {
	return r.exec(ctx, "set reset token",
		`UPDATE users SET forgot_password_token_hash = $2, forgot_password_expiry = $3, updated_at = $4
		 WHERE id = $1`, userID, hash, expiry, time.Now().UTC())
}

// ResetPassword stores the new hash, consumes the reset token and revokes the session.
func (r *UserRepository) ResetPassword(ctx context.Context, userID string, passwordHash string) error {
	return r.exec(ctx, "reset password",
		`UPDATE users SET password_hash = $2, forgot_password_token_hash = NULL, forgot_password_expiry = NULL,
		                  refresh_token = NULL, updated_at = $3
		 WHERE id = $1`, userID, passwordHash, time.Now().UTC())
}
