package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-project-hub/internal/mail"
	"go-project-hub/internal/model"
	"go-project-hub/internal/throttle"
	"go-project-hub/internal/token"
	"go-project-hub/internal/util"
)

const (
	uploadDir  = "images"
	tokenType  = "Bearer"
	verifyPath = "/api/v1/users/verify/"
	resetPath  = "/api/v1/users/reset-password/"
)

type AuthConfig struct {
	BcryptCost      int
	VerificationTTL time.Duration
}

// AuthService drives registration, verification, login, refresh rotation,
// logout and password changes.
type AuthService struct {
	users      UserStore
	tokens     *token.Issuer
	mailer     mail.Sender
	files      FileStore
	limiter    throttle.Limiter
	bcryptCost int
	verifyTTL  time.Duration
	dummyHash  []byte
	now        func() time.Time
}

func NewAuthService(users UserStore, tokens *token.Issuer, mailer mail.Sender, files FileStore, limiter throttle.Limiter, cfg AuthConfig) (*AuthService, error) {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	// Compared against when the email is unknown so both login failures cost the same.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		files:      files,
		limiter:    limiter,
		bcryptCost: cost,
		verifyTTL:  cfg.VerificationTTL,
		dummyHash:  dummy,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, avatar *model.Upload, baseURL string) (model.PublicUser, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.PublicUser{}, model.NewValidationError(err)
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return model.PublicUser{}, fmt.Errorf("email already registered: %w", model.ErrConflict)
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	plain, tokenHash, expiry, err := s.tokens.IssueVerificationToken()
	if err != nil {
		return model.PublicUser{}, err
	}

	now := s.now()
	user := model.User{
		ID:                         uuid.NewString(),
		Email:                      req.Email,
		Username:                   req.Username,
		FullName:                   req.FullName,
		PasswordHash:               string(hash),
		Role:                       model.RoleMember,
		EmailVerificationTokenHash: &tokenHash,
		EmailVerificationExpiry:    &expiry,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if avatar != nil {
		stored, err := s.saveAvatar(avatar, baseURL)
		if err != nil {
			return model.PublicUser{}, err
		}
		user.Avatar = stored
	}

	if err := s.users.Create(ctx, user); err != nil {
		if user.Avatar != nil {
			_ = s.files.Remove(user.Avatar.LocalPath)
		}
		if errors.Is(err, model.ErrConflict) {
			return model.PublicUser{}, fmt.Errorf("email or username already registered: %w", model.ErrConflict)
		}
		return model.PublicUser{}, err
	}

	slog.Info("user registered", "user_id", user.ID)

	// The account stays even when delivery fails; the user can ask for a resend.
	if err := s.sendVerification(ctx, user, plain, baseURL); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (s *AuthService) saveAvatar(avatar *model.Upload, baseURL string) (*model.Avatar, error) {
	name, err := util.SanitizeFilename(avatar.Filename)
	if err != nil {
		return nil, err
	}

	normalized, err := util.NormalizeAvatar(avatar.Content, util.AvatarSize)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(uploadDir, util.ReplaceExtension(name, ".png"), bytes.NewReader(normalized))
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	return &model.Avatar{URL: model.PublicURL(baseURL, stored.Path), LocalPath: stored.Path}, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user model.User, plain string, baseURL string) error {
	msg, err := mail.VerificationEmail(user.Email, displayName(user), baseURL+verifyPath+plain, s.verifyTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token. A consumed token no longer matches any user.
func (s *AuthService) VerifyEmail(ctx context.Context, plain string) error {
	if plain == "" {
		return model.ErrInvalidToken
	}

	user, err := s.users.FindByVerificationHash(ctx, token.HashToken(plain))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrInvalidToken
	}
	if err != nil {
		return err
	}

	if user.IsEmailVerified {
		return model.ErrAlreadyVerified
	}
	if user.EmailVerificationExpiry != nil && s.now().After(*user.EmailVerificationExpiry) {
		return model.ErrTokenExpired
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	slog.Info("email verified", "user_id", user.ID)
	return nil
}

// ResendVerification issues a fresh token, invalidating the previous one.
func (s *AuthService) ResendVerification(ctx context.Context, req model.EmailRequest, baseURL string) error {
	if err := req.Validate(); err != nil {
		return model.NewValidationError(err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return model.ErrAlreadyVerified
	}

	if err := s.cooldown(ctx, "verify:"+user.Email); err != nil {
		return err
	}

	plain, hash, expiry, err := s.tokens.IssueVerificationToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, hash, expiry); err != nil {
		return err
	}

	return s.sendVerification(ctx, user, plain, baseURL)
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, client string) (model.LoginResult, error) {
	if err := req.Validate(); err != nil {
		return model.LoginResult{}, model.NewValidationError(err)
	}

	blocked, err := s.limiter.LoginBlocked(ctx, client)
	if err != nil {
		return model.LoginResult{}, err
	}
	if blocked {
		return model.LoginResult{}, model.ErrTooManyRequests
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, err
	}

	hash := s.dummyHash
	if err == nil {
		hash = []byte(user.PasswordHash)
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil || cmpErr != nil {
		if regErr := s.limiter.RegisterLoginFailure(ctx, client); regErr != nil {
			slog.Warn("failed to record login failure", "error", regErr)
		}
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return model.LoginResult{}, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return model.LoginResult{}, err
	}

	if err := s.limiter.ResetLogin(ctx, client); err != nil {
		slog.Warn("failed to reset login failures", "error", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return model.LoginResult{User: user.Public(), TokenPair: pair}, nil
}

// Logout clears the stored refresh token. Repeating it is harmless.
func (s *AuthService) Logout(ctx context.Context, identity model.Identity) error {
	err := s.users.SetRefreshToken(ctx, identity.UserID, nil)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	return err
}

// RefreshAccessToken rotates the single stored refresh token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, presented string) (model.TokenPair, error) {
	if presented == "" {
		return model.TokenPair{}, model.ErrUnauthenticated
	}

	claims, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return model.TokenPair{}, model.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, model.ErrInvalidToken
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	stored := user.StoredRefreshToken()
	if stored == "" {
		return model.TokenPair{}, model.ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		slog.Warn("stale refresh token presented", "user_id", user.ID)
		return model.TokenPair{}, model.ErrTokenReused
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	swapped, err := s.users.SwapRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !swapped {
		return model.TokenPair{}, model.ErrTokenReused
	}

	return pair, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, identity model.Identity, req model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewValidationError(err)
	}

	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *AuthService) CurrentUser(ctx context.Context, identity model.Identity) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// ForgotPassword mails a reset link when the address is known and reports
// success either way.
func (s *AuthService) ForgotPassword(ctx context.Context, req model.EmailRequest, baseURL string) error {
	if err := req.Validate(); err != nil {
		return model.NewValidationError(err)
	}

	if err := s.cooldown(ctx, "reset:"+req.Email); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	plain, hash, expiry, err := s.tokens.IssueVerificationToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, hash, expiry); err != nil {
		return err
	}

	msg, err := mail.PasswordResetEmail(user.Email, displayName(user), baseURL+resetPath+plain, s.verifyTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}

// ResetPassword replaces the password and revokes the stored refresh token.
func (s *AuthService) ResetPassword(ctx context.Context, plain string, req model.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewValidationError(err)
	}
	if plain == "" {
		return model.ErrInvalidToken
	}

	user, err := s.users.FindByResetHash(ctx, token.HashToken(plain))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if user.ForgotPasswordExpiry != nil && s.now().After(*user.ForgotPasswordExpiry) {
		return model.ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

// Authenticate resolves the identity behind an access token. Every failure is ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return model.Identity{}, model.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Identity{}, model.ErrUnauthenticated
	}
	if err != nil {
		return model.Identity{}, err
	}

	return model.Identity{UserID: user.ID, Email: user.Email, Username: user.Username, Role: user.Role}, nil
}

func (s *AuthService) issuePair(user model.User) (model.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Role, user.Email, user.Username)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenType,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *AuthService) cooldown(ctx context.Context, key string) error {
	ok, err := s.limiter.AcquireCooldown(ctx, key, throttle.EmailCooldown)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrTooManyRequests
	}
	return nil
}

func displayName(user model.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	return user.Username
}
