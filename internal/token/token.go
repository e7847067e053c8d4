package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-project-hub/internal/model"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"

	verificationBytes = 20
)

type Config struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
}

type accessClaims struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs access and refresh tokens and mints one-time verification tokens.
// It never persists anything.
type Issuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		verificationTTL: cfg.VerificationTTL,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the issuer's time source.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) IssueAccessToken(userID string, role model.Role, email string, username string) (string, error) {
	now := i.now()
	claims := accessClaims{
		Role:     role.String(),
		Email:    email,
		Username: username,
		Type:     typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	now := i.now()
	claims := refreshClaims{
		Type: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// IssueVerificationToken returns the plaintext for the email, the hash to persist, and its expiry.
func (i *Issuer) IssueVerificationToken() (string, string, time.Time, error) {
	buf := make([]byte, verificationBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate verification token: %w", err)
	}

	plain := hex.EncodeToString(buf)
	return plain, HashToken(plain), i.now().Add(i.verificationTTL), nil
}

func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func (i *Issuer) VerifyAccessToken(raw string) (model.AccessClaims, error) {
	var claims accessClaims
	if err := i.parse(raw, &claims, i.accessSecret); err != nil {
		return model.AccessClaims{}, err
	}
	if claims.Type != typeAccess || claims.Subject == "" {
		return model.AccessClaims{}, model.ErrInvalidToken
	}

	return model.AccessClaims{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Role:     model.Role(claims.Role),
		TokenID:  claims.ID,
	}, nil
}

func (i *Issuer) VerifyRefreshToken(raw string) (model.RefreshClaims, error) {
	var claims refreshClaims
	if err := i.parse(raw, &claims, i.refreshSecret); err != nil {
		return model.RefreshClaims{}, err
	}
	if claims.Type != typeRefresh || claims.Subject == "" {
		return model.RefreshClaims{}, model.ErrInvalidToken
	}

	return model.RefreshClaims{UserID: claims.Subject, TokenID: claims.ID}, nil
}

func (i *Issuer) parse(raw string, claims jwt.Claims, secret []byte) error {
	if raw == "" {
		return model.ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return model.ErrInvalidToken
	}
	return nil
}
