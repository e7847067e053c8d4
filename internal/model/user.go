package model

import "time"

type Avatar struct {
	URL       string `json:"url"`
	LocalPath string `json:"localPath"`
}

// User is the persisted credential record. Secret fields never leave the server.
type User struct {
	ID                         string     `json:"id"`
	Email                      string     `json:"email"`
	Username                   string     `json:"username"`
	FullName                   string     `json:"fullName"`
	Avatar                     *Avatar    `json:"avatar,omitempty"`
	PasswordHash               string     `json:"-"`
	Role                       Role       `json:"role"`
	IsEmailVerified            bool       `json:"isEmailVerified"`
	EmailVerificationTokenHash *string    `json:"-"`
	EmailVerificationExpiry    *time.Time `json:"-"`
	ForgotPasswordTokenHash    *string    `json:"-"`
	ForgotPasswordExpiry       *time.Time `json:"-"`
	RefreshToken               *string    `json:"-"`
	CreatedAt                  time.Time  `json:"createdAt"`
	UpdatedAt                  time.Time  `json:"updatedAt"`
}

// PublicUser is the sanitised view of a user returned to clients.
type PublicUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullName"`
	Avatar          *Avatar   `json:"avatar,omitempty"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FullName:        u.FullName,
		Avatar:          u.Avatar,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// StoredRefreshToken returns the value in the single refresh-token slot, or "" when empty.
func (u User) StoredRefreshToken() string {
	if u.RefreshToken == nil {
		return ""
	}
	return *u.RefreshToken
}

// UserSummary is the joined projection used inside project, task and note listings.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Identity is the acting user resolved by the authorization gate for a single request.
type Identity struct {
	UserID   string
	Email    string
	Username string
	Role     Role
}

type AccessClaims struct {
	UserID   string
	Email    string
	Username string
	Role     Role
	TokenID  string
}

type RefreshClaims struct {
	UserID  string
	TokenID string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type LoginResult struct {
	User PublicUser `json:"user"`
	TokenPair
}
