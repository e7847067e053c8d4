package model

import "time"

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ProjectMember struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemberDetail is a membership joined with its user and project.
type MemberDetail struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	User      UserSummary    `json:"user"`
	Project   ProjectSummary `json:"project"`
}

// ProjectListItem is a project as seen by one of its members.
type ProjectListItem struct {
	Project
	Members int  `json:"members"`
	Role    Role `json:"role"`
}
