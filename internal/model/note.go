package model

import "time"

type ProjectNote struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NoteDetail struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Project   ProjectSummary `json:"project"`
	CreatedBy UserSummary    `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
