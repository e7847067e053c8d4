package model

import "time"

type ActivityEntry struct {
	ID         int64          `json:"id"`
	ProjectID  string         `json:"projectId"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	SubjectID  string         `json:"subjectId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

type ActivityQuery struct {
	ProjectID string
	Action    string
	Page      int
	Limit     int
}

type ActivityListData struct {
	Items []ActivityEntry `json:"items"`
}
