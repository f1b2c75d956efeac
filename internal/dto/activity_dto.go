package dto

import (
	"time"

	"github.com/campushub/portal-api/internal/models"
)

// ActivityResponse is the API representation of one audit entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewActivityResponse maps an activity log model onto its response DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// ActivityListRequest filters and paginates the activity feed.
type ActivityListRequest struct {
	Page       int `validate:"omitempty,min=1"`
	PageSize   int `validate:"omitempty,min=1,max=100"`
	ActorID    *uint
	Action     string
	EntityType string
}

// ActivityListResponse is a page of audit entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	TotalItems int64              `json:"total_items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}
