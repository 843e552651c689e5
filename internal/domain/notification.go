package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	FarmID    *string    `json:"farm_id,omitempty" db:"farm_id"`
	FarmName  *string    `json:"farm_name,omitempty" db:"farm_name"`
	Category  Category   `json:"category" db:"category"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Category is the notification type as stored upstream. Values outside the
// constants below are valid and rank as general notifications.
type Category string

const (
	CategoryFertigationOverdue Category = "fertigation_overdue"
	CategoryFertigationDue     Category = "fertigation_due"
	CategoryHarvestOverdue     Category = "harvest_overdue"
	CategoryHarvestDue         Category = "harvest_due"
	CategoryHarvestApproaching Category = "harvest_approaching"
	CategoryDailyTask          Category = "daily_task"
	CategoryGeneral            Category = "general"
)

func (c Category) Contains(part string) bool {
	return strings.Contains(string(c), part)
}

func (c Category) IsHarvest() bool {
	return c.Contains("harvest")
}

func (c Category) IsFertigation() bool {
	return c.Contains("fertigation")
}

func (c Category) IsDue() bool {
	return c.Contains("_due") || c.Contains("_overdue")
}

// Scope selects whose notifications are listed: a user's notifications across
// all farms, or only those of one farm when FarmID is set.
type Scope struct {
	UserID uuid.UUID `json:"user_id"`
	FarmID string    `json:"farm_id,omitempty"`
}

func (s Scope) IsFarm() bool {
	return s.FarmID != ""
}

func (s Scope) Key() string {
	if s.FarmID == "" {
		return s.UserID.String()
	}
	return s.UserID.String() + ":" + s.FarmID
}

type SendNotificationInput struct {
	FarmID      string     `json:"farm_id"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	Category    Category   `json:"category"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	SendEmail   bool       `json:"send_email"`
}

func (in *SendNotificationInput) Normalize() {
	in.FarmID = strings.TrimSpace(in.FarmID)
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Category == "" {
		in.Category = CategoryGeneral
	}
}
