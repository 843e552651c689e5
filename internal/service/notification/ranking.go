package notification

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"farm-management/internal/domain"
)

// Priority ranks, lower is more urgent.
const (
	PriorityOverdue         = 1
	PriorityDue             = 2
	PriorityApproaching     = 3
	PriorityStaleDailyTask  = 4
	PriorityRecentDailyTask = 5
	PriorityGeneral         = 6
)

// UrgentPriority is the highest rank counted as urgent.
const UrgentPriority = PriorityDue

var dayCountPattern = regexp.MustCompile(`(\d+) days?`)

// View is a notification together with the fields derived from it. The derived
// fields are recomputed from the record on every fetch and never patched.
type View struct {
	domain.Notification
	Priority   int    `json:"priority"`
	DaysUntil  *int   `json:"days_until"`
	BadgeLabel string `json:"badge_label,omitempty"`
}

func Priority(category domain.Category, createdAt, now time.Time) int {
	switch category {
	case domain.CategoryFertigationOverdue, domain.CategoryHarvestOverdue:
		return PriorityOverdue
	case domain.CategoryFertigationDue, domain.CategoryHarvestDue:
		return PriorityDue
	case domain.CategoryHarvestApproaching:
		return PriorityApproaching
	case domain.CategoryDailyTask:
		if ageInDays(createdAt, now) > 1 {
			return PriorityStaleDailyTask
		}
		return PriorityRecentDailyTask
	default:
		return PriorityGeneral
	}
}

func ageInDays(createdAt, now time.Time) int {
	return int(math.Floor(now.Sub(createdAt).Hours() / 24))
}

// DaysUntil mines "<n> day(s)" out of harvest messages. Overdue harvests yield
// a negative count. Anything that does not match yields nil.
func DaysUntil(category domain.Category, message string) *int {
	if !category.IsHarvest() {
		return nil
	}

	match := dayCountPattern.FindStringSubmatch(message)
	if match == nil {
		return nil
	}

	days, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	if category == domain.CategoryHarvestOverdue {
		days = -days
	}
	return &days
}

func BadgeLabel(category domain.Category, priority int, daysUntil *int) string {
	switch category {
	case domain.CategoryFertigationOverdue, domain.CategoryHarvestOverdue:
		return "Overdue"
	case domain.CategoryFertigationDue, domain.CategoryHarvestDue:
		return "Due Now"
	case domain.CategoryHarvestApproaching:
		if daysUntil != nil {
			return fmt.Sprintf("%d days", *daysUntil)
		}
	}

	if priority <= PriorityStaleDailyTask {
		return "Task"
	}
	return ""
}

func Derive(n domain.Notification, now time.Time) View {
	priority := Priority(n.Category, n.CreatedAt, now)
	daysUntil := DaysUntil(n.Category, n.Message)

	return View{
		Notification: n,
		Priority:     priority,
		DaysUntil:    daysUntil,
		BadgeLabel:   BadgeLabel(n.Category, priority, daysUntil),
	}
}

// Rank derives every record and returns them in display order.
func Rank(records []domain.Notification, now time.Time) []View {
	views := make([]View, len(records))
	for i, n := range records {
		views[i] = Derive(n, now)
	}
	Sort(views)
	return views
}

// Sort orders views by priority, then newest first. Equal keys keep their
// input order.
func Sort(views []View) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Priority != views[j].Priority {
			return views[i].Priority < views[j].Priority
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}
