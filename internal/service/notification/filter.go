package notification

import (
	"errors"

	"farm-management/internal/domain"
)

var ErrUnknownFilter = errors.New("unknown notification filter")

type Filter string

const (
	FilterAll         Filter = "all"
	FilterUnread      Filter = "unread"
	FilterDue         Filter = "due"
	FilterFertigation Filter = "fertigation"
	FilterHarvest     Filter = "harvest"
	FilterTasks       Filter = "tasks"
)

// Filters lists the filter keys in tab order.
var Filters = []Filter{FilterAll, FilterUnread, FilterDue, FilterFertigation, FilterHarvest, FilterTasks}

func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrUnknownFilter
}

func (f Filter) Match(v View) bool {
	switch f {
	case FilterUnread:
		return !v.IsRead
	case FilterDue:
		return v.Category.IsDue()
	case FilterFertigation:
		return v.Category.IsFertigation()
	case FilterHarvest:
		return v.Category.IsHarvest()
	case FilterTasks:
		return v.Category == domain.CategoryDailyTask
	default:
		return true
	}
}

// Apply returns the views matching f in their existing order.
func Apply(views []View, f Filter) []View {
	out := make([]View, 0, len(views))
	for _, v := range views {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

type Counts struct {
	All         int `json:"all"`
	Unread      int `json:"unread"`
	Due         int `json:"due"`
	Fertigation int `json:"fertigation"`
	Harvest     int `json:"harvest"`
	Tasks       int `json:"tasks"`
	Urgent      int `json:"urgent"`
}

func (c Counts) For(f Filter) int {
	switch f {
	case FilterUnread:
		return c.Unread
	case FilterDue:
		return c.Due
	case FilterFertigation:
		return c.Fertigation
	case FilterHarvest:
		return c.Harvest
	case FilterTasks:
		return c.Tasks
	default:
		return c.All
	}
}

// Count sizes every filter tab. The due badge only counts unread items, so it
// can be smaller than the due filter's result.
func Count(views []View) Counts {
	c := Counts{All: len(views)}
	for _, v := range views {
		if FilterUnread.Match(v) {
			c.Unread++
		}
		if FilterDue.Match(v) && !v.IsRead {
			c.Due++
		}
		if FilterFertigation.Match(v) {
			c.Fertigation++
		}
		if FilterHarvest.Match(v) {
			c.Harvest++
		}
		if FilterTasks.Match(v) {
			c.Tasks++
		}
		if v.Priority <= UrgentPriority {
			c.Urgent++
		}
	}
	return c
}
