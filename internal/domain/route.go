package domain

import "strings"

// Route is the navigation context derived from the URL the client is showing.
type Route struct {
	FarmID      string `json:"farm_id,omitempty"`
	Path        string `json:"path"`
	InFarmScope bool   `json:"in_farm_scope"`
}

// ParseRoute builds a Route from the current path and an optional explicit farm
// id. When farmID is empty it is taken from a /farm/{id}/... path.
func ParseRoute(path, farmID string) Route {
	if path == "" {
		path = "/"
	}

	if farmID == "" {
		farmID = farmIDFromPath(path)
	}

	return Route{
		FarmID:      farmID,
		Path:        path,
		InFarmScope: farmID != "" && strings.HasPrefix(path, FarmPathPrefix(farmID)),
	}
}

func FarmPathPrefix(farmID string) string {
	return "/farm/" + farmID + "/"
}

func farmIDFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/farm/")
	if !ok {
		return ""
	}
	id, _, found := strings.Cut(rest, "/")
	if !found {
		return ""
	}
	return id
}

type NavEntry struct {
	Label   string `json:"label"`
	Target  string `json:"target"`
	Visible bool   `json:"visible"`
	Active  bool   `json:"active"`
}
