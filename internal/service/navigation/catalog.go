package navigation

import (
	"strings"

	"farm-management/internal/domain"
)

type visibility func(domain.Role) bool

func plainAdmin(r domain.Role) bool { return r == domain.RoleAdmin }
func superuser(r domain.Role) bool  { return r == domain.RoleSuperuser }
func anyAdmin(r domain.Role) bool   { return r.IsAdministrative() }
func always(domain.Role) bool       { return true }

type item struct {
	label   string
	target  string
	visible visibility
}

const farmIDPlaceholder = "{farmId}"

// farmCatalog is what a farm user sees while working inside one farm.
var farmCatalog = []item{
	{"Dashboard", "/farm/{farmId}/dashboard", always},
	{"Daily Tasks", "/farm/{farmId}/daily-tasks", always},
	{"Crop Stages", "/farm/{farmId}/crop-stages", always},
	{"Plant Disease Prediction", "/farm/{farmId}/plant-disease-prediction", always},
	{"Calendar", "/farm/{farmId}/calendar", always},
	{"Spray Schedule", "/farm/{farmId}/spray-schedules", always},
	{"Fertigation", "/farm/{farmId}/fertigations", always},
	{"Worker Tasks", "/farm/{farmId}/worker-tasks", always},
	{"Issue Reports", "/farm/{farmId}/issue-reports", always},
	{"Expenditures", "/farm/{farmId}/expenditures", always},
	{"Sales", "/farm/{farmId}/sales", always},
	{"Notifications", "/farm/{farmId}/notifications", always},
}

var generalCatalog = []item{
	{"Dashboard", "/dashboard", always},
	{"My Farms", "/my-farms", always},
	{"Calendar", "/calendar", always},
	{"Notifications", "/notifications", always},
	{"Profile", "/profile", always},
}

var adminCatalog = []item{
	{"Dashboard", "/dashboard", anyAdmin},
	{"Smart Calendar", "/calendar", anyAdmin},
	{"Daily Tasks", "/daily-tasks", plainAdmin},
	{"Crop Stage", "/crop-stage", plainAdmin},
	{"Spray Schedule", "/spray-schedule", plainAdmin},
	{"Fertigation", "/fertigation", plainAdmin},
	{"Worker Tasks", "/worker-tasks", plainAdmin},
	{"Issue Reports", "/issue-reports", plainAdmin},
	{"Expenditure", "/expenditure", plainAdmin},
	{"Sale Stage", "/sale-stage", plainAdmin},
	{"Farm Notifications", "/farm-notifications", plainAdmin},
	{"Admin Notifications", "/notifications", plainAdmin},
	{"Send Notifications", "/admin/notification-manager", plainAdmin},
	{"User Management", "/user-management", superuser},
	{"Farm User Management", "/farm-user-management", plainAdmin},
	{"Create Farm", "/create-farm", plainAdmin},
	{"Create Farm User", "/create-user", plainAdmin},
	{"All Farms", "/farms", anyAdmin},
	{"My Farms", "/my-farms", plainAdmin},
}

// Evaluate runs the catalog for role and route, returning every entry of the
// selected catalog with Visible computed. An unknown role yields nothing.
func Evaluate(role domain.Role, route domain.Route) []domain.NavEntry {
	var catalog []item
	switch {
	case role == domain.RoleFarmUser && route.InFarmScope:
		catalog = farmCatalog
	case role == domain.RoleFarmUser:
		catalog = generalCatalog
	case role.IsAdministrative():
		catalog = adminCatalog
	default:
		return []domain.NavEntry{}
	}

	entries := make([]domain.NavEntry, 0, len(catalog))
	for _, it := range catalog {
		target := strings.ReplaceAll(it.target, farmIDPlaceholder, route.FarmID)
		entries = append(entries, domain.NavEntry{
			Label:   it.label,
			Target:  target,
			Visible: it.visible(role),
			Active:  target == route.Path,
		})
	}
	return entries
}

// Resolve returns the visible entries for role and route in catalog order.
func Resolve(role domain.Role, route domain.Route) []domain.NavEntry {
	all := Evaluate(role, route)
	visible := make([]domain.NavEntry, 0, len(all))
	for _, e := range all {
		if e.Visible {
			visible = append(visible, e)
		}
	}
	return visible
}
