// Package view maps session roles to the screens they may open.
// Every function is pure; the role table below is the single source of
// authorization for navigation.
package view

import (
	"slices"

	domainauth "github.com/target/siperu-booking/internal/domain/auth"
)

// ID names a screen within the application.
type ID string

const (
	Login          ID = "login"
	Overview       ID = "overview"
	NewBooking     ID = "new-booking"
	History        ID = "history"
	AdminDashboard ID = "admin-dashboard"
	Approvals      ID = "approvals"
	Assets         ID = "assets"
	Users          ID = "users"
)

// MenuItem is a navigation entry shown for a role.
type MenuItem struct {
	ID      ID
	Label   string
	Section string
}

// Menus are role-exclusive and listed in display order; the first entry is the landing view.
var menus = map[domainauth.Role][]MenuItem{
	domainauth.RoleUser: {
		{ID: Overview, Label: "Dashboard", Section: "Main"},
		{ID: NewBooking, Label: "New Booking", Section: "Main"},
		{ID: History, Label: "Booking History", Section: "Main"},
	},
	domainauth.RoleAdmin: {
		{ID: AdminDashboard, Label: "Analytics", Section: "Admin"},
		{ID: Approvals, Label: "Approvals", Section: "Admin"},
		{ID: Assets, Label: "Assets", Section: "Admin"},
		{ID: Users, Label: "Users", Section: "Admin"},
	},
}

var known = []ID{Login, Overview, NewBooking, History, AdminDashboard, Approvals, Assets, Users}

// ParseID returns the view for s if it names a known screen.
func ParseID(s string) (ID, bool) {
	id := ID(s)
	return id, slices.Contains(known, id)
}

// Menu returns a copy of the navigation entries for role. Unknown roles get none.
func Menu(role domainauth.Role) []MenuItem {
	return slices.Clone(menus[role])
}

// AllowedViews returns the views role may navigate to, in menu order.
func AllowedViews(role domainauth.Role) []ID {
	items := menus[role]
	ids := make([]ID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// DefaultView returns the landing view for role, or Login for an unknown role.
func DefaultView(role domainauth.Role) ID {
	items := menus[role]
	if len(items) == 0 {
		return Login
	}
	return items[0].ID
}

// CanNavigate reports whether target is in role's allowed set.
func CanNavigate(role domainauth.Role, target ID) bool {
	return slices.ContainsFunc(menus[role], func(it MenuItem) bool { return it.ID == target })
}

// Navigate returns requested when role may open it and the role's default view otherwise.
func Navigate(role domainauth.Role, requested ID) ID {
	if CanNavigate(role, requested) {
		return requested
	}
	return DefaultView(role)
}

// Resolve routes a request against the current session state.
// Anything short of an authenticated session lands on Login.
func Resolve(state domainauth.State, requested ID) ID {
	if !state.IsAuthenticated() {
		return Login
	}
	return Navigate(state.Principal.Role, requested)
}
