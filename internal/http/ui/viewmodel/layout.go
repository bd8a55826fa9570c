package viewmodel

import "time"

// User represents the signed-in user as exposed to templates.
type User struct {
	ID          string
	Name        string
	Email       string
	Role        string
	DisplayName string
	Initials    string
	MemberSince time.Time
}

// Layout captures shared chrome metadata (titles, theme, auth flags).
// Page names the content template rendered inside the layout.
// MetaRefresh, when set, is the content of a meta refresh tag ("2;url=/login").
type Layout struct {
	Title           string
	Page            string
	Theme           string
	CSRFToken       string
	MetaRefresh     string
	IsAuthenticated bool
	User            *User
}

// LayoutData implements LayoutProvider.
func (l *Layout) LayoutData() *Layout { return l }

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}

// NavLink is a navigation entry with its active state resolved for the current sub-path.
type NavLink struct {
	Label  string
	Href   string
	Path   string
	Icon   string
	Active bool
}

// Shell is the data behind the authenticated portal page.
type Shell struct {
	Layout
	Nav       []NavLink
	SubPath   string
	View      string
	ViewTitle string
	NotFound  bool
	Enriching bool
}

// UserCard is the data behind the header user card partial.
type UserCard struct {
	User      *User
	Enriching bool
}

// AuthForm is the data behind the login, forgot-password and reset-password views.
type AuthForm struct {
	Layout
	Action         string
	Email          string
	EmailLocked    bool
	Error          string
	Success        string
	SubmitDisabled bool
	RedirectTo     string
}

// ErrorPage is the data behind the 404 and 500 pages.
type ErrorPage struct {
	Layout
	Code    string
	Heading string
	Message string
}
