// Package shell holds the role-aware navigation model of the authenticated portal.
package shell

import (
	"path"
	"strings"

	"github.com/payassure/payassure-web/internal/domain/auth"
)

// MountPrefix is the URL prefix under which the session shell is served.
const MountPrefix = "/app"

// DefaultSubPath is used whenever the sub-path is empty.
const DefaultSubPath = "dashboard"

// NavItem is a single entry in a role's navigation menu.
type NavItem struct {
	Label string
	Path  string
	Icon  string
}

// Href returns the absolute portal location of the entry.
func (n NavItem) Href() string {
	return MountPrefix + "/" + n.Path
}

// View identifies the content rendered for a sub-path.
type View struct {
	Path     string
	Title    string
	Template string
}

// RoleConfig is the navigation menu and route map for one role.
// The zero value has no navigation and no routes.
type RoleConfig struct {
	Nav    []NavItem
	Routes map[string]View
}

// Resolve returns the view registered for subPath.
func (c RoleConfig) Resolve(subPath string) (View, bool) {
	v, ok := c.Routes[subPath]
	return v, ok
}

// Table maps each role to its RoleConfig.
type Table map[auth.Role]RoleConfig

// Lookup returns the config for role, or an empty RoleConfig when the role is unknown.
func (t Table) Lookup(role auth.Role) RoleConfig {
	if t == nil {
		return RoleConfig{}
	}
	return t[role]
}

type page struct {
	path, label, icon string
}

var (
	pageDashboard = page{"dashboard", "Dashboard", "home"}
	pageCustomers = page{"customers", "Customers", "users"}
	pageInsurers  = page{"insurers", "Insurers", "shield"}
	pagePolicies  = page{"policies", "Policies", "file-text"}
	pagePayments  = page{"payments", "Payments", "credit-card"}
	pageClaims    = page{"claims", "Claims", "clipboard"}
	pageProfile   = page{"profile", "Profile", "user"}
)

func buildRoleConfig(role auth.Role, pages ...page) RoleConfig {
	cfg := RoleConfig{
		Nav:    make([]NavItem, 0, len(pages)),
		Routes: make(map[string]View, len(pages)),
	}
	for _, p := range pages {
		cfg.Nav = append(cfg.Nav, NavItem{Label: p.label, Path: p.path, Icon: p.icon})
		cfg.Routes[p.path] = View{
			Path:     p.path,
			Title:    p.label,
			Template: string(role) + "-" + p.path,
		}
	}
	return cfg
}

// DefaultTable returns a fresh copy of the portal's role route table.
func DefaultTable() Table {
	return Table{
		auth.RoleAdmin: buildRoleConfig(auth.RoleAdmin,
			pageDashboard, pageCustomers, pageInsurers, pagePolicies, pagePayments, pageProfile),
		auth.RoleCustomer: buildRoleConfig(auth.RoleCustomer,
			pageDashboard, pagePolicies, pagePayments, pageClaims, pageProfile),
		auth.RoleInsurer: buildRoleConfig(auth.RoleInsurer,
			pageDashboard, pagePolicies, pageCustomers, pageClaims, pageProfile),
	}
}

// NormalizeSubPath derives the shell sub-path from a full request path.
// The mount prefix is stripped only at a segment boundary.
func NormalizeSubPath(fullPath string) string {
	p := fullPath
	if p == MountPrefix || strings.HasPrefix(p, MountPrefix+"/") {
		p = p[len(MountPrefix):]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return DefaultSubPath
	}
	return p
}

// Navigate normalises a navigation target and returns the sub-path together with
// the absolute location to redirect to. Dot segments cannot climb out of the mount.
func Navigate(target string) (subPath, location string) {
	subPath = strings.Trim(path.Clean("/"+strings.TrimSpace(target)), "/")
	if subPath == "" {
		subPath = DefaultSubPath
	}
	return subPath, MountPrefix + "/" + subPath
}
