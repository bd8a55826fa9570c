package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payassure/payassure-web/internal/domain/auth"
)

func TestNormalizeSubPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "mount root", in: "/app", want: "dashboard"},
		{name: "mount root slash", in: "/app/", want: "dashboard"},
		{name: "simple", in: "/app/policies", want: "policies"},
		{name: "trailing slash", in: "/app/policies/", want: "policies"},
		{name: "nested", in: "/app/policies/123/", want: "policies/123"},
		{name: "double slashes", in: "/app//claims//", want: "claims"},
		{name: "prefix only at boundary", in: "/apples", want: "apples"},
		{name: "no prefix", in: "/profile", want: "profile"},
		{name: "empty", in: "", want: "dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSubPath(tt.in))
		})
	}
}

func TestTable_LookupUnknownRole(t *testing.T) {
	table := DefaultTable()
	cfg := table.Lookup(auth.Role("auditor"))
	assert.Empty(t, cfg.Nav)
	assert.Empty(t, cfg.Routes)

	_, ok := cfg.Resolve("dashboard")
	assert.False(t, ok)

	var nilTable Table
	assert.Empty(t, nilTable.Lookup(auth.RoleAdmin).Nav)
}

func TestDefaultTable_RoleRoutes(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		role  auth.Role
		paths []string
	}{
		{auth.RoleAdmin, []string{"dashboard", "customers", "insurers", "policies", "payments", "profile"}},
		{auth.RoleCustomer, []string{"dashboard", "policies", "payments", "claims", "profile"}},
		{auth.RoleInsurer, []string{"dashboard", "policies", "customers", "claims", "profile"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			cfg := table.Lookup(tt.role)
			require.Len(t, cfg.Nav, len(tt.paths))
			for i, p := range tt.paths {
				assert.Equal(t, p, cfg.Nav[i].Path)
				v, ok := cfg.Resolve(p)
				require.True(t, ok, p)
				assert.Equal(t, string(tt.role)+"-"+p, v.Template)
			}
			assert.Len(t, cfg.Routes, len(tt.paths))
		})
	}

	_, ok := table.Lookup(auth.RoleCustomer).Resolve("insurers")
	assert.False(t, ok, "customers must not see the insurers view")
}

func TestDefaultTable_FreshCopy(t *testing.T) {
	a := DefaultTable()
	a[auth.RoleAdmin].Routes["dashboard"] = View{Path: "hijacked"}

	b := DefaultTable()
	v, ok := b.Lookup(auth.RoleAdmin).Resolve("dashboard")
	require.True(t, ok)
	assert.Equal(t, "dashboard", v.Path)
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		in       string
		sub      string
		location string
	}{
		{"payments", "payments", "/app/payments"},
		{"/payments", "payments", "/app/payments"},
		{"//claims/", "claims", "/app/claims"},
		{"", "dashboard", "/app/dashboard"},
		{"/", "dashboard", "/app/dashboard"},
		{"../../admin", "admin", "/app/admin"},
		{"policies/./42", "policies/42", "/app/policies/42"},
	}
	for _, tt := range tests {
		sub, loc := Navigate(tt.in)
		assert.Equal(t, tt.sub, sub, tt.in)
		assert.Equal(t, tt.location, loc, tt.in)
	}
}

func TestNavItem_Href(t *testing.T) {
	assert.Equal(t, "/app/claims", NavItem{Path: "claims"}.Href())
}
