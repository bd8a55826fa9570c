package authroles

import (
	"strings"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
)

// AliasRoleMapper maps backend role strings to application roles.
// Aliases are matched case-insensitively before falling back to ParseRole,
// so deployments whose backend reports e.g. "Administrator" can still reach the admin views.
type AliasRoleMapper struct {
	Aliases map[string]string
}

// NewAliasRoleMapper normalises alias keys and targets.
func NewAliasRoleMapper(aliases map[string]string) AliasRoleMapper {
	norm := make(map[string]string, len(aliases))
	for k, v := range aliases {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		norm[key] = strings.ToLower(strings.TrimSpace(v))
	}
	return AliasRoleMapper{Aliases: norm}
}

func (m AliasRoleMapper) Map(raw string) domainauth.Role {
	key := strings.ToLower(strings.TrimSpace(raw))
	if target, ok := m.Aliases[key]; ok && target != "" {
		return domainauth.ParseRole(target)
	}
	return domainauth.ParseRole(raw)
}
