// Package access decides where a visitor lands when opening a page of the
// web front end, based on their role.
package access

import (
	"net/url"
	"strings"

	"grocery/internal/models"
)

// LoginPath is the page guests are sent to for protected areas.
const LoginPath = "/auth/login"

var publicPrefixes = []string{"/auth/login", "/auth/register", "/auth/callback"}

// Consumer pages that need a logged-in consumer. Every other /consumer page
// is open to guests.
var consumerOnly = []string{"/consumer/profile", "/consumer/checkout"}

var roleAreas = map[string]models.Role{
	"/admin":      models.RoleAdmin,
	"/shop-owner": models.RoleShopOwner,
	"/delivery":   models.RoleDeliveryPartner,
}

// DashboardPath returns the landing page of a role.
func DashboardPath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleShopOwner:
		return "/shop-owner"
	case models.RoleDeliveryPartner:
		return "/delivery"
	default:
		return "/consumer"
	}
}

// Decision is the outcome of Resolve. Redirect is empty when the page may be
// shown as requested.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

func allow() Decision { return Decision{Allowed: true} }

func redirect(to string) Decision { return Decision{Redirect: to} }

func loginRedirect(path string) Decision {
	return redirect(LoginPath + "?redirect=" + url.QueryEscape(path))
}

// Resolve applies the role rules to path for user, which is nil for guests.
func Resolve(path string, user *models.User) Decision {
	if path == "" {
		path = "/"
	}
	if path == "/" || hasAnyPrefix(path, publicPrefixes) {
		return allow()
	}

	if hasPrefix(path, "/consumer") {
		if !hasAnyPrefix(path, consumerOnly) {
			return allow()
		}
		if user == nil {
			return loginRedirect(path)
		}
		if user.Role != models.RoleConsumer {
			return redirect(DashboardPath(user.Role))
		}
		return allow()
	}

	for prefix, role := range roleAreas {
		if !hasPrefix(path, prefix) {
			continue
		}
		if user == nil {
			return loginRedirect(path)
		}
		if user.Role != role {
			return redirect(DashboardPath(user.Role))
		}
		return allow()
	}
	return allow()
}

// hasPrefix matches whole path segments, so "/admin" does not cover
// "/administrators".
func hasPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}
