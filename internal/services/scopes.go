package services

import "github.com/guplink/guplink-api/internal/models"

// CheckScope decides whether an identity may perform an operation requiring
// the given scope. Sessions imply full owner access and always pass; API-key
// identities answer through the key's own scope grant.
func CheckScope(identity *models.Identity, scope string) bool {
	if identity == nil {
		return false
	}
	if !identity.IsAPIKey() {
		return true
	}
	return identity.Key.HasScope(scope)
}
