package models

import "github.com/google/uuid"

// Identity is the resolved caller of an authenticated request. Exactly one
// variant applies: a session (cookie or bearer JWT) carries UserID and Email,
// an API key carries the validated key record itself.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Key    *APIKey
}

func SessionIdentity(userID uuid.UUID, email string) *Identity {
	return &Identity{UserID: userID, Email: email}
}

func APIKeyIdentity(key *APIKey) *Identity {
	return &Identity{UserID: key.UserID, Key: key}
}

func (i *Identity) IsAPIKey() bool {
	return i.Key != nil
}
