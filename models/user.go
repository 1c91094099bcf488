package models

import "time"

const DefaultUserRole = "user"

// User is the public profile of an account. Credentials never leave the
// store through this type.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	UserName        string    `json:"userName"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfilePhotoURL string    `json:"profilePhotoUrl"`
	Role            string    `json:"role"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

var (
	UserEmail     = Aliases{"email"}
	UserName      = Aliases{"userName"}
	UserFirstName = Aliases{"firstName"}
	UserLastName  = Aliases{"lastName"}
	UserPhotoURL  = Aliases{"profilePhotoUrl"}
	UserRole      = Aliases{"role"}
	UserIsActive  = Aliases{"isActive"}
)

// UserProtectedKeys can never be written through a profile update.
var UserProtectedKeys = []string{"password", KeyInternalID, KeyID, KeyCreatedAt, "profilePhoto"}

// NormalizeUser converts a raw user document into its public profile. Users
// are addressed by their internal id.
func NormalizeUser(raw RawRecord) User {
	u := User{
		Role:      DefaultUserRole,
		IsActive:  true,
		CreatedAt: raw.timestamp(KeyCreatedAt),
		UpdatedAt: raw.timestamp(KeyUpdatedAt),
	}
	u.ID, _ = ToText(raw[KeyInternalID])
	if u.ID == "" {
		u.ID, _ = ToText(raw[KeyID])
	}
	u.Email, _ = raw.text(UserEmail)
	u.UserName, _ = raw.text(UserName)
	u.FirstName, _ = raw.text(UserFirstName)
	u.LastName, _ = raw.text(UserLastName)
	u.ProfilePhotoURL, _ = raw.text(UserPhotoURL)

	if s, ok := raw.text(UserRole); ok {
		u.Role = s
	}
	if b, ok := raw.flag(UserIsActive); ok {
		u.IsActive = b
	}
	return u
}

// ProfileFields lists the keys a profile update may set.
func ProfileFields() []string {
	var keys []string
	for _, field := range []Aliases{UserEmail, UserName, UserFirstName, UserLastName, UserPhotoURL, UserRole, UserIsActive} {
		keys = append(keys, field...)
	}
	return keys
}
