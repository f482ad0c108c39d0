package domain

import "time"

// User is a citizen or administrator account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the user's identifier.
func (u *User) Identity() string {
	return u.ID
}

// Summary returns the public projection attached to joined reads.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the owner/author/target projection used in admin listings.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// ProfileUpdate carries a partial profile edit; nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}
