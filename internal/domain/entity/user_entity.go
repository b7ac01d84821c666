package entity

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Expiring is an issued credential value paired with its deadline.
// The value is logically absent once the deadline passes, even while the
// string is still stored.
type Expiring struct {
	Value     string
	ExpiresAt time.Time
}

// IsValid reports whether the value is present and now is before the deadline.
func (e Expiring) IsValid(now time.Time) bool {
	return e.Value != "" && now.Before(e.ExpiresAt)
}

// IsZero reports whether nothing is currently issued.
func (e Expiring) IsZero() bool {
	return e.Value == ""
}

// User is the aggregate root for the account domain
// Passwords are stored as bcrypt hashes in PasswordHash
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	DateOfBirth  time.Time
	Gender       Gender

	IsEmailConfirmed bool
	// EmailConfirmation holds the pending code; cleared once confirmed.
	EmailConfirmation Expiring
	// RefreshToken is the single active refresh token of the user.
	RefreshToken Expiring

	// Version is bumped by the store on every successful save.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IssueConfirmationCode replaces any pending code.
func (u *User) IssueConfirmationCode(code string, expiresAt time.Time) {
	u.EmailConfirmation = Expiring{Value: code, ExpiresAt: expiresAt}
}

// ConfirmEmail marks the address confirmed and clears the pending code.
func (u *User) ConfirmEmail() {
	u.IsEmailConfirmed = true
	u.EmailConfirmation = Expiring{}
}

// RotateRefreshToken overwrites the active refresh token.
func (u *User) RotateRefreshToken(token string, expiresAt time.Time) {
	u.RefreshToken = Expiring{Value: token, ExpiresAt: expiresAt}
}

// RevokeRefreshToken clears the refresh token and pins its expiry to now.
func (u *User) RevokeRefreshToken(now time.Time) {
	u.RefreshToken = Expiring{ExpiresAt: now}
}

// Profile is the public view of a user, without credential fields.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      Gender    `json:"gender"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
	}
}
