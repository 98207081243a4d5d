package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/certik/femhub-notebook/domain/core"
	"github.com/certik/femhub-notebook/internal/errors"
)

// AccountType classifies a notebook account
type AccountType string

const (
	AccountAdmin AccountType = "admin"
	AccountUser  AccountType = "user"
	AccountGuest AccountType = "guest"
)

// User represents a notebook account
type User struct {
	ID             core.UserID `json:"id" db:"id"`
	Username       string      `json:"username" db:"username"`
	PasswordHash   string      `json:"-" db:"password_hash"`
	Email          string      `json:"email" db:"email"`
	EmailConfirmed bool        `json:"email_confirmed" db:"email_confirmed"`
	AccountType    AccountType `json:"account_type" db:"account_type"`
	Suspended      bool        `json:"suspended" db:"suspended"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// New creates a user with the given username, password and account type.
// The password is stored as a bcrypt hash; an empty password leaves the
// account without a usable login (CheckPassword always fails).
func New(username, password, email string, accountType AccountType) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	switch accountType {
	case AccountAdmin, AccountUser, AccountGuest:
	default:
		return nil, errors.InvalidInput("unknown account type: " + string(accountType))
	}

	now := time.Now()
	u := &User{
		ID:          core.UserID(core.NewID()),
		Username:    username,
		Email:       email,
		AccountType: accountType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if password != "" {
		if err := u.SetPassword(password); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// ValidateUsername checks that a username contains only letters, digits,
// underscores, dots, @ signs and hyphens, and is not empty. Path separators
// are rejected because usernames name directories in the worksheet store.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.InvalidInput("username cannot be empty")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '@' || r == '-':
		default:
			return errors.InvalidInput("username contains illegal character: " + string(r))
		}
	}
	return nil
}

// SetPassword replaces the stored password hash
func (u *User) SetPassword(password string) error {
	if password == "" {
		return errors.InvalidInput("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// CheckPassword reports whether the given password matches the stored hash.
// Accounts without a hash never match, so empty passwords cannot log in.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsAdmin reports whether this is an admin account
func (u *User) IsAdmin() bool {
	return u.AccountType == AccountAdmin
}

// IsGuest reports whether this is a guest account
func (u *User) IsGuest() bool {
	return u.AccountType == AccountGuest
}

// SetSuspension toggles the suspended flag
func (u *User) SetSuspension() {
	u.Suspended = !u.Suspended
	u.UpdatedAt = time.Now()
}

// ConfirmEmail marks the account email as confirmed
func (u *User) ConfirmEmail() {
	u.EmailConfirmed = true
	u.UpdatedAt = time.Now()
}

// SetEmail replaces the account email and resets confirmation
func (u *User) SetEmail(email string) {
	u.Email = email
	u.EmailConfirmed = false
	u.UpdatedAt = time.Now()
}
