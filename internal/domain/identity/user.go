package identity

import (
	"regexp"
	"strings"

	"github.com/charro/storefront/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the authorisation level of a user
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClient    Role = "client"
	RoleSuperUser Role = "super-user"
	RoleSEO       Role = "SEO"
)

// ValidRoles lists every assignable role
var ValidRoles = []Role{RoleAdmin, RoleClient, RoleSuperUser, RoleSEO}

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// IsBackOffice reports whether the role may use the admin API
func (r Role) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleSuperUser || r == RoleSEO
}

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex = regexp.MustCompile(`[a-zA-Z]`)
)

// User represents a storefront account
// It is the aggregate root for user-related operations
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
}

// NewUser creates a new client account
func NewUser(name, email, password string) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             NormalizeEmail(email),
		PasswordHash:      passwordHash,
		Role:              RoleClient,
		Active:            true,
	}, nil
}

// SetRole changes the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be one of admin, client, super-user, SEO")
	}
	u.Role = role
	u.IncrementVersion()
	return nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	passwordHash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.IncrementVersion()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Deactivate blocks future logins
func (u *User) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.Active = false
	u.IncrementVersion()
	return nil
}

// Activate re-enables a deactivated user
func (u *User) Activate() error {
	if u.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Active = true
	u.IncrementVersion()
	return nil
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	return u.Active
}

// IsAdmin returns true if the user may use the admin API
func (u *User) IsAdmin() bool {
	return u.Role.IsBackOffice()
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return shared.NewDomainError("INVALID_NAME", "Name must be at least 2 characters")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
