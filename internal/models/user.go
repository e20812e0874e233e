package models

import (
	"fmt"
	"strings"
)

// UserRole describes what a field user is allowed to do.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleWorker UserRole = "worker"
)

var validUserRoles = map[UserRole]struct{}{
	RoleAdmin:  {},
	RoleWorker: {},
}

// User is the current field user. The core trusts Site and Email as-is;
// there is no authentication.
type User struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
	Site  string   `json:"site"`
}

// ParseUserRole validates a raw role string.
func ParseUserRole(raw string) (UserRole, error) {
	value := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("role is required")
	}
	if _, ok := validUserRoles[value]; !ok {
		return "", fmt.Errorf("invalid role: %s", value)
	}
	return value, nil
}

// Validate checks that every profile field is present.
func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := ParseUserRole(string(u.Role)); err != nil {
		return err
	}
	if strings.TrimSpace(u.Site) == "" {
		return fmt.Errorf("site is required")
	}
	return nil
}
