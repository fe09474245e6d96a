package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the access level baked into a bearer token at issuance.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Address is a postal address, stored inline on users and copied onto orders.
type Address struct {
	House   string `json:"house"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// User represents a registered customer.
type User struct {
	BaseModel
	Name             string     `gorm:"not null" json:"name"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Mobile           string     `json:"mobile,omitempty"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Address          Address    `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

// Admin is a back-office identity with its own credential record.
type Admin struct {
	BaseModel
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// OwnerSummary is the slice of a user exposed next to orders in admin listings.
type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
