package model

import "time"

// Roles recognised by RequireRole.
const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
)

// User represents an account as stored in the `users` table.  Customers
// book seats; staff additionally manage the catalog and read the
// dashboard.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (lower-cased)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role (CUSTOMER or STAFF)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
