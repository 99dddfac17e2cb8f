package domain

import "time"

// EmployeeRole enumerates portal access levels.
type EmployeeRole string

const (
	EmployeeRoleEmployee EmployeeRole = "EMPLOYEE"
	EmployeeRoleManager  EmployeeRole = "MANAGER"
	EmployeeRoleAdmin    EmployeeRole = "ADMIN"
)

// Employee is a portal account that can raise and work tickets.
type Employee struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	Role         EmployeeRole `json:"role"`
	Department   string       `json:"department"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Ref returns the denormalized reference stored on tickets.
func (e *Employee) Ref() PersonRef {
	return PersonRef{UserID: e.ID, Name: e.Name}
}
