package models

import (
	"slices"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleSales    Role = "SALES"
	RoleEmployee Role = "EMPLOYEE"
)

// Roles lists every known role. There is no hierarchy between them
var Roles = []Role{RoleAdmin, RoleManager, RoleSales, RoleEmployee}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

type Employee struct {
	ID           int64
	CreatedAt    time.Time
	FullName     string
	Email        string
	Phone        string
	Role         Role
	PasswordHash string
}

// Identity is what an access token proves about its bearer
type Identity struct {
	EmployeeID int64
	Email      string
	Role       Role
}

func (e Employee) Identity() Identity {
	return Identity{EmployeeID: e.ID, Email: e.Email, Role: e.Role}
}
