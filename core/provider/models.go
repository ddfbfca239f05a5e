package provider

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleSpecialist = "specialist"
	RoleSEA        = "sea"
)

var AllRoles = []string{RoleAdmin, RoleSpecialist, RoleSEA}

// Provider is a staff member who owns or delivers service sessions: a
// specialist (owns a caseload), a SEA (delivers delegated sessions) or an
// admin.
type Provider struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`

	// tenant scope
	SchoolID   null.String `json:"school_id"`
	DistrictID null.String `json:"district_id"`
	StateID    null.String `json:"state_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Provider) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Provider) IsSpecialist() bool { return p.Role == RoleSpecialist }
func (p Provider) IsSEA() bool        { return p.Role == RoleSEA }

// NewProvider contains the information needed to register a new Provider.
type NewProvider struct {
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Role       string      `json:"role" validate:"required,oneof=admin specialist sea"`
	SchoolID   null.String `json:"school_id"`
	DistrictID null.String `json:"district_id"`
	StateID    null.String `json:"state_id"`
}
