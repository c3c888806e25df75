package association

import "strings"

// Role classifies an association member by its exposure type.
type Role string

const (
	// RoleScience marks a science target exposure.
	RoleScience Role = "science"
	// RolePSF marks a PSF reference exposure used for normalization.
	RolePSF Role = "psf"
	// RoleUnknown covers every exposure type the pipeline does not
	// aggregate. Such members are still analyzed individually.
	RoleUnknown Role = "unknown"
)

// ParseRole maps an exposure type string onto a Role. Matching is
// case-insensitive; "reference" is accepted as an alias for the PSF role.
func ParseRole(exptype string) Role {
	switch strings.ToUpper(strings.TrimSpace(exptype)) {
	case "SCIENCE":
		return RoleScience
	case "PSF", "REFERENCE":
		return RolePSF
	default:
		return RoleUnknown
	}
}

// Member is one exposure entry within an association product.
type Member struct {
	ExpName string `json:"expname" validate:"required"`
	ExpType string `json:"exptype" validate:"required"`
}

// Role returns the member's parsed role.
func (m Member) Role() Role {
	return ParseRole(m.ExpType)
}

// Product defines one output product and the members that feed it.
type Product struct {
	// Name overrides the configured output base name when set.
	Name    string   `json:"name,omitempty"`
	Members []Member `json:"members" validate:"dive"`
}

// CountRoles returns how many members carry each tracked role,
// in member order semantics (unknown roles are not counted).
func (p Product) CountRoles() (science, psf int) {
	for _, m := range p.Members {
		switch m.Role() {
		case RoleScience:
			science++
		case RolePSF:
			psf++
		}
	}
	return science, psf
}

// Association is a loaded association table. It is immutable once loaded;
// the pipeline consumes it read-only.
type Association struct {
	ID       string    `json:"asn_id" validate:"required"`
	Pool     string    `json:"asn_pool" validate:"required"`
	Products []Product `json:"products" validate:"dive"`

	// TableName records where the association was loaded from. It is
	// stamped into the provenance of every derived product.
	TableName string `json:"-"`
}
