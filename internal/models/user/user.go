package user

import "time"

const (
	RoleTraveler  = "traveler"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
	RoleAgent     = "agent"
)

// Organizer is a read model over the external profile store. Trust score and
// verification status are maintained elsewhere; this core only consumes them.
type Organizer struct {
	Id                 string    `json:"id"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	VerificationStatus string    `json:"verificationStatus"`
	TrustScore         int       `json:"trustScore"`
	CompanyName        string    `json:"companyName"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
