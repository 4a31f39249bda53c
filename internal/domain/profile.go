package domain

import "time"

const (
	RoleStudent  = "student"
	RoleTutor    = "tutor"
	RoleStranger = "stranger"
)

type Profile struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Username  string    `json:"username" dynamodbav:"username"`
	Role      string    `json:"role" dynamodbav:"role"`
	Lat       *float64  `json:"lat,omitempty" dynamodbav:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty" dynamodbav:"lng,omitempty"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// HasRole reports whether onboarding has assigned a real role.
func (p *Profile) HasRole() bool {
	return p != nil && p.Role != "" && p.Role != RoleStranger
}

// Counterpart returns the role shown on this profile's map: students look for tutors and vice versa.
func (p *Profile) Counterpart() string {
	if p.Role == RoleStudent {
		return RoleTutor
	}
	return RoleStudent
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=2,max=40"`
	Role     string `json:"role" validate:"required,oneof=student tutor"`
}

type UpdateLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}
