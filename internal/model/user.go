package model

// Role distinguishes the two principal kinds. Credential issuance lives
// in the external auth service; this backend only consumes the role.
type Role string

const (
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// UserRef is the identity projection resolved onto classroom reads.
// The full principal record belongs to the external auth service; this
// table mirrors just what the UI needs for display.
type UserRef struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	Role      Role   `json:"role,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
