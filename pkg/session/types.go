package session

// Role determines which actions a user may perform.
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleUser    Role = "user"
)

// Status gates feature access independent of role.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// User is the authenticated identity as reported by the backend.
// Updates always replace the whole value; there are no field-level patches.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
	Picture   string `json:"picture,omitempty"`
}

// TokenPair is the credential material for one authenticated session.
// A non-empty Access value is the sole authority for "is authenticated";
// Refresh is carried but never independently checked.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
