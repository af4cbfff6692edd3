package entity

import "time"

// User roles and account states.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"

	StatusActive  = "active"
	StatusBlocked = "blocked"
)

type User struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	Username  string    `json:"username" firestore:"username"`
	Phone     string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role      string    `json:"role" firestore:"role"`
	Status    string    `json:"status" firestore:"status"`
	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	LastSeen  time.Time `json:"last_seen" firestore:"lastSeen"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// StaffCapable reports whether the role grants support-handling capability.
func (u *User) StaffCapable() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// Blocked reports whether the account is refused admission.
func (u *User) Blocked() bool {
	return u.Status == StatusBlocked
}
