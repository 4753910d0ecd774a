package identity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is an account keyed by its blockchain wallet address. The email column
// holds ciphertext at rest; services decrypt it before returning the struct.
type User struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	WalletAddress       string    `db:"wallet_address" json:"wallet_address"`
	Role                string    `db:"role" json:"role"`
	FirstName           string    `db:"first_name" json:"first_name"`
	LastName            string    `db:"last_name" json:"last_name"`
	Email               string    `db:"email" json:"email,omitempty"`
	Specialization      string    `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber       string    `db:"license_number" json:"license_number,omitempty"`
	HospitalAffiliation string    `db:"hospital_affiliation" json:"hospital_affiliation,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
