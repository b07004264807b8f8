package directory

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. The directory is a thin collaborator of
// the lifecycle engine; only the fields scheduling and notification need.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Active      bool       `db:"active" json:"active"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	PhoneMobile *string    `db:"phone_mobile" json:"phone_mobile,omitempty"`
	Email       *string    `db:"email" json:"email,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Provider maps to the provider table.
type Provider struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Active    bool      `db:"active" json:"active"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Role      string    `db:"role" json:"role"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
