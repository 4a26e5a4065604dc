package employee

import (
	"time"

	"github.com/google/uuid"
)

// EmailUniqueIndex is the unique index guarding employee emails.
const EmailUniqueIndex = "uq_employees_email"

type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"not null"`
	Email     string    `gorm:"not null;uniqueIndex:uq_employees_email"`
	Position  string    `gorm:"not null"`
	Salary    float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}
