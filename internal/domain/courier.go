package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CourierCategoryWeekly = "WEEKLY"
	CourierCategoryDaily  = "DAILY"
)

// UnassignedLabel is the display label for the payout bucket holding
// deliveries with no courier. The bucket always sorts after named couriers.
const UnassignedLabel = "(unassigned)"

type Courier struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	FullName    *string   `json:"full_name,omitempty" db:"full_name"`
	Category    string    `json:"category" db:"category"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateCourierRequest struct {
	DisplayName string  `json:"display_name" validate:"required,max=120"`
	FullName    *string `json:"full_name" validate:"omitempty,max=200"`
	Category    string  `json:"category" validate:"required,oneof=WEEKLY DAILY"`
	Active      bool    `json:"active"`
}
