package entities

import (
	"math"
	"time"
)

// Service represents a bookable service offered by a provider.
// Price amounts are integer minor-currency units (cents).
type Service struct {
	ID              string    `json:"id" db:"id"`
	ProviderID      string    `json:"provider_id" db:"provider_id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	BasePriceCents  int64     `json:"base_price_cents" db:"base_price_cents"`
	DepositRate     float64   `json:"deposit_rate" db:"deposit_rate"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DepositAmountCents derives the deposit from the base price and rate using
// half-up rounding. The deposit is never stored independently of its inputs.
func (s *Service) DepositAmountCents() int64 {
	return int64(math.Round(float64(s.BasePriceCents) * s.DepositRate))
}
