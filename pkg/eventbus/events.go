package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Subjects
const (
	SubjectRatesUpdated = "rates.updated"
)

// Event types
const (
	EventTypeRatesUpdated = "rates.updated"
)

// Rate update sources
const (
	RatesSourceFeed   = "feed"
	RatesSourceManual = "manual"
)

// RatesUpdatedData is published whenever a tenant's rate store changes
type RatesUpdatedData struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Source      string    `json:"source"`
	Conversions int       `json:"conversions"`
	UpdatedAt   time.Time `json:"updated_at"`
}
