package models

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Transaction records a quantity of e-waste handed over for recycling.
type Transaction struct {
	ID          string            `json:"_id,omitempty"`
	UserID      string            `json:"userId,omitempty"`
	WasteType   string            `json:"wasteType"`
	Quantity    float64           `json:"quantity"`
	Unit        string            `json:"unit"`
	Date        string            `json:"date"`
	Location    string            `json:"location"`
	Description string            `json:"description,omitempty"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

// TransactionInput carries the user-editable transaction fields.
type TransactionInput struct {
	WasteType   string  `json:"wasteType" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit" validate:"required"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Location    string  `json:"location" validate:"required"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Status      string  `json:"status" validate:"required,oneof=pending completed cancelled"`
	UserID      string  `json:"userId,omitempty"`
}
