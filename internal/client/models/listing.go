package models

import "time"

type ListingCondition string

const (
	ConditionNew     ListingCondition = "new"
	ConditionLikeNew ListingCondition = "like new"
	ConditionGood    ListingCondition = "good"
	ConditionFair    ListingCondition = "fair"
	ConditionPoor    ListingCondition = "poor"
)

type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingPending   ListingStatus = "pending"
	ListingSold      ListingStatus = "sold"
	ListingClosed    ListingStatus = "closed"
)

// Listing is an e-waste item offered on the marketplace.
type Listing struct {
	ID          string           `json:"_id,omitempty"`
	UserID      string           `json:"userId,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Condition   ListingCondition `json:"condition"`
	Quantity    int              `json:"quantity"`
	Price       *float64         `json:"price,omitempty"`
	Location    string           `json:"location"`
	ContactInfo string           `json:"contactInfo,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Status      ListingStatus    `json:"status,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// ListingInput carries the user-editable listing fields.
type ListingInput struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description" validate:"required,min=10"`
	Category    string   `json:"category" validate:"required"`
	Condition   string   `json:"condition" validate:"required,oneof='new' 'like new' 'good' 'fair' 'poor'"`
	Quantity    int      `json:"quantity" validate:"min=1"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Location    string   `json:"location" validate:"required"`
	ContactInfo string   `json:"contactInfo" validate:"required"`
	Images      []string `json:"images,omitempty"`
	UserID      string   `json:"userId,omitempty"`
}
