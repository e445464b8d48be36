package models

import "time"

// Review is a rating left by a user, optionally tied to a listing or
// a transaction.
type Review struct {
	ID            string     `json:"_id,omitempty"`
	UserID        string     `json:"userId"`
	UserName      string     `json:"userName"`
	ListingID     string     `json:"listingId,omitempty"`
	TransactionID string     `json:"transitionId,omitempty"`
	Title         string     `json:"title,omitempty"`
	Rating        int        `json:"rating"`
	Comment       string     `json:"comment"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// ReviewInput carries the review form fields.
type ReviewInput struct {
	Title         string `json:"title" validate:"required,min=3,max=100"`
	Rating        int    `json:"rating" validate:"min=1,max=5"`
	Comment       string `json:"comment" validate:"required,min=10,max=500"`
	ListingID     string `json:"listingId,omitempty"`
	TransactionID string `json:"transitionId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
}
