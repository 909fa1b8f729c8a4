package dto

import "time"

// ContactMessageRequest is an inbound contact-form submission. No identity is
// required; the form is open to unauthenticated visitors.
type ContactMessageRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ContactMessageSummary is the metadata-only projection used for listings.
// It never includes the message body or the ciphertext.
type ContactMessageSummary struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
}
