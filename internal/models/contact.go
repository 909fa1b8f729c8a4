package models

import "time"

// StoredContactMessage is one entry of the blob-persisted contact-message
// list. Name, Email and Subject stay in plaintext so listings and the
// notification text never need decryption; the message body only exists
// inside EncryptedPayload.
//
// Subject is deliberately plaintext so the notification Message can embed it.
// Subjects are not unique, so lookups must use the id, never the subject.
type StoredContactMessage struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Subject          string    `json:"subject"`
	EncryptedPayload string    `json:"encrypted_payload"`
}
