// Package applications keeps the vault applications submitted for SPV review
// in local storage and drives them through the pending, approved and rejected
// states.
package applications

import "time"

// Status is the review state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decided reports whether s is a terminal review outcome.
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application is a request to review and tokenize a patent.
type Application struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      Status    `json:"status"`
	SubmittedBy string    `json:"submittedBy"`
	FormData    FormData  `json:"formData"`

	// Set once the application has been reviewed.
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewNotes string     `json:"reviewNotes,omitempty"`
}

// Stats counts applications per status.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}
