// Package contact handles inbound contact-form submissions. Records are
// write-once: there is no update path, only create, read and delete.
package contact

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("contact submission not found")

const DefaultLimit = 20

type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubmitParams struct {
	Name    string `validate:"required,min=2,max=120"`
	Email   string `validate:"required,email"`
	Company string `validate:"omitempty,max=200"`
	Subject string `validate:"required,min=2,max=200"`
	Message string `validate:"required,min=10,max=5000"`
	// SubscribeNewsletter opts the sender into the newsletter as a side
	// effect of the submission.
	SubscribeNewsletter bool
}
