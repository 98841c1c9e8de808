// Package newsletter manages the subscriber list. Subscription is
// idempotent keyed on email: re-subscribing an active address is a no-op,
// re-subscribing an unsubscribed address reactivates the existing record.
package newsletter

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("subscriber not found")
	ErrInvalidEmail = errors.New("invalid email address")
)

const DefaultLimit = 50

// Statuses a subscriber record can be in.
const (
	StatusActive       = "active"
	StatusUnsubscribed = "unsubscribed"
)

// Acquisition sources recorded on a subscriber. The source is set once on
// creation and kept through reactivation.
const (
	SourceWebsite     = "website"
	SourceContactForm = "contact_form"
)

type Subscriber struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
}

// SubscribeResult tells the caller which path a subscribe took, so the
// handler can pick the right message and the right email.
type SubscribeResult int

const (
	// Subscribed means a new record was created.
	Subscribed SubscribeResult = iota
	// AlreadySubscribed means the address was already active.
	AlreadySubscribed
	// Resubscribed means an unsubscribed record was reactivated.
	Resubscribed
)

// NormalizeEmail lowercases and trims an address for use as the
// subscriber key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
