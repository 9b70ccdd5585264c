package domain

import "time"

// Order is a single lunch order. At most one non-canceled order may exist per
// username and civil day.
type Order struct {
	ID         string     `bson:"_id"                   json:"id"`
	Username   string     `bson:"username"              json:"username"`
	OrderDate  string     `bson:"order_date"            json:"order_date"`
	CreatedAt  time.Time  `bson:"created_at"            json:"created_at"`
	Canceled   bool       `bson:"canceled"              json:"canceled"`
	CanceledAt *time.Time `bson:"canceled_at,omitempty" json:"canceled_at,omitempty"`
}

// AdmissionSource names where an admission decision was taken.
type AdmissionSource string

const (
	SourceTransport AdmissionSource = "transport"
	SourceCache     AdmissionSource = "cache"
	SourceStore     AdmissionSource = "store"
)

// Admission is the result of a once-per-day order check.
type Admission struct {
	Allowed     bool
	LastOrderAt time.Time
	Source      AdmissionSource
}

// Allow returns an admission that permits a new order. Only the
// authoritative store can allow.
func Allow() Admission {
	return Admission{Allowed: true, Source: SourceStore}
}

// Deny returns an admission refused because of an order placed at lastOrderAt.
func Deny(lastOrderAt time.Time, src AdmissionSource) Admission {
	return Admission{LastOrderAt: lastOrderAt, Source: src}
}
