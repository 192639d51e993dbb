package trip

import "time"

type PaymentConfig struct {
	PaymentType    string   `json:"paymentType"`
	PaymentMethods []string `json:"paymentMethods"`
}

// DefaultPaymentConfig is applied to trips materialized from an accepted
// proposal; organizers can adjust it later through the catalog.
func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		PaymentType:    "full",
		PaymentMethods: []string{"upi", "card"},
	}
}

// Trip is the bookable entity created when a proposal auto-converts. It is
// always private: only the traveler who made the originating request may
// book it.
type Trip struct {
	Id              string        `json:"id"`
	OrganizerId     string        `json:"organizerId"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Destination     string        `json:"destination"`
	StartDate       time.Time     `json:"startDate"`
	EndDate         time.Time     `json:"endDate"`
	Price           float64       `json:"price"`
	Currency        string        `json:"currency"`
	Capacity        int           `json:"capacity"`
	Status          string        `json:"status"`
	IsPrivate       bool          `json:"isPrivate"`
	AllowedUserIds  []string      `json:"allowedUserIds"`
	PaymentConfig   PaymentConfig `json:"paymentConfig"`
	SourceRequestId string        `json:"sourceRequestId"`
	CreatedAt       time.Time     `json:"createdAt"`
}
