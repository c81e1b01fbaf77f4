package types

// Address is the shipping address snapshot embedded on orders and invoices.
// It is copied at creation time and never re-resolved against the profile.
type Address struct {
	Street     string `json:"street"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

// CustomerInfo is the contact snapshot embedded on orders and invoices.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
