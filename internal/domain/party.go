package domain

import "time"

// PartyType distinguishes customers from suppliers.
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartySupplier PartyType = "supplier"
)

// IsValid reports whether t is a known party type.
func (t PartyType) IsValid() bool {
	return t == PartyCustomer || t == PartySupplier
}

// Party is a customer or a supplier the agency trades with.
type Party struct {
	ID        string    `json:"id"`
	Type      PartyType `json:"type"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
