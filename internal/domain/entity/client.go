package entity

import "time"

// Estados válidos para Client.
const (
	ClientStatusActive   = "ACTIVE"
	ClientStatusInactive = "INACTIVE"
)

// DefaultCurrency moneda por defecto de clientes y facturas.
const DefaultCurrency = "USD"

// Client representa un cliente facturable. Se elimina lógicamente (DeletedAt + INACTIVE).
type Client struct {
	ID                string
	ClientCode        string // CL-<año>-<seq>
	Name              string
	Email             string
	Phone             string
	PhoneCountryCode  string
	CompanyName       string
	CompanyCode       string
	Country           string
	State             string
	City              string
	Zipcode           string
	BillingAddress    string
	TaxID             string
	Currency          string
	Status            string
	Notes             string
	UserID            *string // usuario del portal de clientes
	PaymentCustomerID string  // customer del procesador de pagos (portal de facturación)
	DeletedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsDeleted indica si el cliente fue eliminado lógicamente.
func (c *Client) IsDeleted() bool {
	return c.DeletedAt != nil
}
