package billing

import (
	"time"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	out := &dto.ClientResponse{
		ID:                c.ID,
		ClientCode:        c.ClientCode,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		PhoneCountryCode:  c.PhoneCountryCode,
		CompanyName:       c.CompanyName,
		CompanyCode:       c.CompanyCode,
		Country:           c.Country,
		State:             c.State,
		City:              c.City,
		Zipcode:           c.Zipcode,
		BillingAddress:    c.BillingAddress,
		TaxID:             c.TaxID,
		Currency:          c.Currency,
		Status:            c.Status,
		Notes:             c.Notes,
		PaymentCustomerID: c.PaymentCustomerID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.UserID != nil {
		out.UserID = *c.UserID
	}
	return out
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		ClientID:        inv.ClientID,
		IssuedDate:      inv.IssuedDate.Format(dateLayout),
		DueDate:         inv.DueDate.Format(dateLayout),
		Currency:        inv.Currency,
		Status:          string(inv.Status),
		AmountSubtotal:  inv.AmountSubtotal,
		AmountTax:       inv.AmountTax,
		AmountTotal:     inv.AmountTotal,
		PaymentIntentID: inv.PaymentIntentID,
		PaidAt:          inv.PaidAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
	if inv.Client != nil {
		out.ClientName = inv.Client.Name
		out.ClientCode = inv.Client.ClientCode
	}
	if len(inv.Items) > 0 {
		out.Items = make([]dto.InvoiceItemResponse, 0, len(inv.Items))
		for _, it := range inv.Items {
			out.Items = append(out.Items, dto.InvoiceItemResponse{
				ID:          it.ID,
				Position:    it.Position,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Amount:      it.Amount,
			})
		}
	}
	return out
}

// parseDate interpreta YYYY-MM-DD; vacío devuelve nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
