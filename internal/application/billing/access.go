package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// portalClient devuelve el cliente vinculado a un actor con rol client.
// Un usuario del portal sin cliente vinculado no ve ninguna factura.
func portalClient(ctx context.Context, clientRepo repository.ClientRepository, actor rbac.Actor) (*entity.Client, error) {
	client, err := clientRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente del usuario: %w", err)
	}
	if client == nil || client.IsDeleted() {
		return nil, domain.ErrForbidden
	}
	return client, nil
}

// visibleInvoice carga la factura y aplica la regla de visibilidad del portal:
// un actor client solo ve facturas de su propio cliente (las ajenas se reportan como inexistentes).
func visibleInvoice(
	ctx context.Context,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	actor rbac.Actor,
	invoiceID string,
) (*entity.Invoice, error) {
	inv, err := invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if actor.IsClient() {
		client, err := portalClient(ctx, clientRepo, actor)
		if err != nil {
			return nil, err
		}
		if inv.ClientID != client.ID {
			return nil, domain.ErrNotFound
		}
	}
	return inv, nil
}
