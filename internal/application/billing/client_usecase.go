package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	domainbilling "github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// ClientUseCase casos de uso de clientes facturables.
type ClientUseCase struct {
	txRunner    BillingTxRunner
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
	now         func() time.Time
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(txRunner BillingTxRunner, clientRepo repository.ClientRepository, invoiceRepo repository.InvoiceRepository) *ClientUseCase {
	return &ClientUseCase{txRunner: txRunner, clientRepo: clientRepo, invoiceRepo: invoiceRepo, now: time.Now}
}

// Create da de alta un cliente con el siguiente código CL-<año>-<seq>.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.ClientRequest) (*dto.ClientResponse, error) {
	client := &entity.Client{}
	if err := applyClientRequest(client, in); err != nil {
		return nil, err
	}
	now := uc.now()
	client.ID = uuid.New().String()
	client.CreatedAt = now
	client.UpdatedAt = now

	err := uc.txRunner.RunBilling(ctx, func(
		seqRepo repository.SequenceRepository,
		clientRepo repository.ClientRepository,
		_ repository.InvoiceRepository,
	) error {
		seq, err := seqRepo.Next(ctx, domainbilling.SequenceClient, now.Year())
		if err != nil {
			return fmt.Errorf("secuencia de clientes: %w", err)
		}
		client.ClientCode = domainbilling.ClientCode(now.Year(), seq)
		return clientRepo.Create(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetByID devuelve un cliente no eliminado.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List lista clientes activos o inactivos (nunca eliminados) con búsqueda y paginación.
func (uc *ClientUseCase) List(ctx context.Context, q dto.ClientListQuery) (*dto.ClientListResponse, error) {
	q.DefaultPage()
	if q.Status != "" && !validClientStatus(q.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, q.Status)
	}
	clients, total, err := uc.clientRepo.List(ctx, repository.ClientFilter{
		Search: strings.TrimSpace(q.Search),
		Status: strings.ToUpper(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ClientListResponse{
		Items: make([]dto.ClientResponse, 0, len(clients)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, c := range clients {
		out.Items = append(out.Items, *toClientResponse(c))
	}
	return out, nil
}

// Update reemplaza los datos editables. El código no cambia.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyClientRequest(client, in); err != nil {
		return nil, err
	}
	client.UpdatedAt = uc.now()
	if err := uc.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Delete elimina lógicamente el cliente. Falla con ErrClientHasInvoices si tiene facturas.
func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	n, err := uc.invoiceRepo.CountByClient(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d facturas", domain.ErrClientHasInvoices, n)
	}
	return uc.clientRepo.SoftDelete(ctx, id, uc.now())
}

func (uc *ClientUseCase) load(ctx context.Context, id string) (*entity.Client, error) {
	client, err := uc.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil || client.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func applyClientRequest(c *entity.Client, in dto.ClientRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	address := strings.TrimSpace(in.BillingAddress)
	if address == "" {
		return fmt.Errorf("%w: la dirección de facturación es obligatoria", domain.ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" && !govalidator.IsEmail(email) {
		return fmt.Errorf("%w: email %q", domain.ErrInvalidInput, in.Email)
	}
	cur, err := domainbilling.NormalizeCurrency(in.Currency)
	if err != nil {
		return err
	}
	status := strings.ToUpper(strings.TrimSpace(in.Status))
	if status == "" {
		status = entity.ClientStatusActive
	}
	if !validClientStatus(status) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}

	c.Name = name
	c.Email = email
	c.Phone = in.Phone
	c.PhoneCountryCode = in.PhoneCountryCode
	c.CompanyName = in.CompanyName
	c.CompanyCode = in.CompanyCode
	c.Country = in.Country
	c.State = in.State
	c.City = in.City
	c.Zipcode = in.Zipcode
	c.BillingAddress = address
	c.TaxID = in.TaxID
	c.Currency = cur
	c.Status = status
	c.Notes = in.Notes
	c.PaymentCustomerID = in.PaymentCustomerID
	c.UserID = nil
	if in.UserID != "" {
		uid := in.UserID
		c.UserID = &uid
	}
	return nil
}

func validClientStatus(s string) bool {
	s = strings.ToUpper(s)
	return s == entity.ClientStatusActive || s == entity.ClientStatusInactive
}
