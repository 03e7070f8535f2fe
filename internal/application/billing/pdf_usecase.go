package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// PDFUseCase genera el PDF de una factura.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	generator   InvoicePDFGenerator
	issuer      string
}

// NewPDFUseCase construye el caso de uso. issuer es el nombre que encabeza el documento.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	generator InvoicePDFGenerator,
	issuer string,
) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, clientRepo: clientRepo, generator: generator, issuer: issuer}
}

// DownloadInvoicePDF aplica las mismas reglas de visibilidad que la consulta de facturas.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la factura no existe o no es visible para el actor.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, actor rbac.Actor, invoiceID string) ([]byte, string, error) {
	inv, err := visibleInvoice(ctx, uc.invoiceRepo, uc.clientRepo, actor, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv.Client == nil {
		if inv.Client, err = uc.clientRepo.GetByID(ctx, inv.ClientID); err != nil {
			return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
		}
	}
	pdf, err := uc.generator.GenerateInvoicePDF(ctx, uc.issuer, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}
	return pdf, inv.InvoiceNumber + ".pdf", nil
}
