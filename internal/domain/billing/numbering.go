package billing

import "fmt"

// Tipos de secuencia persistidos en document_sequences.
const (
	SequenceInvoice = "invoice"
	SequenceClient  = "client"
)

// InvoiceNumber formato INV-<año>-<4 dígitos>.
func InvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// ClientCode formato CL-<año>-<3 dígitos>.
func ClientCode(year int, seq int64) string {
	return fmt.Sprintf("CL-%d-%03d", year, seq)
}
