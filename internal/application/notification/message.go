// Package notification renderiza y despacha los emails transaccionales.
// El envío es "fire-and-forget": los fallos se registran y nunca llegan al caller.
package notification

import "context"

// Kind tipo de email transaccional.
type Kind string

const (
	KindInvite         Kind = "invite"
	KindPasswordReset  Kind = "password_reset"
	KindInvoiceCreated Kind = "invoice_created"
	KindDueSoon        Kind = "due_soon"
	KindOverdue        Kind = "overdue"
	KindReceipt        Kind = "receipt"
)

// Message email ya renderizado.
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer transporte de email (SMTP o log).
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Enqueuer cola opcional: delega el envío a un worker.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, msg Message) error
}
