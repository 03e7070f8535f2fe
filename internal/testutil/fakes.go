package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
)

// Notification registro de una llamada al notificador.
type Notification struct {
	Kind      string
	InvoiceID string
	Email     string
}

// Notifier registra las notificaciones de facturas en lugar de enviarlas.
type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *Notifier) record(kind string, inv *entity.Invoice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	email := ""
	if inv.Client != nil {
		email = inv.Client.Email
	}
	n.Sent = append(n.Sent, Notification{Kind: kind, InvoiceID: inv.ID, Email: email})
}

func (n *Notifier) InvoiceCreated(_ context.Context, inv *entity.Invoice) { n.record("invoice_created", inv) }
func (n *Notifier) DueSoon(_ context.Context, inv *entity.Invoice)        { n.record("due_soon", inv) }
func (n *Notifier) Overdue(_ context.Context, inv *entity.Invoice)        { n.record("overdue", inv) }
func (n *Notifier) PaymentReceipt(_ context.Context, inv *entity.Invoice) { n.record("receipt", inv) }

// Kinds devuelve los tipos enviados en orden.
func (n *Notifier) Kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.Sent))
	for _, s := range n.Sent {
		out = append(out, s.Kind)
	}
	return out
}

// Gateway procesador de pagos falso. Event es lo que devuelve ParseWebhookEvent cuando la firma es "valid".
type Gateway struct {
	Err     error
	Event   *billing.PaymentEvent
	Intents []billing.PaymentIntentParams
	Portals []string
	Checks  []billing.CheckoutParams
}

// ErrBadSignature lo devuelve Gateway.ParseWebhookEvent con una firma distinta de "valid".
var ErrBadSignature = errors.New("firma inválida")

func (g *Gateway) CreatePaymentIntent(_ context.Context, p billing.PaymentIntentParams) (*billing.PaymentIntent, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	g.Intents = append(g.Intents, p)
	id := fmt.Sprintf("pi_%d", len(g.Intents))
	return &billing.PaymentIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *Gateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (*billing.RedirectSession, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	g.Portals = append(g.Portals, customerID)
	return &billing.RedirectSession{ID: "bps_1", URL: "https://billing.example.com/session?return=" + returnURL}, nil
}

func (g *Gateway) CreateCheckoutSession(_ context.Context, p billing.CheckoutParams) (*billing.RedirectSession, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	g.Checks = append(g.Checks, p)
	return &billing.RedirectSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil
}

func (g *Gateway) ParseWebhookEvent(_ []byte, signature string) (*billing.PaymentEvent, error) {
	if signature != "valid" {
		return nil, ErrBadSignature
	}
	return g.Event, nil
}

// Ledger memoria de recordatorios reclamados.
type Ledger struct {
	mu      sync.Mutex
	claimed map[string]bool
	Err     error
}

// Claim devuelve true la primera vez para cada (kind, invoice, día).
func (l *Ledger) Claim(_ context.Context, kind, invoiceID string, day time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	if l.claimed == nil {
		l.claimed = map[string]bool{}
	}
	key := kind + ":" + invoiceID + ":" + day.Format("2006-01-02")
	if l.claimed[key] {
		return false, nil
	}
	l.claimed[key] = true
	return true, nil
}

// PDF generador falso; devuelve un documento mínimo con el número de factura.
type PDF struct {
	Issuer string
}

func (p *PDF) GenerateInvoicePDF(_ context.Context, issuer string, inv *entity.Invoice) ([]byte, error) {
	p.Issuer = issuer
	return []byte("%PDF-1.4 " + inv.InvoiceNumber), nil
}

var (
	_ billing.Notifier            = (*Notifier)(nil)
	_ billing.PaymentGateway      = (*Gateway)(nil)
	_ billing.ReminderLedger      = (*Ledger)(nil)
	_ billing.InvoicePDFGenerator = (*PDF)(nil)
)

// SeedRBAC carga el catálogo de permisos y los roles del sistema. Devuelve los roles por código.
func SeedRBAC(ctx context.Context, r *Repos) map[string]*entity.Role {
	now := time.Now()
	byCode := map[string]*entity.Permission{}
	for _, e := range rbac.Catalog {
		p := &entity.Permission{
			ID: uuid.New().String(), Module: e.Module, Code: e.Code, Name: e.Name,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		_ = r.Permissions.Create(ctx, p)
		byCode[e.Code] = p
	}
	roles := map[string]*entity.Role{}
	for _, sr := range rbac.SystemRoles() {
		role := &entity.Role{
			ID: uuid.New().String(), Code: sr.Code, Name: sr.Name, Description: sr.Description,
			IsSystemRole: true, CreatedAt: now, UpdatedAt: now,
		}
		for _, code := range sr.Permissions {
			role.Permissions = append(role.Permissions, byCode[code])
		}
		_ = r.Roles.Create(ctx, role)
		roles[sr.Code] = role
	}
	return roles
}

// NewClient crea un cliente activo con el email dado.
func NewClient(ctx context.Context, r *Repos, code, email string) *entity.Client {
	now := time.Now()
	c := &entity.Client{
		ID: uuid.New().String(), ClientCode: code, Name: "Cliente " + code, Email: email,
		BillingAddress: "Calle 1", Currency: entity.DefaultCurrency, Status: entity.ClientStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	_ = r.Clients.Create(ctx, c)
	return c
}

// AccountMail email de cuenta registrado por Accounts.
type AccountMail struct {
	Kind  string
	To    string
	Token string
}

// Accounts notificador de cuenta que guarda los tokens enviados.
type Accounts struct {
	mu   sync.Mutex
	Sent []AccountMail
}

func (a *Accounts) record(kind, to, token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Sent = append(a.Sent, AccountMail{Kind: kind, To: to, Token: token})
}

func (a *Accounts) Invite(_ context.Context, to, _, token string, _ time.Duration) {
	a.record("invite", to, token)
}

func (a *Accounts) PasswordReset(_ context.Context, to, _, token string, _ time.Duration) {
	a.record("password_reset", to, token)
}

// Last último email enviado; vacío si no hubo ninguno.
func (a *Accounts) Last() AccountMail {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Sent) == 0 {
		return AccountMail{}
	}
	return a.Sent[len(a.Sent)-1]
}

// NewUser crea un usuario activo con el rol y la contraseña dados.
func NewUser(ctx context.Context, r *Repos, role *entity.Role, email, password string) *entity.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	now := time.Now()
	u := &entity.User{
		ID: uuid.New().String(), Name: "Usuario " + role.Code, Email: email, PasswordHash: string(hash),
		RoleID: role.ID, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}
	_ = r.Users.Create(ctx, u)
	return u
}
