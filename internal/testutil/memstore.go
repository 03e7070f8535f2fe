// Package testutil provee repositorios en memoria para los tests de casos de uso y handlers.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu          sync.Mutex
	users       map[string]*entity.User
	roles       map[string]*entity.Role
	rolePerms   map[string][]string
	permissions map[string]*entity.Permission
	clients     map[string]*entity.Client
	invoices    map[string]*entity.Invoice
	tokens      map[string]*entity.PasswordResetToken
	sequences   map[string]int64

	// Err si no es nil, lo devuelven todas las operaciones (simula caída de la base).
	Err error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		users:       map[string]*entity.User{},
		roles:       map[string]*entity.Role{},
		rolePerms:   map[string][]string{},
		permissions: map[string]*entity.Permission{},
		clients:     map[string]*entity.Client{},
		invoices:    map[string]*entity.Invoice{},
		tokens:      map[string]*entity.PasswordResetToken{},
		sequences:   map[string]int64{},
	}
}

// Repos agrupa las vistas tipadas del Store.
type Repos struct {
	Users       *UserRepo
	Roles       *RoleRepo
	Permissions *PermissionRepo
	Clients     *ClientRepo
	Invoices    *InvoiceRepo
	Sequences   *SequenceRepo
	Tokens      *TokenRepo
	Analytics   *AnalyticsRepo
	Tx          *TxRunner
}

// NewRepos crea un Store y todas sus vistas.
func NewRepos() (*Store, *Repos) {
	s := NewStore()
	return s, &Repos{
		Users:       &UserRepo{s},
		Roles:       &RoleRepo{s},
		Permissions: &PermissionRepo{s},
		Clients:     &ClientRepo{s},
		Invoices:    &InvoiceRepo{s},
		Sequences:   &SequenceRepo{s},
		Tokens:      &TokenRepo{s},
		Analytics:   &AnalyticsRepo{s},
		Tx:          &TxRunner{s},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ── Sequences ────────────────────────────────────────────────────────────────

// SequenceRepo implementa repository.SequenceRepository.
type SequenceRepo struct{ s *Store }

// Next incrementa el contador (kind, year).
func (r *SequenceRepo) Next(_ context.Context, kind string, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	key := fmt.Sprintf("%s:%d", kind, year)
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}

// ── Users ────────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) withRole(u *entity.User) *entity.User {
	cp := *u
	if role, ok := r.s.roles[u.RoleID]; ok {
		rc := *role
		rc.Permissions = nil
		cp.Role = &rc
	}
	return &cp
}

// Create inserta un usuario; el email es único sin distinguir mayúsculas.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	cp.Role = nil
	r.s.users[u.ID] = &cp
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return r.withRole(u), nil
}

// GetByEmail busca sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return r.withRole(u), nil
		}
	}
	return nil, nil
}

// Update reemplaza el usuario.
func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	cp.Role = nil
	r.s.users[u.ID] = &cp
	return nil
}

// UpdatePasswordByEmail cambia el hash del usuario con ese email.
func (r *UserRepo) UpdatePasswordByEmail(_ context.Context, email, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u.PasswordHash = hash
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// TouchLastLogin fija LastLoginAt.
func (r *UserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return r.s.Err
}

// List filtra por nombre/email y estado, más recientes primero.
func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []*entity.User
	for _, u := range r.s.users {
		if f.Search != "" && !contains(u.Name, f.Search) && !contains(u.Email, f.Search) {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, r.withRole(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

// Delete borra el usuario.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// CountByRole usuarios asignados al rol.
func (r *UserRepo) CountByRole(_ context.Context, roleID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.countByRole(roleID), r.s.Err
}

func (r *UserRepo) countByRole(roleID string) int {
	n := 0
	for _, u := range r.s.users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n
}

// ── Permissions ──────────────────────────────────────────────────────────────

// PermissionRepo implementa repository.PermissionRepository.
type PermissionRepo struct{ s *Store }

func sortPermissions(list []*entity.Permission) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Module != list[j].Module {
			return list[i].Module < list[j].Module
		}
		return list[i].Name < list[j].Name
	})
}

// Create inserta un permiso con código único.
func (r *PermissionRepo) Create(_ context.Context, p *entity.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, other := range r.s.permissions {
		if other.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.permissions[p.ID] = &cp
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *PermissionRepo) GetByID(_ context.Context, id string) (*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.permissions[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, r.s.Err
}

// GetByCode busca por código.
func (r *PermissionRepo) GetByCode(_ context.Context, code string) (*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.permissions {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, r.s.Err
}

// GetByIDs devuelve los permisos existentes entre ids.
func (r *PermissionRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Permission
	for _, id := range ids {
		if p, ok := r.s.permissions[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortPermissions(out)
	return out, r.s.Err
}

// List ordena por módulo y nombre.
func (r *PermissionRepo) List(_ context.Context, onlyActive bool) ([]*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []*entity.Permission
	for _, p := range r.s.permissions {
		if onlyActive && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sortPermissions(out)
	return out, nil
}

// Update reemplaza el permiso.
func (r *PermissionRepo) Update(_ context.Context, p *entity.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.permissions[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.permissions {
		if id != p.ID && other.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.permissions[p.ID] = &cp
	return nil
}

// Delete falla con ErrPermissionInUse si algún rol lo referencia.
func (r *PermissionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.permissions[id]; !ok {
		return domain.ErrNotFound
	}
	if r.countRoles(id) > 0 {
		return domain.ErrPermissionInUse
	}
	delete(r.s.permissions, id)
	return nil
}

// CountRoles roles que referencian el permiso.
func (r *PermissionRepo) CountRoles(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.countRoles(id), r.s.Err
}

func (r *PermissionRepo) countRoles(id string) int {
	n := 0
	for _, ids := range r.s.rolePerms {
		for _, pid := range ids {
			if pid == id {
				n++
				break
			}
		}
	}
	return n
}

// ── Roles ────────────────────────────────────────────────────────────────────

// RoleRepo implementa repository.RoleRepository.
type RoleRepo struct{ s *Store }

func (r *RoleRepo) load(role *entity.Role) *entity.Role {
	cp := *role
	cp.Permissions = nil
	for _, pid := range r.s.rolePerms[role.ID] {
		if p, ok := r.s.permissions[pid]; ok {
			pc := *p
			cp.Permissions = append(cp.Permissions, &pc)
		}
	}
	sortPermissions(cp.Permissions)
	cp.UserCount = (&UserRepo{r.s}).countByRole(role.ID)
	return &cp
}

func (r *RoleRepo) setPermissions(role *entity.Role) error {
	ids := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		if _, ok := r.s.permissions[p.ID]; !ok {
			return domain.ErrInvalidInput
		}
		ids = append(ids, p.ID)
	}
	r.s.rolePerms[role.ID] = ids
	return nil
}

// Create inserta el rol y su relación con permisos.
func (r *RoleRepo) Create(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, other := range r.s.roles {
		if other.Code == role.Code {
			return domain.ErrDuplicate
		}
	}
	if err := r.setPermissions(role); err != nil {
		return err
	}
	cp := *role
	cp.Permissions = nil
	r.s.roles[role.ID] = &cp
	return nil
}

// GetByID carga permisos y cantidad de usuarios.
func (r *RoleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if role, ok := r.s.roles[id]; ok {
		return r.load(role), nil
	}
	return nil, nil
}

// GetByCode busca por código.
func (r *RoleRepo) GetByCode(_ context.Context, code string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, role := range r.s.roles {
		if role.Code == code {
			return r.load(role), nil
		}
	}
	return nil, nil
}

// List ordena por nombre.
func (r *RoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]*entity.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, r.load(role))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update reemplaza datos y permisos. El código no cambia.
func (r *RoleRepo) Update(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.roles[role.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.setPermissions(role); err != nil {
		return err
	}
	cur.Name = role.Name
	cur.Description = role.Description
	cur.UpdatedAt = role.UpdatedAt
	return nil
}

// Delete falla con ErrRoleInUse si hay usuarios asignados.
func (r *RoleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[id]; !ok {
		return domain.ErrNotFound
	}
	if (&UserRepo{r.s}).countByRole(id) > 0 {
		return domain.ErrRoleInUse
	}
	delete(r.s.roles, id)
	delete(r.s.rolePerms, id)
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

// ClientRepo implementa repository.ClientRepository.
type ClientRepo struct{ s *Store }

func copyClient(c *entity.Client) *entity.Client {
	cp := *c
	return &cp
}

// Create inserta un cliente con código único.
func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, other := range r.s.clients {
		if other.ClientCode == c.ClientCode {
			return domain.ErrDuplicate
		}
	}
	r.s.clients[c.ID] = copyClient(c)
	return nil
}

// GetByID incluye eliminados.
func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if c, ok := r.s.clients[id]; ok {
		return copyClient(c), nil
	}
	return nil, nil
}

// GetByUserID cliente no eliminado vinculado al usuario.
func (r *ClientRepo) GetByUserID(_ context.Context, userID string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if c.UserID != nil && *c.UserID == userID && c.DeletedAt == nil {
			return copyClient(c), nil
		}
	}
	return nil, r.s.Err
}

// GetByPaymentCustomerID busca por customer del procesador.
func (r *ClientRepo) GetByPaymentCustomerID(_ context.Context, customerID string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if c.PaymentCustomerID == customerID {
			return copyClient(c), nil
		}
	}
	return nil, r.s.Err
}

// List excluye eliminados.
func (r *ClientRepo) List(_ context.Context, f repository.ClientFilter) ([]*entity.Client, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []*entity.Client
	for _, c := range r.s.clients {
		if c.DeletedAt != nil {
			continue
		}
		if f.Search != "" && !contains(c.Name, f.Search) && !contains(c.Email, f.Search) &&
			!contains(c.CompanyName, f.Search) && !contains(c.ClientCode, f.Search) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, copyClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientCode > out[j].ClientCode })
	return page(out, f.Limit, f.Offset), len(out), nil
}

// Update reemplaza el cliente conservando código y fecha de alta.
func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.clients[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := copyClient(c)
	cp.ClientCode = cur.ClientCode
	cp.CreatedAt = cur.CreatedAt
	r.s.clients[c.ID] = cp
	return nil
}

// SoftDelete marca DeletedAt e INACTIVE.
func (r *ClientRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrNotFound
	}
	c.DeletedAt = &at
	c.Status = entity.ClientStatusInactive
	c.UpdatedAt = at
	return nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

// InvoiceRepo implementa repository.InvoiceRepository.
type InvoiceRepo struct{ s *Store }

func (r *InvoiceRepo) load(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	cp.Items = make([]*entity.InvoiceItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		ic := *it
		cp.Items = append(cp.Items, &ic)
	}
	if c, ok := r.s.clients[inv.ClientID]; ok {
		cp.Client = copyClient(c)
	}
	return &cp
}

// Create inserta factura e ítems.
func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.clients[inv.ClientID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	cp := r.load(inv)
	cp.Client = nil
	r.s.invoices[inv.ID] = cp
	return nil
}

// GetByID carga ítems y cliente.
func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if inv, ok := r.s.invoices[id]; ok {
		return r.load(inv), nil
	}
	return nil, nil
}

// List filtra y ordena por emisión descendente. No carga ítems.
func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.IssuedFrom != nil && inv.IssuedDate.Before(*f.IssuedFrom) {
			continue
		}
		if f.IssuedTo != nil && inv.IssuedDate.After(*f.IssuedTo) {
			continue
		}
		cp := r.load(inv)
		cp.Items = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedDate.Equal(out[j].IssuedDate) {
			return out[i].IssuedDate.After(out[j].IssuedDate)
		}
		return out[i].InvoiceNumber > out[j].InvoiceNumber
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

// UpdateStatus fija el estado; paidAt nil conserva el valor anterior.
func (r *InvoiceRepo) UpdateStatus(_ context.Context, id string, status entity.InvoiceStatus, paidAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	if paidAt != nil {
		inv.PaidAt = paidAt
	}
	return nil
}

// SetPaymentIntent guarda el id de la intención de pago.
func (r *InvoiceRepo) SetPaymentIntent(_ context.Context, id, paymentIntentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.PaymentIntentID = paymentIntentID
	return nil
}

// Delete borra la factura.
func (r *InvoiceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.invoices, id)
	return nil
}

// CountByClient facturas del cliente.
func (r *InvoiceRepo) CountByClient(_ context.Context, clientID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, inv := range r.s.invoices {
		if inv.ClientID == clientID {
			n++
		}
	}
	return n, r.s.Err
}

// ListPendingDueOn facturas PENDING con vencimiento en el día calendario de day.
func (r *InvoiceRepo) ListPendingDueOn(_ context.Context, day time.Time) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	want := day.Format("2006-01-02")
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status == entity.InvoiceStatusPending && inv.DueDate.Format("2006-01-02") == want {
			out = append(out, r.load(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, nil
}

// ── Password reset tokens ────────────────────────────────────────────────────

// TokenRepo implementa repository.PasswordResetTokenRepository.
type TokenRepo struct{ s *Store }

// Create guarda el token.
func (r *TokenRepo) Create(_ context.Context, t *entity.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cp := *t
	r.s.tokens[t.ID] = &cp
	return nil
}

// GetByToken busca por valor.
func (r *TokenRepo) GetByToken(_ context.Context, token string) (*entity.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, r.s.Err
}

// Delete borra un token.
func (r *TokenRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, id)
	return r.s.Err
}

// DeleteByEmail borra todos los tokens del email.
func (r *TokenRepo) DeleteByEmail(_ context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tokens {
		if strings.EqualFold(t.Email, email) {
			delete(r.s.tokens, id)
		}
	}
	return r.s.Err
}

// Count cantidad de tokens guardados.
func (r *TokenRepo) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.tokens)
}

// ── Analytics ────────────────────────────────────────────────────────────────

// AnalyticsRepo implementa repository.AnalyticsRepository sobre las facturas en memoria.
type AnalyticsRepo struct{ s *Store }

// StatusTotals agrupa por estado.
func (r *AnalyticsRepo) StatusTotals(_ context.Context, f repository.AnalyticsFilter) ([]repository.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	byStatus := map[entity.InvoiceStatus]*repository.StatusTotal{}
	for _, inv := range r.s.invoices {
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		if f.From != nil && inv.IssuedDate.Before(*f.From) {
			continue
		}
		if f.To != nil && inv.IssuedDate.After(*f.To) {
			continue
		}
		st, ok := byStatus[inv.Status]
		if !ok {
			st = &repository.StatusTotal{Status: inv.Status, Amount: decimal.Zero}
			byStatus[inv.Status] = st
		}
		st.Count++
		st.Amount = st.Amount.Add(inv.AmountTotal)
	}
	out := make([]repository.StatusTotal, 0, len(byStatus))
	for _, st := range byStatus {
		out = append(out, *st)
	}
	return out, nil
}

// MonthlyTotals agrupa por mes de emisión desde since.
func (r *AnalyticsRepo) MonthlyTotals(_ context.Context, clientID string, since time.Time) ([]repository.MonthlyTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	byMonth := map[time.Time]*repository.MonthlyTotal{}
	for _, inv := range r.s.invoices {
		if clientID != "" && inv.ClientID != clientID {
			continue
		}
		if inv.IssuedDate.Before(since) {
			continue
		}
		month := time.Date(inv.IssuedDate.Year(), inv.IssuedDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		mt, ok := byMonth[month]
		if !ok {
			mt = &repository.MonthlyTotal{Month: month, Billed: decimal.Zero, Paid: decimal.Zero}
			byMonth[month] = mt
		}
		mt.Billed = mt.Billed.Add(inv.AmountTotal)
		if inv.Status == entity.InvoiceStatusPaid {
			mt.Paid = mt.Paid.Add(inv.AmountTotal)
		}
	}
	out := make([]repository.MonthlyTotal, 0, len(byMonth))
	for _, mt := range byMonth {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

// CountClients clientes no eliminados.
func (r *AnalyticsRepo) CountClients(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, c := range r.s.clients {
		if c.DeletedAt == nil {
			n++
		}
	}
	return n, r.s.Err
}

// ── Transactions ─────────────────────────────────────────────────────────────

// TxRunner ejecuta los callbacks con los repositorios en memoria (sin rollback).
type TxRunner struct{ s *Store }

// RunBilling implementa billing.BillingTxRunner.
func (t *TxRunner) RunBilling(_ context.Context, fn func(
	seqRepo repository.SequenceRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(&SequenceRepo{t.s}, &ClientRepo{t.s}, &InvoiceRepo{t.s})
}

// RunAccounts implementa usecase.AccountTxRunner.
func (t *TxRunner) RunAccounts(_ context.Context, fn func(
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return fn(&UserRepo{t.s}, &ClientRepo{t.s}, &SequenceRepo{t.s})
}

var (
	_ repository.UserRepository               = (*UserRepo)(nil)
	_ repository.RoleRepository               = (*RoleRepo)(nil)
	_ repository.PermissionRepository         = (*PermissionRepo)(nil)
	_ repository.ClientRepository             = (*ClientRepo)(nil)
	_ repository.InvoiceRepository            = (*InvoiceRepo)(nil)
	_ repository.SequenceRepository           = (*SequenceRepo)(nil)
	_ repository.PasswordResetTokenRepository = (*TokenRepo)(nil)
	_ repository.AnalyticsRepository          = (*AnalyticsRepo)(nil)
)
