package entity

import "time"

// Permission es un permiso atómico con formato "<modulo>.<accion>" (ej. client.view).
type Permission struct {
	ID          string
	Module      string
	Code        string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
