package auth

import (
	"context"
	"time"
)

// AccountNotifier emails de cuenta (invitación y restablecimiento). Fire-and-forget.
type AccountNotifier interface {
	Invite(ctx context.Context, to, name, token string, validFor time.Duration)
	PasswordReset(ctx context.Context, to, name, token string, validFor time.Duration)
}

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}
