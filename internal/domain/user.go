package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role es una enumeración cerrada: un rol desconocido es un error de
// construcción, no un string que viaja silencioso hasta el pipeline.
type Role string

const (
	RoleLearner Role = "learner"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// ParseRole valida y normaliza un rol recibido desde afuera.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleLearner:
		return RoleLearner, nil
	case RoleTutor:
		return RoleTutor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name,omitempty"`
	Role            Role       `json:"role"`
	Track           string     `json:"track,omitempty"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	OtpCodeHash     string     `json:"-"`
	OtpExpiresAt    *time.Time `json:"otp_expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
