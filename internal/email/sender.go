package email

import (
	"context"
	"fmt"
	"time"
)

// Sender entrega el código de verificación al learner. La expiración viaja
// junto con el código para que el template pueda mostrarla.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

// disabledSender ocupa el lugar del SMTP cuando falta configuración; cada
// intento de envío falla explicando por qué, en vez de un nil silencioso.
type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	if reason == "" {
		reason = "email delivery not configured"
	}
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	return fmt.Errorf("email sender disabled: %s", s.reason)
}
