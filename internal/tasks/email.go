package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garnizeh/quantumwork/internal/notify"
)

const TypeWelcomeEmail = "email.welcome"

type WelcomePayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Mailer is the part of notify.Notifier the e-mail handlers use.
type Mailer interface {
	Send(ctx context.Context, to, tmpl string, data notify.Data) notify.Result
}

// WelcomeEmailHandler sends the welcome e-mail described by a
// WelcomePayload.
func WelcomeEmailHandler(m Mailer) Handler {
	return func(ctx context.Context, t *Task) error {
		var p WelcomePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return fmt.Errorf("decode welcome payload: %w", err)
		}
		res := m.Send(ctx, p.Email, notify.TemplateWelcome, notify.Data{FullName: p.FullName})
		if !res.Success {
			return errors.New(res.Error)
		}
		return nil
	}
}
