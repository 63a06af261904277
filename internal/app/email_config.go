package app

import (
	"strings"

	"github.com/charlesng35/fitcentre/pkg/mail"
)

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:    c.SMTP.Enabled,
		Host:       strings.TrimSpace(c.SMTP.Host),
		Port:       c.SMTP.Port,
		Username:   c.SMTP.Username,
		Password:   c.SMTP.Password,
		From:       strings.TrimSpace(c.SMTP.From),
		Encryption: strings.ToLower(strings.TrimSpace(c.SMTP.Encryption)),
		Timeout:    c.SMTP.Timeout,
	}
}
