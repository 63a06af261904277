package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const layout = `<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #222;">
<p>Hi {{.Name}},</p>
{{block "content" .}}{{end}}
<p>The Fit Centre team</p>
</body></html>`

var templates = map[string]string{
	"otp": `{{define "content"}}<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.Validity}}. If you did not request it you can ignore this email.</p>{{end}}`,
	"reset-otp": `{{define "content"}}<p>Use the code <strong>{{.Code}}</strong> to reset your password.</p>
<p>It expires in {{.Validity}}.</p>{{end}}`,
	"reset-link": `{{define "content"}}<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}">Reset your password</a>. The link expires in {{.Validity}}.</p>{{end}}`,
	"password-changed": `{{define "content"}}<p>Your password was reset successfully. If this was not you, contact support immediately.</p>{{end}}`,
}

var parsed = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		tpl := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(tpl.Parse(body))
	}
	return out
}()

type templateData struct {
	Name     string
	Code     string
	Link     string
	Validity string
}

// OTPMessage builds the email carrying a verification code.
func OTPMessage(to, name, code string, validity time.Duration) (Message, error) {
	return render("otp", "Your OTP Code", to, templateData{Name: name, Code: code, Validity: humanize(validity)},
		fmt.Sprintf("Your OTP code is %s. It expires in %s.", code, humanize(validity)))
}

// ResetOTPMessage builds the email carrying a password reset code.
func ResetOTPMessage(to, name, code string, validity time.Duration) (Message, error) {
	return render("reset-otp", "Your Password Reset Code", to, templateData{Name: name, Code: code, Validity: humanize(validity)},
		fmt.Sprintf("Your password reset code is %s. It expires in %s.", code, humanize(validity)))
}

// ResetLinkMessage builds the email carrying a password reset link.
func ResetLinkMessage(to, name, link string, validity time.Duration) (Message, error) {
	return render("reset-link", "Password Reset Request", to, templateData{Name: name, Link: link, Validity: humanize(validity)},
		fmt.Sprintf("Reset your password using this link: %s", link))
}

// PasswordChangedMessage confirms a completed reset.
func PasswordChangedMessage(to, name string) (Message, error) {
	return render("password-changed", "Password Reset Successfully", to, templateData{Name: name},
		"Your password was reset successfully.")
}

func render(name, subject, to string, data templateData, text string) (Message, error) {
	if data.Name == "" {
		data.Name = "there"
	}
	var buf bytes.Buffer
	if err := parsed[name].Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("mail: render %s: %w", name, err)
	}
	return Message{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: buf.String(),
		TextBody: text,
	}, nil
}

func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return "a few minutes"
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
