package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	SubjectVerifyEmail   = "Verify your TaskHub email"
	SubjectResetPassword = "Reset your TaskHub password"
)

type linkData struct {
	Name string
	Link string
}

// VerificationEmail renders the email carrying the verification link.
func VerificationEmail(appURL, name, token string) (subject, body string, err error) {
	body, err = render("verify_email.html", name, link(appURL, "/verify-email", token))
	return SubjectVerifyEmail, body, err
}

// ResetPasswordEmail renders the email carrying the password reset link.
func ResetPasswordEmail(appURL, name, token string) (subject, body string, err error) {
	body, err = render("reset_password.html", name, link(appURL, "/reset-password", token))
	return SubjectResetPassword, body, err
}

func link(appURL, path, token string) string {
	return strings.TrimRight(appURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func render(name, user, href string) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, linkData{Name: user, Link: href}); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return buf.String(), nil
}
