package infra

import (
	"bytes"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"tienda/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends the catalog by email. The plain body is echoed as HTML with
// the shop's contact links appended.
type Mailer struct {
	host      string
	user      string
	password  string
	addr      string
	whatsapp  string
	etiqueta  string
	instagram string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:      cfg.SMTPHost,
		user:      cfg.SMTPUser,
		password:  cfg.SMTPPassword,
		addr:      fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		whatsapp:  cfg.WhatsAppURL,
		etiqueta:  cfg.WhatsAppLabel,
		instagram: cfg.InstagramURL,
	}
}

// SendCatalogo mails pdf as catalogo-AAAA-MM-DD.pdf. A nil pdf sends the
// body alone.
func (m *Mailer) SendCatalogo(to, subject, body string, pdf []byte) error {
	if m.host == "" {
		return fmt.Errorf("mailer: SMTP_HOST no configurado")
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body + m.pieTexto())
	e.HTML = []byte(m.cuerpoHTML(body))

	if len(pdf) > 0 {
		nombre := "catalogo-" + time.Now().Format("2006-01-02") + ".pdf"
		if _, err := e.Attach(bytes.NewReader(pdf), nombre, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: adjuntar PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

func (m *Mailer) pieTexto() string {
	var b strings.Builder
	if m.whatsapp != "" {
		fmt.Fprintf(&b, "\n\nWhatsApp: %s", m.whatsapp)
	}
	if m.instagram != "" {
		fmt.Fprintf(&b, "\nInstagram: %s", m.instagram)
	}
	return b.String()
}

func (m *Mailer) cuerpoHTML(body string) string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"))
	b.WriteString("</p>")
	if m.whatsapp != "" {
		etiqueta := m.etiqueta
		if etiqueta == "" {
			etiqueta = "WhatsApp"
		}
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, html.EscapeString(m.whatsapp), html.EscapeString(etiqueta))
	}
	if m.instagram != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Instagram</a></p>`, html.EscapeString(m.instagram))
	}
	return b.String()
}
