package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"modapos/internal/config"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host         string
	user         string
	password     string
	addr         string
	nombreTienda string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:         cfg.SMTPHost,
		user:         cfg.SMTPUser,
		password:     cfg.SMTPPassword,
		addr:         fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		nombreTienda: cfg.NombreTienda,
	}
}

// SendComprobante emails the PDF voucher of a sale to the customer.
func (m *Mailer) SendComprobante(to, numeroVenta, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = fmt.Sprintf("%s - Comprobante %s", m.nombreTienda, numeroVenta)
	e.Text = []byte(fmt.Sprintf(
		"Gracias por su compra.\n\nAdjuntamos el comprobante de la venta %s.\n\n%s",
		numeroVenta, m.nombreTienda,
	))

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
