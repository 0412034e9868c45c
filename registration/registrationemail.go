package registration

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/Rhymond/go-money"
	"github.com/bremer-sv/camp-registration/camps"
	"github.com/bremer-sv/camp-registration/pricing"
)

//go:embed templates
var templates embed.FS

// deliveryTimeout bounds each mail transport call. The transactional mail
// API occasionally hangs on cold starts; anything slower than this counts
// as a delivery failure.
const deliveryTimeout = 15 * time.Second

const participantSubject = "Anmeldebestätigung Fußballcamp"

// Notifier sends the two mails that follow a persisted registration: the
// confirmation to the participant and the alert to the office mailbox.
// The two sends are independent, a failure of either is reported but never
// unwinds the stored row.
type Notifier struct {
	sender       email.Sender
	fromAddress  string
	staffAddress string
}

func NewNotifier(sender email.Sender, fromAddress string, staffAddress string) *Notifier {
	return &Notifier{
		sender:       sender,
		fromAddress:  fromAddress,
		staffAddress: staffAddress,
	}
}

func (n *Notifier) SendParticipantConfirmation(ctx context.Context, reg Registration, quote pricing.Quote) error {
	body, err := RenderParticipantConfirmation(reg, quote)
	if err != nil {
		return NewDeliveryFailedError("Failed to render the participant confirmation", err)
	}

	return n.send(ctx, reg.Email, participantSubject, body)
}

func (n *Notifier) SendStaffAlert(ctx context.Context, reg Registration, quote pricing.Quote) error {
	body, err := RenderStaffAlert(reg, quote)
	if err != nil {
		return NewDeliveryFailedError("Failed to render the staff alert", err)
	}

	subject := fmt.Sprintf("Neue Anmeldung: %s %s", reg.FirstName, reg.LastName)
	return n.send(ctx, n.staffAddress, subject, body)
}

func (n *Notifier) send(ctx context.Context, toAddress string, subject string, body string) error {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	err := n.sender.SendEmail(ctx, email.Email{
		FromAddress: n.fromAddress,
		ToAddresses: []string{toAddress},
		Subject:     subject,
		TextBody:    body,
	})
	if err != nil {
		return NewDeliveryFailedError(fmt.Sprintf("Failed to send email to %q", toAddress), err)
	}

	return nil
}

// RenderParticipantConfirmation builds the confirmation mail body. Pure,
// unit-testable without a network.
func RenderParticipantConfirmation(reg Registration, quote pricing.Quote) (string, error) {
	return renderTemplate("participant-confirmation.tmpl", reg, quote)
}

// RenderStaffAlert builds the internal notification body for the office.
func RenderStaffAlert(reg Registration, quote pricing.Quote) (string, error) {
	return renderTemplate("staff-alert.tmpl", reg, quote)
}

func renderTemplate(name string, reg Registration, quote pricing.Quote) (string, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"euro":  formatEuro,
		"stamp": func(t time.Time) string { return t.Format("02.01.2006 15:04:05") },
	}).ParseFS(templates, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse email template %q: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Registration": reg,
		"Quote":        quote,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute email template %q: %w", name, err)
	}

	return buf.String(), nil
}

func formatEuro(m *money.Money) string {
	return strings.TrimSuffix(camps.FormatPrice(m), "€") + " €"
}
