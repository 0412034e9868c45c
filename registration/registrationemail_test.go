package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/bremer-sv/camp-registration/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReg() Registration {
	return Registration{
		ID:             uuid.New(),
		CampName:       "Sommercamp 2026",
		FirstName:      "Max",
		LastName:       "Mustermann",
		Age:            9,
		EmergencyPhone: "0421 123456",
		Email:          "eltern@example.com",
		EarlyCare:      EARLY_CARE_NONE,
		Allergies:      DefaultAllergies,
		Remark:         DefaultRemark,
		SubmittedAt:    time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC),
	}
}

func quoteWithoutSurcharge() pricing.Quote {
	base := money.New(12000, money.EUR)
	return pricing.Quote{
		Base:      base,
		Surcharge: money.New(0, money.EUR),
		Total:     base,
	}
}

func quoteWithSurcharge() pricing.Quote {
	return pricing.Quote{
		Base:      money.New(12000, money.EUR),
		Surcharge: money.New(1500, money.EUR),
		Total:     money.New(13500, money.EUR),
	}
}

func TestRenderParticipantConfirmation(t *testing.T) {
	t.Run("contains the registration data", func(t *testing.T) {
		body, err := RenderParticipantConfirmation(testReg(), quoteWithoutSurcharge())
		require.NoError(t, err)

		assert.Contains(t, body, "Hallo Max,")
		assert.Contains(t, body, "Camp: Sommercamp 2026")
		assert.Contains(t, body, "Nachname: Mustermann")
		assert.Contains(t, body, "Alter: 9")
		assert.Contains(t, body, "Telefon (Notfall): 0421 123456")
		assert.Contains(t, body, "E-Mail: eltern@example.com")
		assert.Contains(t, body, "Keine")
		assert.Contains(t, body, "Grundpreis: 120,00 €")
		assert.Contains(t, body, "Gesamtbetrag: 120,00 €")
		assert.Contains(t, body, "Eingegangen am: 01.06.2026 14:30:00")
		assert.Contains(t, body, "Bremer Sport-Verein 1906 e.V.")
	})

	t.Run("no surcharge line without early care", func(t *testing.T) {
		body, err := RenderParticipantConfirmation(testReg(), quoteWithoutSurcharge())
		require.NoError(t, err)

		assert.NotContains(t, body, "Frühbetreuung: +")
	})

	t.Run("surcharge line with early care", func(t *testing.T) {
		reg := testReg()
		reg.EarlyCare = EARLY_CARE_FROM_8

		body, err := RenderParticipantConfirmation(reg, quoteWithSurcharge())
		require.NoError(t, err)

		assert.Contains(t, body, "ab 08:00 Uhr (plus 15 Euro)")
		assert.Contains(t, body, "Frühbetreuung: +15,00 €")
		assert.Contains(t, body, "Gesamtbetrag: 135,00 €")
	})
}

func TestRenderStaffAlert(t *testing.T) {
	t.Run("contains the registration data", func(t *testing.T) {
		reg := testReg()
		reg.Allergies = "Erdnüsse"

		body, err := RenderStaffAlert(reg, quoteWithoutSurcharge())
		require.NoError(t, err)

		assert.Contains(t, body, "Neue Anmeldung für das Fußballcamp!")
		assert.Contains(t, body, "Vorname: Max")
		assert.Contains(t, body, "Nachname: Mustermann")
		assert.Contains(t, body, "Camp: Sommercamp 2026")
		assert.Contains(t, body, "Allergien/Besonderheiten: Erdnüsse")
		assert.Contains(t, body, "Zeit: 01.06.2026 14:30:00")
	})

	t.Run("surcharge line only with early care", func(t *testing.T) {
		body, err := RenderStaffAlert(testReg(), quoteWithoutSurcharge())
		require.NoError(t, err)
		assert.NotContains(t, body, "Frühbetreuung: +")

		body, err = RenderStaffAlert(testReg(), quoteWithSurcharge())
		require.NoError(t, err)
		assert.Contains(t, body, "Frühbetreuung: +15,00 €")
	})
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("participant confirmation goes to the registrant", func(t *testing.T) {
		sender := &recordingSender{}
		n := NewNotifier(sender, testFromAddress, testStaffAddress)

		require.NoError(t, n.SendParticipantConfirmation(ctx, testReg(), quoteWithoutSurcharge()))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{"eltern@example.com"}, sender.sent[0].ToAddresses)
		assert.Equal(t, testFromAddress, sender.sent[0].FromAddress)
		assert.Equal(t, "Anmeldebestätigung Fußballcamp", sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].TextBody, "Hallo Max,")
	})

	t.Run("staff alert goes to the office with the participant name in the subject", func(t *testing.T) {
		sender := &recordingSender{}
		n := NewNotifier(sender, testFromAddress, testStaffAddress)

		require.NoError(t, n.SendStaffAlert(ctx, testReg(), quoteWithoutSurcharge()))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{testStaffAddress}, sender.sent[0].ToAddresses)
		assert.Equal(t, "Neue Anmeldung: Max Mustermann", sender.sent[0].Subject)
	})

	t.Run("transport failures come back as delivery errors", func(t *testing.T) {
		sender := &recordingSender{
			failOn: map[string]error{"eltern@example.com": errors.New("connection reset")},
		}
		n := NewNotifier(sender, testFromAddress, testStaffAddress)

		err := n.SendParticipantConfirmation(ctx, testReg(), quoteWithoutSurcharge())
		require.Error(t, err)

		var regErr *Error
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, REASON_DELIVERY_FAILED, regErr.Reason)
	})
}
