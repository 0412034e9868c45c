package registration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// FormInput is the raw submission exactly as it arrives from the form,
// before any predicate has run. Everything is a string except the consent
// flag, mirroring the wire format.
type FormInput struct {
	CampName       string
	FirstName      string
	LastName       string
	Age            string
	EmergencyPhone string
	Email          string
	EarlyCare      string
	Allergies      string
	Remark         string
	TermsAccepted  bool
}

// NewRegistrationFromForm runs every required-field predicate in a fixed
// order and reports the first violation as an INVALID_FIELD error. A
// Registration is only built once all predicates pass, so no side effect
// can ever observe a half-valid submission.
func NewRegistrationFromForm(form FormInput, now time.Time) (Registration, error) {
	campName := strings.TrimSpace(form.CampName)
	if campName == "" {
		return Registration{}, NewInvalidFieldError("campName", "Bitte ein Camp auswählen")
	}

	firstName := strings.TrimSpace(form.FirstName)
	if firstName == "" {
		return Registration{}, NewInvalidFieldError("firstName", "Bitte alle Pflichtfelder ausfüllen")
	}

	lastName := strings.TrimSpace(form.LastName)
	if lastName == "" {
		return Registration{}, NewInvalidFieldError("lastName", "Bitte alle Pflichtfelder ausfüllen")
	}

	age, err := strconv.Atoi(strings.TrimSpace(form.Age))
	if err != nil || age <= 0 {
		return Registration{}, NewInvalidFieldError("age", "Alter bitte nur als Zahl angeben")
	}

	phone := strings.TrimSpace(form.EmergencyPhone)
	if !validPhone(phone) {
		return Registration{}, NewInvalidFieldError("emergencyPhone", "Ungültige Telefonnummer")
	}

	emailAddr := strings.TrimSpace(form.Email)
	if !validEmail(emailAddr) {
		return Registration{}, NewInvalidFieldError("email", "Ungültige E-Mail-Adresse")
	}

	earlyCare, err := earlyCareFromWire(form.EarlyCare)
	if err != nil {
		return Registration{}, NewInvalidFieldError("earlyCare", "Ungültige Frühbetreuungs-Auswahl")
	}

	if !form.TermsAccepted {
		return Registration{}, NewInvalidFieldError("termsAccepted", "Bitte bestätige die AGB, bevor du fortfährst")
	}

	allergies := strings.TrimSpace(form.Allergies)
	if allergies == "" {
		allergies = DefaultAllergies
	}

	remark := strings.TrimSpace(form.Remark)
	if remark == "" {
		remark = DefaultRemark
	}

	return Registration{
		ID:             uuid.New(),
		CampName:       campName,
		FirstName:      firstName,
		LastName:       lastName,
		Age:            age,
		EmergencyPhone: phone,
		Email:          emailAddr,
		EarlyCare:      earlyCare,
		Allergies:      allergies,
		Remark:         remark,
		SubmittedAt:    now,
	}, nil
}

// validPhone accepts digits plus the usual separators, at least 6
// characters long. Deliberately permissive, parents enter anything from
// "0170 1234567" to "+49 (0)421 / 396 1768" minus the slashes.
func validPhone(phone string) bool {
	if len(strings.TrimSpace(phone)) < 6 {
		return false
	}

	for _, r := range phone {
		if !unicode.IsDigit(r) && !strings.ContainsRune(" +-()", r) {
			return false
		}
	}

	return true
}

func validEmail(addr string) bool {
	return strings.Contains(addr, "@") && strings.Contains(addr, ".")
}

func earlyCareFromWire(v string) (EarlyCareOption, error) {
	switch v {
	case EarlyCareWireNone:
		return EARLY_CARE_NONE, nil
	case EarlyCareWireFrom8:
		return EARLY_CARE_FROM_8, nil
	default:
		return EARLY_CARE_NONE, fmt.Errorf("unknown early care option: %q", v)
	}
}
