package registration

// EarlyCareOption is the early-care selection on the form. It used to be
// detected by substring-matching the display text, which broke whenever the
// wording changed; the wire format is an explicit enum now.
type EarlyCareOption int

const (
	EARLY_CARE_NONE EarlyCareOption = iota
	EARLY_CARE_FROM_8
)

// Wire values accepted from the form.
const (
	EarlyCareWireNone  = "none"
	EarlyCareWireFrom8 = "early-care"
)

func (o EarlyCareOption) HasSurcharge() bool {
	return o == EARLY_CARE_FROM_8
}

// Label is the display text used in the sheet and the emails.
func (o EarlyCareOption) Label() string {
	switch o {
	case EARLY_CARE_FROM_8:
		return "ab 08:00 Uhr (plus 15 Euro)"
	default:
		return "Keine"
	}
}
