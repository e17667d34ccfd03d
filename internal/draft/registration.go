package draft

import (
	"encoding/json"
	"time"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/fieldmap"
	"github.com/Eursukkul/competition-portal/pkg/validation"
)

const (
	SlotMedicalCertificate = "medical_certificate"
	SlotParentalConsent    = "parental_consent"
	SlotPhoto              = "photo"
)

type Guardian struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Registration is an athlete's entry into a competition.
type Registration struct {
	ID            uint                   `json:"id,omitempty"`
	CompetitionID uint                   `json:"competition_id"`
	FirstName     string                 `json:"first_name"`
	LastName      string                 `json:"last_name"`
	DateOfBirth   Date                   `json:"date_of_birth"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	Club          string                 `json:"club"`
	Programs      *fieldmap.Set[Program] `json:"programs"`
	Guardian      Guardian               `json:"guardian"`
}

func NewRegistration() *Registration {
	return &Registration{Programs: fieldmap.NewSet(Programs()...)}
}

func (r *Registration) UnmarshalJSON(b []byte) error {
	type plain Registration
	next := plain(*NewRegistration())
	if err := json.Unmarshal(b, &next); err != nil {
		return err
	}
	*r = Registration(next)
	if r.Programs == nil {
		r.Programs = fieldmap.NewSet(Programs()...)
	}
	return nil
}

func (r *Registration) SetCompetition(id uint) { r.CompetitionID = id }
func (r *Registration) SetFirstName(v string)  { r.FirstName = v }
func (r *Registration) SetLastName(v string)   { r.LastName = v }
func (r *Registration) SetDateOfBirth(d Date)  { r.DateOfBirth = d }
func (r *Registration) SetEmail(v string)      { r.Email = v }
func (r *Registration) SetPhone(v string)      { r.Phone = v }
func (r *Registration) SetClub(v string)       { r.Club = v }
func (r *Registration) SetGuardianName(v string) {
	r.Guardian.Name = v
}
func (r *Registration) SetGuardianPhone(v string) {
	r.Guardian.Phone = v
}

func (r *Registration) ToggleProgram(p Program) bool { return r.Programs.Toggle(p) }

func RegistrationSlots() *attachment.Set {
	return attachment.NewSet(
		attachment.Slot{Name: SlotMedicalCertificate, Kind: attachment.Single, Ceiling: attachment.DocumentCeiling},
		attachment.Slot{Name: SlotParentalConsent, Kind: attachment.Single, Ceiling: attachment.DocumentCeiling},
		attachment.Slot{Name: SlotPhoto, Kind: attachment.Single, Ceiling: attachment.ImageCeiling},
	)
}

func isMinor(in validation.Input[*Registration]) bool {
	return validation.Minor(in.Model.DateOfBirth.Time, in.Now)
}

// Offer is what a registration needs to know about its competition.
type Offer struct {
	Title    string
	Deadline time.Time
	// Programs lists the programs with a participant cap.
	Programs []Program
}

func (o Offer) offers(p Program) bool {
	for _, v := range o.Programs {
		if v == p {
			return true
		}
	}
	return false
}

// OfferLookup finds the offer of a competition by id.
type OfferLookup func(id uint) (Offer, bool)

func RegistrationEngine(clk clock.Clock) *validation.Engine[*Registration] {
	return RegistrationEngineWith(clk, nil)
}

// offerRule checks the chosen competition against lookup: it must be
// known, still open on the validation day, and offer every chosen program.
func offerRule(lookup OfferLookup) validation.Rule[*Registration] {
	return validation.RuleFunc[*Registration](func(in validation.Input[*Registration]) validation.Failures {
		r := in.Model
		if r.CompetitionID == 0 {
			return nil
		}
		offer, ok := lookup(r.CompetitionID)
		if !ok {
			return validation.Failures{{Field: "competition_id", Message: "Select a competition that is open for registration"}}
		}
		y, m, d := in.Now.Date()
		if time.Date(y, m, d, 0, 0, 0, 0, time.UTC).After(offer.Deadline) {
			return validation.Failures{{Field: "competition_id", Message: "Registration for " + offer.Title + " has closed"}}
		}
		var out validation.Failures
		for _, p := range r.Programs.Values() {
			if !offer.offers(p) {
				out = append(out, validation.Failure{Field: "programs", Message: p.String() + " is not offered at " + offer.Title})
			}
		}
		return out
	})
}

// RegistrationEngineWith adds the competition offer check to step 2 when
// lookup is not nil.
func RegistrationEngineWith(clk clock.Clock, lookup OfferLookup) *validation.Engine[*Registration] {
	type R = *Registration
	clubRules := []validation.Rule[R]{
		validation.AtLeastOne("competition_id", "competition", func(r R) int { return int(r.CompetitionID) }),
		validation.Required("club", "Club", func(r R) string { return r.Club }),
		validation.AtLeastOne("programs", "program", func(r R) int { return r.Programs.Len() }),
	}
	if lookup != nil {
		clubRules = append(clubRules, offerRule(lookup))
	}
	return validation.NewEngine(clk, []validation.Step[R]{
		{ID: 1, Title: "Athlete", Rules: []validation.Rule[R]{
			validation.Required("first_name", "First name", func(r R) string { return r.FirstName }),
			validation.Required("last_name", "Last name", func(r R) string { return r.LastName }),
			validation.RequiredDate("date_of_birth", "Date of birth", func(r R) time.Time { return r.DateOfBirth.Time }),
			validation.Required("email", "Email", func(r R) string { return r.Email }),
			validation.Email("email", "Email", func(r R) string { return r.Email }),
		}},
		{ID: 2, Title: "Club & programs", Rules: clubRules},
		{ID: 3, Title: "Documents", Rules: []validation.Rule[R]{
			validation.RequiredFile[R](SlotMedicalCertificate, "Medical certificate"),
			validation.RequiredIf(SlotParentalConsent, "Parental consent", isMinor),
			validation.When(isMinor,
				validation.RequiredNested("guardian", "name", "name", func(r R) string { return r.Guardian.Name }),
				validation.RequiredNested("guardian", "phone", "phone", func(r R) string { return r.Guardian.Phone }),
			),
		}},
		{ID: 4, Title: "Review"},
	})
}
