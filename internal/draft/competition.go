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
	SlotRegulations = "regulations"
	SlotDocuments   = "documents"
)

type ContactPerson struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type PaymentDetails struct {
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Holder  string `json:"holder"`
	Swift   string `json:"swift"`
}

// Competition is the draft behind the competition create/edit wizard.
type Competition struct {
	ID                   uint                        `json:"id,omitempty"`
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	EventDate            Date                        `json:"event_date"`
	RegistrationDeadline Date                        `json:"registration_deadline"`
	Location             string                      `json:"location"`
	City                 string                      `json:"city"`
	InsuranceRequired    bool                        `json:"insurance_required"`
	Contact              ContactPerson               `json:"contact"`
	Payment              PaymentDetails              `json:"payment"`
	Categories           *fieldmap.Set[Category]     `json:"categories"`
	Fees                 *fieldmap.Map[Program, int] `json:"fees"`
	MaxParticipants      *fieldmap.Map[Program, int] `json:"max_participants"`
}

func NewCompetition() *Competition {
	return &Competition{
		Categories:      fieldmap.NewSet(Categories()...),
		Fees:            fieldmap.New[Program, int](Programs()...),
		MaxParticipants: fieldmap.New[Program, int](Programs()...),
	}
}

// UnmarshalJSON replaces the whole draft; fields missing from the input
// are reset.
func (c *Competition) UnmarshalJSON(b []byte) error {
	type plain Competition
	next := plain(*NewCompetition())
	if err := json.Unmarshal(b, &next); err != nil {
		return err
	}
	*c = Competition(next)
	c.ensure()
	return nil
}

// ensure replaces maps a "null" input left nil.
func (c *Competition) ensure() {
	if c.Categories == nil {
		c.Categories = fieldmap.NewSet(Categories()...)
	}
	if c.Fees == nil {
		c.Fees = fieldmap.New[Program, int](Programs()...)
	}
	if c.MaxParticipants == nil {
		c.MaxParticipants = fieldmap.New[Program, int](Programs()...)
	}
}

func (c *Competition) SetTitle(v string)       { c.Title = v }
func (c *Competition) SetDescription(v string) { c.Description = v }
func (c *Competition) SetEventDate(d Date)     { c.EventDate = d }
func (c *Competition) SetDeadline(d Date)      { c.RegistrationDeadline = d }
func (c *Competition) SetLocation(v string)    { c.Location = v }
func (c *Competition) SetCity(v string)        { c.City = v }
func (c *Competition) SetInsuranceRequired(v bool) {
	c.InsuranceRequired = v
}

func (c *Competition) SetContactName(v string)     { c.Contact.Name = v }
func (c *Competition) SetContactPosition(v string) { c.Contact.Position = v }
func (c *Competition) SetContactPhone(v string)    { c.Contact.Phone = v }
func (c *Competition) SetContactEmail(v string)    { c.Contact.Email = v }

func (c *Competition) SetPaymentBank(v string)    { c.Payment.Bank = v }
func (c *Competition) SetPaymentAccount(v string) { c.Payment.Account = v }
func (c *Competition) SetPaymentHolder(v string)  { c.Payment.Holder = v }
func (c *Competition) SetPaymentSwift(v string)   { c.Payment.Swift = v }

// ToggleCategory flips a category and reports whether it is now selected.
func (c *Competition) ToggleCategory(cat Category) bool { return c.Categories.Toggle(cat) }

func (c *Competition) SetFee(p Program, v int) { c.Fees.Set(p, v) }

// SetFeeInput stores raw form input; anything non-numeric becomes zero.
func (c *Competition) SetFeeInput(p Program, raw string) { c.Fees.SetString(p, raw) }

func (c *Competition) SetMaxParticipants(p Program, v int) { c.MaxParticipants.Set(p, v) }

func (c *Competition) SetMaxParticipantsInput(p Program, raw string) {
	c.MaxParticipants.SetString(p, raw)
}

func (c *Competition) ApplyRecommendedFees(d Defaults) error { return c.Fees.ApplyDefaults(d) }
func (c *Competition) ApplyRecommendedCaps(d Defaults) error {
	return c.MaxParticipants.ApplyDefaults(d)
}

// CompetitionSlots are the files a competition may carry.
func CompetitionSlots() *attachment.Set {
	return attachment.NewSet(
		attachment.Slot{Name: SlotRegulations, Kind: attachment.Single, Ceiling: attachment.DocumentCeiling},
		attachment.Slot{Name: SlotDocuments, Kind: attachment.List, Ceiling: attachment.DocumentCeiling},
	)
}

func eventDate(c *Competition) time.Time { return c.EventDate.Time }
func deadline(c *Competition) time.Time  { return c.RegistrationDeadline.Time }

func CompetitionEngine(clk clock.Clock) *validation.Engine[*Competition] {
	type C = *Competition
	return validation.NewEngine(clk, []validation.Step[C]{
		{ID: 1, Title: "Basics", Rules: []validation.Rule[C]{
			validation.Required("title", "Title", func(c C) string { return c.Title }),
			validation.RequiredDate("event_date", "Event date", eventDate),
			validation.Required("location", "Location", func(c C) string { return c.Location }),
		}},
		{ID: 2, Title: "Registration", Rules: []validation.Rule[C]{
			validation.RequiredDate("registration_deadline", "Registration deadline", deadline),
			validation.Before("registration_deadline", "Registration deadline", "the event date", deadline, eventDate),
			validation.AtLeastOne("categories", "category", func(c C) int { return c.Categories.Len() }),
			validation.AnyNonZero("max_participants", "participant limit", func(c C) bool { return c.MaxParticipants.AnyNonZero() }),
		}},
		{ID: 3, Title: "Fees & payment", Rules: []validation.Rule[C]{
			validation.AnyNonZero("fees", "program fee", func(c C) bool { return c.Fees.AnyNonZero() }),
			validation.RequiredNested("payment", "bank", "bank", func(c C) string { return c.Payment.Bank }),
			validation.RequiredNested("payment", "account", "account number", func(c C) string { return c.Payment.Account }),
			validation.RequiredNested("payment", "holder", "account holder", func(c C) string { return c.Payment.Holder }),
		}},
		{ID: 4, Title: "Contact", Rules: []validation.Rule[C]{
			validation.RequiredNested("contact", "name", "name", func(c C) string { return c.Contact.Name }),
			validation.RequiredNested("contact", "phone", "phone", func(c C) string { return c.Contact.Phone }),
			validation.RequiredNested("contact", "email", "email", func(c C) string { return c.Contact.Email }),
			validation.Email("contact.email", "Contact email", func(c C) string { return c.Contact.Email }),
		}},
		{ID: 5, Title: "Review"},
	})
}

// Offer summarizes the competition for registration checks.
func (c *Competition) Offer() Offer {
	return Offer{
		Title:    c.Title,
		Deadline: c.RegistrationDeadline.Time,
		Programs: c.MaxParticipants.NonZero(),
	}
}
