package dto

import (
	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/fieldmap"
)

// Attachments flattens the files of set into metadata rows, in slot order.
func Attachments(set *attachment.Set) []models.Attachment {
	if set.IsEmpty() {
		return nil
	}
	var out []models.Attachment
	for _, s := range set.Slots() {
		for _, f := range set.Files(s.Name) {
			out = append(out, models.Attachment{
				Slot:        s.Name,
				Filename:    f.Name,
				ContentType: f.ContentType,
				Size:        f.Size,
			})
		}
	}
	return out
}

func CompetitionModel(c *draft.Competition, set *attachment.Set) *models.Competition {
	return &models.Competition{
		ID:                   c.ID,
		Title:                c.Title,
		Description:          c.Description,
		EventDate:            c.EventDate.Time,
		RegistrationDeadline: c.RegistrationDeadline.Time,
		Location:             c.Location,
		City:                 c.City,
		InsuranceRequired:    c.InsuranceRequired,
		ContactName:          c.Contact.Name,
		ContactPosition:      c.Contact.Position,
		ContactPhone:         c.Contact.Phone,
		ContactEmail:         c.Contact.Email,
		PaymentBank:          c.Payment.Bank,
		PaymentAccount:       c.Payment.Account,
		PaymentHolder:        c.Payment.Holder,
		PaymentSwift:         c.Payment.Swift,
		Categories:           names(c.Categories.Values()),
		Fees:                 table(c.Fees),
		MaxParticipants:      table(c.MaxParticipants),
		Attachments:          Attachments(set),
	}
}

func CompetitionDraft(m *models.Competition) *draft.Competition {
	c := draft.NewCompetition()
	c.ID = m.ID
	c.Title = m.Title
	c.Description = m.Description
	c.EventDate = draft.Date{Time: m.EventDate}
	c.RegistrationDeadline = draft.Date{Time: m.RegistrationDeadline}
	c.Location = m.Location
	c.City = m.City
	c.InsuranceRequired = m.InsuranceRequired
	c.Contact = draft.ContactPerson{Name: m.ContactName, Position: m.ContactPosition, Phone: m.ContactPhone, Email: m.ContactEmail}
	c.Payment = draft.PaymentDetails{Bank: m.PaymentBank, Account: m.PaymentAccount, Holder: m.PaymentHolder, Swift: m.PaymentSwift}
	for _, name := range m.Categories {
		if cat, err := draft.ParseCategory(name); err == nil {
			c.Categories.Add(cat)
		}
	}
	fill(c.Fees, m.Fees)
	fill(c.MaxParticipants, m.MaxParticipants)
	return c
}

func RegistrationModel(r *draft.Registration, set *attachment.Set) *models.Registration {
	return &models.Registration{
		ID:            r.ID,
		CompetitionID: r.CompetitionID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		DateOfBirth:   r.DateOfBirth.Time,
		Email:         r.Email,
		Phone:         r.Phone,
		Club:          r.Club,
		Programs:      names(r.Programs.Values()),
		GuardianName:  r.Guardian.Name,
		GuardianPhone: r.Guardian.Phone,
		Status:        models.StatusSubmitted,
		Attachments:   Attachments(set),
	}
}

func RegistrationDraft(m *models.Registration) *draft.Registration {
	r := draft.NewRegistration()
	r.ID = m.ID
	r.CompetitionID = m.CompetitionID
	r.FirstName = m.FirstName
	r.LastName = m.LastName
	r.DateOfBirth = draft.Date{Time: m.DateOfBirth}
	r.Email = m.Email
	r.Phone = m.Phone
	r.Club = m.Club
	r.Guardian = draft.Guardian{Name: m.GuardianName, Phone: m.GuardianPhone}
	for _, name := range m.Programs {
		if p, err := draft.ParseProgram(name); err == nil {
			r.Programs.Add(p)
		}
	}
	return r
}

func ProfileModel(p *draft.Profile, set *attachment.Set) *models.Profile {
	return &models.Profile{
		ExternalID:      p.ID,
		Role:            string(p.Role),
		FullName:        p.FullName,
		Email:           p.Email,
		Phone:           p.Phone,
		LicenseNumber:   p.LicenseNumber,
		ExperienceYears: p.ExperienceYears,
		Categories:      names(p.Categories.Values()),
		Bio:             p.Bio,
		Attachments:     Attachments(set),
	}
}

func ProfileDraft(m *models.Profile) *draft.Profile {
	p := draft.NewProfile(draft.Role(m.Role))
	p.ID = m.ExternalID
	p.FullName = m.FullName
	p.Email = m.Email
	p.Phone = m.Phone
	p.LicenseNumber = m.LicenseNumber
	p.ExperienceYears = m.ExperienceYears
	p.Bio = m.Bio
	for _, name := range m.Categories {
		if cat, err := draft.ParseCategory(name); err == nil {
			p.Categories.Add(cat)
		}
	}
	return p
}

func names[K fieldmap.Key](keys []K) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func table(m *fieldmap.Map[draft.Program, int]) map[string]int {
	out := make(map[string]int)
	for _, p := range m.Keys() {
		if v := m.Get(p); v != 0 {
			out[p.String()] = v
		}
	}
	return out
}

func fill(m *fieldmap.Map[draft.Program, int], src map[string]int) {
	for name, v := range src {
		if p, err := draft.ParseProgram(name); err == nil {
			m.Set(p, v)
		}
	}
}
