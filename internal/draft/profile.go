package draft

import (
	"encoding/json"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/fieldmap"
	"github.com/Eursukkul/competition-portal/pkg/validation"
)

const (
	SlotAvatar       = "avatar"
	SlotCertificates = "certificates"
)

type Role string

const (
	RoleCoach Role = "coach"
	RoleJudge Role = "judge"
)

// Profile is a coach or judge profile. It is edited with autosave.
type Profile struct {
	ID              string                  `json:"id,omitempty"`
	Role            Role                    `json:"role"`
	FullName        string                  `json:"full_name"`
	Email           string                  `json:"email"`
	Phone           string                  `json:"phone"`
	LicenseNumber   string                  `json:"license_number"`
	ExperienceYears int                     `json:"experience_years"`
	Categories      *fieldmap.Set[Category] `json:"categories"`
	Bio             string                  `json:"bio"`
}

func NewProfile(role Role) *Profile {
	return &Profile{Role: role, Categories: fieldmap.NewSet(Categories()...)}
}

func (p *Profile) UnmarshalJSON(b []byte) error {
	type plain Profile
	next := plain(*NewProfile(""))
	if err := json.Unmarshal(b, &next); err != nil {
		return err
	}
	*p = Profile(next)
	if p.Categories == nil {
		p.Categories = fieldmap.NewSet(Categories()...)
	}
	return nil
}

// Clone copies the profile so a save can run while editing continues.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Categories = p.Categories.Clone()
	return &c
}

func (p *Profile) SetFullName(v string)      { p.FullName = v }
func (p *Profile) SetEmail(v string)         { p.Email = v }
func (p *Profile) SetPhone(v string)         { p.Phone = v }
func (p *Profile) SetLicenseNumber(v string) { p.LicenseNumber = v }
func (p *Profile) SetExperienceYears(v int)  { p.ExperienceYears = v }
func (p *Profile) SetBio(v string)           { p.Bio = v }

func (p *Profile) ToggleCategory(c Category) bool { return p.Categories.Toggle(c) }

func ProfileSlots() *attachment.Set {
	return attachment.NewSet(
		attachment.Slot{Name: SlotAvatar, Kind: attachment.Single, Ceiling: attachment.ImageCeiling},
		attachment.Slot{Name: SlotCertificates, Kind: attachment.List, Ceiling: attachment.DocumentCeiling},
	)
}

func ProfileEngine(clk clock.Clock) *validation.Engine[*Profile] {
	type P = *Profile
	return validation.NewEngine(clk, []validation.Step[P]{
		{ID: 1, Title: "Profile", Rules: []validation.Rule[P]{
			validation.Required("full_name", "Full name", func(p P) string { return p.FullName }),
			validation.Required("email", "Email", func(p P) string { return p.Email }),
			validation.Email("email", "Email", func(p P) string { return p.Email }),
			validation.Required("role", "Role", func(p P) string { return string(p.Role) }),
			validation.OneOf("role", "Role", []string{string(RoleCoach), string(RoleJudge)}, func(p P) string { return string(p.Role) }),
		}},
		{ID: 2, Title: "Qualifications", Rules: []validation.Rule[P]{
			validation.Required("license_number", "License number", func(p P) string { return p.LicenseNumber }),
			validation.Positive("experience_years", "Experience", func(p P) int { return p.ExperienceYears }),
			validation.AtLeastOne("categories", "category", func(p P) int { return p.Categories.Len() }),
		}},
		{ID: 3, Title: "Review"},
	})
}
