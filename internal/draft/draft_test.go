package draft

import (
	"encoding/json"
	"testing"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = clock.Fixed(clock.Date(2025, 3, 1))

func sampleCompetition() *Competition {
	c := NewCompetition()
	c.SetTitle("Spring Cup")
	c.SetEventDate(NewDate(2025, 6, 15))
	c.SetDeadline(NewDate(2025, 5, 15))
	c.SetLocation("Central Arena")
	c.SetCity("Almaty")
	c.ToggleCategory(CategoryJuniors)
	c.SetFee(ProgramIndividual, 500)
	c.SetMaxParticipants(ProgramIndividual, 3)
	c.SetPaymentBank("First Bank")
	c.SetPaymentAccount("KZ000111")
	c.SetPaymentHolder("Federation")
	c.SetContactName("Dana")
	c.SetContactPhone("+7 700 000 0000")
	c.SetContactEmail("dana@example.com")
	return c
}

func TestCompetition_CompleteRecordEncodesPlain(t *testing.T) {
	c := sampleCompetition()
	set := CompetitionSlots()

	assert.Empty(t, CompetitionEngine(today).ValidateAll(c, set))

	p, err := submission.Encode(c, set)
	require.NoError(t, err)
	assert.Equal(t, submission.EncodingJSON, p.Encoding())
}

func TestCompetition_DeadlineAfterEventIsOnlyFailure(t *testing.T) {
	c := sampleCompetition()
	c.SetDeadline(NewDate(2025, 6, 20))

	f := CompetitionEngine(today).ValidateAll(c, CompetitionSlots())

	require.Len(t, f, 1)
	assert.Equal(t, "registration_deadline", f[0].Field)
	assert.Equal(t, "Registration deadline must be before the event date", f[0].Message)
}

func TestCompetition_OversizedRegulationsKeepPlainEncoding(t *testing.T) {
	c := sampleCompetition()
	set := CompetitionSlots()

	err := set.Accept(SlotRegulations, attachment.File{Name: "rules.pdf", Size: 12 * attachment.MiB})
	assert.ErrorIs(t, err, attachment.ErrTooLarge)
	assert.False(t, set.Has(SlotRegulations))

	p, err := submission.Encode(c, set)
	require.NoError(t, err)
	assert.Equal(t, submission.EncodingJSON, p.Encoding())
}

func TestCompetition_StepRules(t *testing.T) {
	e := CompetitionEngine(today)
	c := NewCompetition()

	f, err := e.ValidateStep(1, c, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "event_date", "location"}, f.Fields())

	f, _ = e.ValidateStep(2, c, nil)
	assert.Equal(t, []string{"registration_deadline", "categories", "max_participants"}, f.Fields())

	f, _ = e.ValidateStep(3, c, nil)
	assert.Equal(t, []string{"fees", "payment.bank", "payment.account", "payment.holder"}, f.Fields())

	c.SetContactEmail("nope")
	f, _ = e.ValidateStep(4, c, nil)
	assert.Equal(t, []string{"contact.name", "contact.phone", "contact.email"}, f.Fields())

	f, _ = e.ValidateStep(5, c, nil)
	assert.Empty(t, f)
}

func TestCompetition_RecommendedDefaults(t *testing.T) {
	c := NewCompetition()
	require.NoError(t, c.ApplyRecommendedFees(DefaultFees))
	require.NoError(t, c.ApplyRecommendedCaps(DefaultCaps))

	assert.Equal(t, 800, c.Fees.Get(ProgramPair))
	assert.Equal(t, 3, c.MaxParticipants.Get(ProgramIndividual))

	c.SetFeeInput(ProgramPair, "free")
	assert.Equal(t, 0, c.Fees.Get(ProgramPair))
	c.SetMaxParticipantsInput(ProgramTeam, "4")
	assert.Equal(t, 4, c.MaxParticipants.Get(ProgramTeam))
}

func TestCompetition_JSON(t *testing.T) {
	c := sampleCompetition()
	b, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "2025-06-15", raw["event_date"])
	assert.Equal(t, []any{"juniors"}, raw["categories"])
	assert.Equal(t, float64(500), raw["fees"].(map[string]any)["individual"])

	back := NewCompetition()
	require.NoError(t, json.Unmarshal(b, back))
	assert.Equal(t, c.EventDate, back.EventDate)
	assert.True(t, back.Categories.Has(CategoryJuniors))
	assert.Equal(t, 3, back.MaxParticipants.Get(ProgramIndividual))
}

func TestCompetition_UnmarshalNullMaps(t *testing.T) {
	var c Competition
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","fees":null}`), &c))
	assert.Equal(t, "X", c.Title)
	require.NotNil(t, c.Fees)
	assert.False(t, c.Fees.AnyNonZero())
	require.NotNil(t, c.Categories)
}

func TestCompetition_UnmarshalUnknownProgram(t *testing.T) {
	var c Competition
	err := json.Unmarshal([]byte(`{"fees":{"solo":100}}`), &c)
	assert.Error(t, err)
}

func sampleRegistration(dob Date) *Registration {
	r := NewRegistration()
	r.SetCompetition(1)
	r.SetFirstName("Aru")
	r.SetLastName("Sak")
	r.SetDateOfBirth(dob)
	r.SetEmail("aru@example.com")
	r.SetClub("Falcons")
	r.ToggleProgram(ProgramPair)
	return r
}

func TestRegistration_ParentalConsentForMinors(t *testing.T) {
	r := sampleRegistration(NewDate(2010, 6, 15))
	set := RegistrationSlots()
	require.NoError(t, set.Accept(SlotMedicalCertificate, attachment.File{Name: "med.pdf", Size: 1000}))

	dayBefore := RegistrationEngine(clock.Fixed(clock.Date(2028, 6, 14)))
	f, err := dayBefore.ValidateStep(3, r, set)
	require.NoError(t, err)
	assert.Equal(t, []string{SlotParentalConsent, "guardian.name", "guardian.phone"}, f.Fields())

	birthday := RegistrationEngine(clock.Fixed(clock.Date(2028, 6, 15)))
	f, _ = birthday.ValidateStep(3, r, set)
	assert.Empty(t, f)
}

func TestRegistration_MinorWithConsent(t *testing.T) {
	r := sampleRegistration(NewDate(2012, 1, 1))
	r.SetGuardianName("Mira")
	r.SetGuardianPhone("+7 701 000 0000")
	set := RegistrationSlots()
	require.NoError(t, set.Accept(SlotMedicalCertificate, attachment.File{Name: "med.pdf", Size: 1000}))
	require.NoError(t, set.Accept(SlotParentalConsent, attachment.File{Name: "consent.pdf", Size: 1000}))

	assert.Empty(t, RegistrationEngine(today).ValidateAll(r, set))

	p, err := submission.Encode(r, set)
	require.NoError(t, err)
	assert.Equal(t, submission.EncodingMultipart, p.Encoding())
}

func TestRegistration_PhotoCeiling(t *testing.T) {
	set := RegistrationSlots()
	assert.ErrorIs(t, set.Accept(SlotPhoto, attachment.File{Size: 3 * attachment.MiB}), attachment.ErrTooLarge)
	assert.NoError(t, set.Accept(SlotPhoto, attachment.File{Size: 2 * attachment.MiB}))
}

func TestRegistration_StepTwo(t *testing.T) {
	f, _ := RegistrationEngine(today).ValidateStep(2, NewRegistration(), nil)
	assert.Equal(t, []string{"competition_id", "club", "programs"}, f.Fields())
}

func TestProfile_Rules(t *testing.T) {
	e := ProfileEngine(today)

	p := NewProfile("referee")
	p.SetExperienceYears(-1)
	f, _ := e.ValidateStep(1, p, nil)
	assert.Equal(t, []string{"full_name", "email", "role"}, f.Fields())

	f, _ = e.ValidateStep(2, p, nil)
	assert.Equal(t, []string{"license_number", "experience_years", "categories"}, f.Fields())

	p = NewProfile(RoleJudge)
	p.SetFullName("Erlan")
	p.SetEmail("erlan@example.com")
	p.SetLicenseNumber("J-001")
	p.ToggleCategory(CategorySeniors)
	assert.Empty(t, e.ValidateAll(p, ProfileSlots()))
}

func TestProfile_Clone(t *testing.T) {
	p := NewProfile(RoleCoach)
	p.ToggleCategory(CategoryYouth)
	c := p.Clone()
	p.ToggleCategory(CategoryYouth)
	p.SetBio("changed")

	assert.True(t, c.Categories.Has(CategoryYouth))
	assert.Empty(t, c.Bio)
}

func TestParseDefaults(t *testing.T) {
	d, err := ParseDefaults("individual=400, team = 1800,")
	require.NoError(t, err)
	assert.Equal(t, Defaults{ProgramIndividual: 400, ProgramTeam: 1800}, d)

	_, err = ParseDefaults("solo=1")
	assert.Error(t, err)
	_, err = ParseDefaults("pair")
	assert.Error(t, err)
	_, err = ParseDefaults("pair=-1")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, 6, 15), d)

	d, err = ParseDate("2025-06-15T23:00:00+05:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", d.String())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("15/06/2025")
	assert.Error(t, err)

	var holder struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &holder))
	assert.True(t, holder.D.IsZero())
	b, _ := json.Marshal(holder)
	assert.Equal(t, `{"d":""}`, string(b))
}

func TestRegistration_OfferLookup(t *testing.T) {
	offer := sampleCompetition().Offer()
	lookup := func(id uint) (Offer, bool) { return offer, id == 1 }

	r := sampleRegistration(NewDate(1990, 1, 1))
	f, _ := RegistrationEngineWith(today, lookup).ValidateStep(2, r, nil)
	assert.Equal(t, []string{"programs"}, f.Fields())
	assert.Equal(t, "pair is not offered at Spring Cup", f[0].Message)

	r.ToggleProgram(ProgramPair)
	r.ToggleProgram(ProgramIndividual)
	f, _ = RegistrationEngineWith(today, lookup).ValidateStep(2, r, nil)
	assert.Empty(t, f)

	onDeadline := clock.Fixed(clock.Date(2025, 5, 15))
	f, _ = RegistrationEngineWith(onDeadline, lookup).ValidateStep(2, r, nil)
	assert.Empty(t, f)

	dayAfter := clock.Fixed(clock.Date(2025, 5, 16))
	f, _ = RegistrationEngineWith(dayAfter, lookup).ValidateStep(2, r, nil)
	require.Len(t, f, 1)
	assert.Equal(t, "Registration for Spring Cup has closed", f[0].Message)

	r.SetCompetition(2)
	f, _ = RegistrationEngineWith(today, lookup).ValidateStep(2, r, nil)
	assert.Equal(t, []string{"competition_id"}, f.Fields())
}
