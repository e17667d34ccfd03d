package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func single(field, msg string) Failures {
	return Failures{{Field: field, Message: msg}}
}

// Required fails when the string is blank.
func Required[M any](field, label string, get func(M) string) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if strings.TrimSpace(get(in.Model)) == "" {
			return single(field, label+" is required")
		}
		return nil
	})
}

// RequiredNested is Required for a field inside a nested group, e.g. the
// contact person's phone.
func RequiredNested[M any](group, field, label string, get func(M) string) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if strings.TrimSpace(get(in.Model)) == "" {
			return single(group+"."+field, fmt.Sprintf("%s: %s is required", group, label))
		}
		return nil
	})
}

// RequiredDate fails on the zero time.
func RequiredDate[M any](field, label string, get func(M) time.Time) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if get(in.Model).IsZero() {
			return single(field, label+" is required")
		}
		return nil
	})
}

// Email fails when a non-blank value is not shaped like an address. A blank
// value is left to Required.
func Email[M any](field, label string, get func(M) string) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		v := strings.TrimSpace(get(in.Model))
		if v == "" {
			return nil
		}
		if err := validate.Var(v, "email"); err != nil {
			return single(field, label+" must be a valid email address")
		}
		return nil
	})
}

// Before requires first to be strictly earlier than second. It is skipped
// while either date is unset.
func Before[M any](field, firstLabel, secondLabel string, first, second func(M) time.Time) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		a, b := first(in.Model), second(in.Model)
		if a.IsZero() || b.IsZero() {
			return nil
		}
		if !a.Before(b) {
			return single(field, fmt.Sprintf("%s must be before %s", firstLabel, secondLabel))
		}
		return nil
	})
}

// AtLeastOne requires count to be positive, e.g. selected categories.
func AtLeastOne[M any](field, label string, count func(M) int) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if count(in.Model) < 1 {
			return single(field, "select at least one "+label)
		}
		return nil
	})
}

// AnyNonZero requires at least one entry of a field map to be non-zero.
func AnyNonZero[M any](field, label string, anyNonZero func(M) bool) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if !anyNonZero(in.Model) {
			return single(field, fmt.Sprintf("at least one %s must be greater than zero", label))
		}
		return nil
	})
}

// Positive fails when a number is below zero.
func Positive[M any](field, label string, get func(M) int) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if get(in.Model) < 0 {
			return single(field, label+" cannot be negative")
		}
		return nil
	})
}

// RequiredFile fails when the attachment slot is empty.
func RequiredFile[M any](slot, label string) Rule[M] {
	return RequiredIf[M](slot, label, func(Input[M]) bool { return true })
}

// RequiredIf makes an attachment slot required only while when holds,
// e.g. a parental consent form for minors.
func RequiredIf[M any](slot, label string, when func(Input[M]) bool) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if !when(in) {
			return nil
		}
		if !in.Attachments.Has(slot) {
			return single(slot, label+" is required")
		}
		return nil
	})
}

// OneOf fails when a non-blank value is outside the allowed words.
func OneOf[M any](field, label string, allowed []string, get func(M) string) Rule[M] {
	tag := "oneof=" + strings.Join(allowed, " ")
	return RuleFunc[M](func(in Input[M]) Failures {
		v := strings.TrimSpace(get(in.Model))
		if v == "" {
			return nil
		}
		if err := validate.Var(v, tag); err != nil {
			return single(field, fmt.Sprintf("%s must be one of: %s", label, strings.Join(allowed, ", ")))
		}
		return nil
	})
}

// When applies rules only while cond holds.
func When[M any](cond func(Input[M]) bool, rules ...Rule[M]) Rule[M] {
	return RuleFunc[M](func(in Input[M]) Failures {
		if !cond(in) {
			return nil
		}
		return run(rules, in)
	})
}
