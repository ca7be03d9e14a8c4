// Package validation advances candidates through the validation state
// machine: discovery, equivalence matching, store inspection, red-flag
// evaluation and final disposition.
package validation

import (
	"fmt"

	"supplier-scout/internal/domain"
)

// RuleSet is one deployment's red-flag policy. Rules are evaluated
// independently and all accumulated; evaluation never short-circuits.
// Pick exactly one set per deployment; the strict and lenient sets are never
// merged.
type RuleSet struct {
	Name string

	MinAgeYears     float64 // stores younger than this are flagged
	FlagUnknownAge  bool    // flag when the open date could not be determined
	FeedbackFloor   float64 // feedback below this percentage is flagged
	FlagUnknownFeed bool    // flag when feedback could not be determined
	MaxShippingDays int     // shipping estimates above this are flagged; 0 disables
	FlagUnknownName bool    // flag when the store name could not be determined
}

// StrictRules is the canonical policy: age < 1 year or undeterminable,
// feedback < 95% or undeterminable, shipping estimate > 30 days.
func StrictRules() RuleSet {
	return RuleSet{
		Name:            "strict",
		MinAgeYears:     1.0,
		FlagUnknownAge:  true,
		FeedbackFloor:   95.0,
		FlagUnknownFeed: true,
		MaxShippingDays: 30,
	}
}

// LenientRules is the alternative policy observed in some deployments:
// a 90% feedback floor, missing name/feedback/date treated as flags, and no
// shipping rule.
func LenientRules() RuleSet {
	return RuleSet{
		Name:            "lenient",
		MinAgeYears:     1.0,
		FlagUnknownAge:  true,
		FeedbackFloor:   90.0,
		FlagUnknownFeed: true,
		FlagUnknownName: true,
	}
}

// Evaluate applies every rule to the profile and returns the accumulated
// flags in rule order.
func (r RuleSet) Evaluate(p *domain.StoreProfile, ageYears *float64) []domain.RedFlag {
	var flags []domain.RedFlag

	if r.FlagUnknownName && (p.Name == nil || *p.Name == "") {
		flags = append(flags, domain.RedFlag{
			Code:   domain.FlagUnknownName,
			Reason: "could not determine store name",
		})
	}

	switch {
	case ageYears == nil:
		if r.FlagUnknownAge {
			flags = append(flags, domain.RedFlag{
				Code:   domain.FlagUnknownAge,
				Reason: "could not determine store age",
			})
		}
	case *ageYears < r.MinAgeYears:
		flags = append(flags, domain.RedFlag{
			Code:   domain.FlagYoungStore,
			Reason: fmt.Sprintf("store age < %.0f year (%.1f years)", r.MinAgeYears, *ageYears),
		})
	}

	switch {
	case p.Feedback == nil:
		if r.FlagUnknownFeed {
			flags = append(flags, domain.RedFlag{
				Code:   domain.FlagUnknownFeedback,
				Reason: "could not determine feedback percentage",
			})
		}
	case *p.Feedback < r.FeedbackFloor:
		flags = append(flags, domain.RedFlag{
			Code:   domain.FlagLowFeedback,
			Reason: fmt.Sprintf("feedback < %.0f%% (%.1f%%)", r.FeedbackFloor, *p.Feedback),
		})
	}

	if r.MaxShippingDays > 0 && p.ShippingDays > r.MaxShippingDays {
		flags = append(flags, domain.RedFlag{
			Code:   domain.FlagSlowShipping,
			Reason: fmt.Sprintf("shipping > %d days (%d days)", r.MaxShippingDays, p.ShippingDays),
		})
	}

	return flags
}

// Disposition maps an accumulated flag set to the terminal state.
func Disposition(flags []domain.RedFlag) domain.Disposition {
	if len(flags) == 0 {
		return domain.DispositionValidated
	}
	return domain.DispositionRedFlagged
}
