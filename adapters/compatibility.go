package adapters

import (
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
)

// FieldOutcome is the result of checking one configuration field.
type FieldOutcome int

const (
	FieldOK FieldOutcome = iota
	// FieldMissing means the key is absent.
	FieldMissing
	// FieldParseError means the key is present but its value has the wrong shape.
	FieldParseError
	// FieldInvalid means the value parsed but breaks a rule (empty, missing a macro...).
	FieldInvalid
)

func (outcome FieldOutcome) String() string {
	switch outcome {
	case FieldOK:
		return "ok"
	case FieldMissing:
		return "missing"
	case FieldParseError:
		return "parse_error"
	case FieldInvalid:
		return "invalid"
	}
	return "unknown"
}

// FieldCheck records one check of one configuration field.
type FieldCheck struct {
	Path    string
	Outcome FieldOutcome
	Reason  string
}

// Compatibility is the verdict of checking an agent configuration (or one of its creatives)
// against an exchange.
//
// Checks accumulate rather than short-circuit, so every problem is reported at once.
// Info carries the exchange-specific snapshot built from whatever parsed.
type Compatibility[T any] struct {
	Compatible bool
	// Reasons explains every failed check. It is only filled in when reasons were requested.
	Reasons []string
	Checks  []FieldCheck
	Info    T

	includeReasons bool
}

type CampaignCompatibility = Compatibility[openrtb_ext.CampaignInfo]

type CreativeCompatibility = Compatibility[openrtb_ext.CreativeInfo]

// NewCompatibility returns a compatible verdict with no checks.
func NewCompatibility[T any](includeReasons bool) Compatibility[T] {
	return Compatibility[T]{
		Compatible:     true,
		includeReasons: includeReasons,
	}
}

// Pass records a check which succeeded.
func (c *Compatibility[T]) Pass(path string) {
	c.Checks = append(c.Checks, FieldCheck{Path: path, Outcome: FieldOK})
}

// Fail records a failed check and makes the verdict incompatible.
func (c *Compatibility[T]) Fail(path string, outcome FieldOutcome, reason string) {
	c.Checks = append(c.Checks, FieldCheck{Path: path, Outcome: outcome, Reason: reason})
	c.Compatible = false
	if c.includeReasons {
		c.Reasons = append(c.Reasons, reason)
	}
}

// Failures returns one *errortypes.ConfigValidation per failed check, for logging.
func (c *Compatibility[T]) Failures() []error {
	var errs []error
	for _, check := range c.Checks {
		if check.Outcome != FieldOK {
			errs = append(errs, &errortypes.ConfigValidation{Message: check.Reason})
		}
	}
	return errs
}
