package errortypes

import "errors"

// Severity represents the severity level of an error raised while serving an exchange.
type Severity int

const (
	SeverityUnknown Severity = iota

	// SeverityFatal represents an error which prevents a bid response or a win notice from being processed.
	SeverityFatal

	// SeverityWarning represents a non-fatal problem, such as an agent configuration which
	// is incompatible with one exchange but still usable on others.
	SeverityWarning
)

// IsWarning reports whether err, or an error it wraps, has SeverityWarning.
func IsWarning(err error) bool {
	var coder Coder
	return errors.As(err, &coder) && coder.Severity() == SeverityWarning
}
