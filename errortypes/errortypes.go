package errortypes

// BadInput should be used when returning errors which are caused by a bad bid request from the exchange.
// It should _not_ be used if the error is a server-side issue (e.g. a broken agent configuration).
//
// BadInputs will not be written to the app log, since it's not an actionable item for the connector hosts.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}

func (err *BadInput) Severity() Severity {
	return SeverityFatal
}

// MalformedInput should be used when an encrypted win price macro is not a 16 character hex string.
//
// Win notices come from outside the process, so these are rejected rather than treated as fatal.
type MalformedInput struct {
	Message string
}

func (err *MalformedInput) Error() string {
	return err.Message
}

func (err *MalformedInput) Code() int {
	return MalformedInputErrorCode
}

func (err *MalformedInput) Severity() Severity {
	return SeverityFatal
}

// DecodeError should be used when a well-formed win price could not be decrypted into a number.
// This usually points to a misconfigured shared secret or a tampered notice.
type DecodeError struct {
	Message string
}

func (err *DecodeError) Error() string {
	return err.Message
}

func (err *DecodeError) Code() int {
	return DecodeErrorCode
}

func (err *DecodeError) Severity() Severity {
	return SeverityFatal
}

// ConfigValidation describes one reason an agent configuration is incompatible with an exchange.
//
// These are produced from compatibility verdicts and are only ever logged; they never abort a config load.
type ConfigValidation struct {
	Message string
}

func (err *ConfigValidation) Error() string {
	return err.Message
}

func (err *ConfigValidation) Code() int {
	return ConfigValidationWarningCode
}

func (err *ConfigValidation) Severity() Severity {
	return SeverityWarning
}

// AuctionFailure carries the terminal error of an auction which could not produce a result.
type AuctionFailure struct {
	Message string
}

func (err *AuctionFailure) Error() string {
	return err.Message
}

func (err *AuctionFailure) Code() int {
	return AuctionFailureErrorCode
}

func (err *AuctionFailure) Severity() Severity {
	return SeverityFatal
}

// InvariantViolation should be used when a winning response points at a campaign or creative
// which has no exchange-specific data. The auction must never report such a response as a winner.
type InvariantViolation struct {
	Message string
}

func (err *InvariantViolation) Error() string {
	return err.Message
}

func (err *InvariantViolation) Code() int {
	return InvariantViolationErrorCode
}

func (err *InvariantViolation) Severity() Severity {
	return SeverityFatal
}

// FailedToMarshal is used when an outgoing bid response could not be serialized.
type FailedToMarshal struct {
	Message string
}

func (err *FailedToMarshal) Error() string {
	return err.Message
}

func (err *FailedToMarshal) Code() int {
	return FailedToMarshalErrorCode
}

func (err *FailedToMarshal) Severity() Severity {
	return SeverityFatal
}

// FailedToUnmarshal is used when an incoming document could not be decoded.
type FailedToUnmarshal struct {
	Message string
}

func (err *FailedToUnmarshal) Error() string {
	return err.Message
}

func (err *FailedToUnmarshal) Code() int {
	return FailedToUnmarshalErrorCode
}

func (err *FailedToUnmarshal) Severity() Severity {
	return SeverityFatal
}
