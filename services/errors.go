package services

import "errors"

// Errors shared by services and mapped to HTTP in one place by the handlers.
// Field-level validation failures are returned as models.ValidationErrors.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed     = errors.New("validation failed")
	ErrInvalidStandingsKind = errors.New("unknown standings kind")
	ErrInvalidExportKind    = errors.New("unknown export kind")

	// ErrFinalizeConflict means the score is final; resend with override to replace it.
	ErrFinalizeConflict = errors.New("match score has already been finalized; confirm to override")

	ErrInvalidCredentials = errors.New("invalid operator name or password")
	ErrSessionExpired     = errors.New("console session has expired")
	ErrNoTournament       = errors.New("no tournament selected for this session")

	ErrExportsDisabled = errors.New("exports are disabled: object storage is not configured")
)
