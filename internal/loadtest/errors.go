package loadtest

import "errors"

// Sentinel kinds for run failures.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrSubmit       = errors.New("submission failed")
	ErrVerification = errors.New("verification failed")
)
