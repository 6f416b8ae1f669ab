// Package errs defines the error taxonomy shared across all adamos
// components. Components wrap these sentinels with fmt.Errorf("...: %w", ...)
// so callers can use errors.Is while still getting a descriptive message.
package errs

import "errors"

var (
	// ErrValidation marks malformed input to a component's public entry point.
	ErrValidation = errors.New("validation")

	// ErrPolicyReject marks a policy gate rejection. Wrapped messages always
	// carry the "policy_reject: " prefix.
	ErrPolicyReject = errors.New("policy_reject")

	// ErrNotFound marks a reference to a record or file that does not exist.
	ErrNotFound = errors.New("not_found")

	// ErrConflict marks an attempted write to an existing path whose content
	// would differ from what's already stored there.
	ErrConflict = errors.New("conflict")

	// ErrSchema marks a record that failed structural/schema validation.
	ErrSchema = errors.New("schema")

	// ErrReplayReject marks a replay verification failure. Wrapped messages
	// always carry the "replay_reject: " prefix.
	ErrReplayReject = errors.New("replay_reject")

	// ErrProviderHTTP marks a normalized failure from an inference provider
	// preflight or transport call.
	ErrProviderHTTP = errors.New("provider_http_error")

	// ErrExecute marks any other failure during inference.execute.
	ErrExecute = errors.New("inference_execute_error")
)
