// Package errdefs defines the typed errors shared by the provider
// clients and the HTTP boundary.
//
// Provider clients never swallow errors: they wrap remote failures into
// one of these types and surface them upward. The orchestration layer
// inspects them only to decide rollback behavior, and the HTTP boundary
// converts them to status codes with errors.As.
package errdefs

import "fmt"

// NotConfiguredError indicates that a provider has no usable credential
// at all (e.g. no Todoist API token was supplied).
type NotConfiguredError struct {
	Service string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Service)
}

// MissingCredentialError indicates that no credential is stored for the
// requested account id.
type MissingCredentialError struct {
	AccountID string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no credential found for account %s", e.AccountID)
}

// AuthExchangeError indicates that an OAuth authorization code could
// not be exchanged for tokens (invalid, expired, or already used).
type AuthExchangeError struct {
	Err error
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange failed: %v", e.Err)
}

func (e *AuthExchangeError) Unwrap() error { return e.Err }

// PermissionDeniedError indicates a mutation attempt on a calendar
// event the account does not organize.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string { return e.Reason }

// ProviderRequestError wraps any remote transport or HTTP failure from
// a provider. The remote message is preserved so it can be surfaced to
// the user where safe.
type ProviderRequestError struct {
	Provider string
	Err      error
}

func (e *ProviderRequestError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderRequestError) Unwrap() error { return e.Err }

// ValidationError indicates a missing or malformed required input
// field on a boundary request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
