// Package errors defines the error kinds shared by every layer.
// Callers attach details with fmt.Errorf("%w: ...", kind) and match with errors.Is.
package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kinds surfaced to clients.
var (
	ErrInvalidInput        = fmt.Errorf("invalid input")
	ErrUnauthorized        = fmt.Errorf("unauthorized")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrUnknownReceiver     = fmt.Errorf("receiver not found")
	ErrMissingPeer         = fmt.Errorf("missing peer")
	ErrNotFoundOrForbidden = fmt.Errorf("not found or not allowed")
	ErrStoreUnavailable    = fmt.Errorf("store unavailable")
)

// Repository level errors, translated by the services.
var (
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrSessionNotFound   = fmt.Errorf("session not found")
	ErrMessageNotFound   = fmt.Errorf("message not found")
	ErrTokenGeneration   = fmt.Errorf("token generation failed")
)

// Kind is the stable, client-facing name of an error.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindUnauthorized        Kind = "unauthorized"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindUnknownReceiver     Kind = "unknown_receiver"
	KindMissingPeer         Kind = "missing_peer"
	KindNotFoundOrForbidden Kind = "not_found_or_forbidden"
	KindStoreUnavailable    Kind = "store_unavailable"
	KindInternal            Kind = "internal_error"
)

type kindMapping struct {
	err     error
	kind    Kind
	code    codes.Code
	message string
}

// Order matters: the first matching sentinel wins.
var mappings = []kindMapping{
	{ErrInvalidInput, KindInvalidInput, codes.InvalidArgument, "Invalid input"},
	{ErrUnauthorized, KindUnauthorized, codes.Unauthenticated, "Unauthorized"},
	{ErrSessionNotFound, KindUnauthorized, codes.Unauthenticated, "Unauthorized"},
	{ErrInvalidCredentials, KindInvalidCredentials, codes.Unauthenticated, "Invalid credentials"},
	{ErrUnknownReceiver, KindUnknownReceiver, codes.NotFound, "Receiver not found"},
	{ErrMissingPeer, KindMissingPeer, codes.InvalidArgument, "Missing peer"},
	{ErrNotFoundOrForbidden, KindNotFoundOrForbidden, codes.NotFound, "Not found or not allowed"},
	{ErrStoreUnavailable, KindStoreUnavailable, codes.Unavailable, "Service temporarily unavailable"},
}

// Classify returns the client-facing kind and a coarse message for err.
// Unknown errors are reported as internal without their text.
func Classify(err error) (Kind, string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.kind, m.message
		}
	}
	return KindInternal, "An internal error occurred"
}

// MapToGRPCError converts a domain error into a gRPC status error.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.message)
		}
	}
	return status.Error(codes.Internal, "An internal error occurred")
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unavailable marks a storage failure. The cause stays in the chain for logs
// but never reaches clients.
func Unavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, cause)
}
