// errors.go: the storecore error taxonomy.
//
// InvalidKey, ObsoleteVersion, NoSuchCapability, Unsupported and
// OperationFailed each have a constructor here, built on
// github.com/agilira/go-errors so callers get stable error codes, rich
// context, and retryability — the same discipline the teacher library
// uses for its own cache errors. There is no EvaluationError constructor:
// expression-evaluator failures are plain errors that the engine logs and
// treats as a false predicate.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package storecore

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for storecore operations.
const (
	// ErrCodeInvalidKey marks a null or otherwise rejected key.
	ErrCodeInvalidKey errors.ErrorCode = "STORECORE_INVALID_KEY"

	// ErrCodeObsoleteVersion marks a put whose version is strictly
	// dominated by an existing version of that key.
	ErrCodeObsoleteVersion errors.ErrorCode = "STORECORE_OBSOLETE_VERSION"

	// ErrCodeNoSuchCapability marks a capability lookup the store does
	// not implement.
	ErrCodeNoSuchCapability errors.ErrorCode = "STORECORE_NO_SUCH_CAPABILITY"

	// ErrCodeUnsupported marks an operation the store cannot perform,
	// such as expression deletion without a registered key serializer.
	ErrCodeUnsupported errors.ErrorCode = "STORECORE_UNSUPPORTED"

	// ErrCodeOperationFailed is the generic wrapping code for callers;
	// it always accompanies an EXCEPTION sample in any registered stats.
	ErrCodeOperationFailed errors.ErrorCode = "STORECORE_OPERATION_FAILED"
)

const (
	msgInvalidKey        = "invalid key"
	msgObsoleteVersion   = "put rejected: version is obsolete"
	msgNoSuchCapability  = "capability not implemented"
	msgUnsupported       = "operation not supported"
	msgOperationFailed   = "operation failed"
)

// NewErrInvalidKey reports a null or otherwise rejected key.
func NewErrInvalidKey(operation string) error {
	return errors.NewWithField(ErrCodeInvalidKey, msgInvalidKey, "operation", operation)
}

// NewErrObsoleteVersion reports that newVersion is dominated by an
// existing version already stored for key.
func NewErrObsoleteVersion(key interface{}) error {
	return errors.NewWithContext(ErrCodeObsoleteVersion, msgObsoleteVersion, map[string]interface{}{
		"key": fmt.Sprintf("%v", key),
	}).AsRetryable() // caller may retry against the current version
}

// NewErrNoSuchCapability reports a capability tag the store has no
// provider for.
func NewErrNoSuchCapability(tag string) error {
	return errors.NewWithField(ErrCodeNoSuchCapability, msgNoSuchCapability, "capability", tag)
}

// NewErrUnsupported reports an operation the store cannot perform, with
// reason explaining why (e.g. "no key serializer registered").
func NewErrUnsupported(operation, reason string) error {
	return errors.NewWithContext(ErrCodeUnsupported, msgUnsupported, map[string]interface{}{
		"operation": operation,
		"reason":    reason,
	})
}

// NewErrOperationFailed wraps cause as a generic operation failure.
// Wrapper layers use this to report internal faults without inventing a
// new taxonomy entry for every failure mode.
func NewErrOperationFailed(operation string, cause error) error {
	if cause == nil {
		return errors.NewWithField(ErrCodeOperationFailed, msgOperationFailed, "operation", operation)
	}
	return errors.Wrap(cause, ErrCodeOperationFailed, msgOperationFailed).
		WithContext("operation", operation)
}

// IsInvalidKey reports whether err is (or wraps) an invalid-key error.
func IsInvalidKey(err error) bool { return errors.HasCode(err, ErrCodeInvalidKey) }

// IsObsoleteVersion reports whether err is (or wraps) an obsolete-version
// error — the signal the stat-tracking wrapper uses to additionally bump
// the OBSOLETE stats kind.
func IsObsoleteVersion(err error) bool { return errors.HasCode(err, ErrCodeObsoleteVersion) }

// IsNoSuchCapability reports whether err is (or wraps) a no-such-capability
// error.
func IsNoSuchCapability(err error) bool { return errors.HasCode(err, ErrCodeNoSuchCapability) }

// IsUnsupported reports whether err is (or wraps) an unsupported-operation
// error.
func IsUnsupported(err error) bool { return errors.HasCode(err, ErrCodeUnsupported) }

// GetErrorCode extracts the stable error code from err, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}
