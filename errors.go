// errors.go: comprehensive error handling for strata cache operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all cache operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for Strata cache operations
const (
	// Operation errors
	ErrCodeSizeLimitExceeded errors.ErrorCode = "STRATA_SIZE_LIMIT_EXCEEDED"
	ErrCodeEmptyKey          errors.ErrorCode = "STRATA_EMPTY_KEY"
	ErrCodeCacheClosed       errors.ErrorCode = "STRATA_CACHE_CLOSED"

	// Codec errors
	ErrCodeEncodeFailed errors.ErrorCode = "STRATA_ENCODE_FAILED"
	ErrCodeDecodeFailed errors.ErrorCode = "STRATA_DECODE_FAILED"

	// Loader errors
	ErrCodeLoaderFailed   errors.ErrorCode = "STRATA_LOADER_FAILED"
	ErrCodeInvalidLoader  errors.ErrorCode = "STRATA_INVALID_LOADER"
	ErrCodePanicRecovered errors.ErrorCode = "STRATA_PANIC_RECOVERED"

	// Persistence errors
	ErrCodeSaveFailed    errors.ErrorCode = "STRATA_SAVE_FAILED"
	ErrCodeLoadFailed    errors.ErrorCode = "STRATA_LOAD_FAILED"
	ErrCodeCorruptedData errors.ErrorCode = "STRATA_CORRUPTED_DATA"
)

// Common error messages
const (
	msgSizeLimitExceeded = "encoded entry size exceeds the configured maximum"
	msgEmptyKey          = "key cannot be empty"
	msgCacheClosed       = "cache has been closed"
	msgEncodeFailed      = "failed to encode value through the codec pipeline"
	msgDecodeFailed      = "failed to decode stored payload"
	msgLoaderFailed      = "loader function failed"
	msgInvalidLoader     = "loader function cannot be nil"
	msgPanicRecovered    = "panic recovered in cache operation"
	msgSaveFailed        = "failed to save cache snapshot"
	msgLoadFailed        = "failed to load cache snapshot"
	msgCorruptedData     = "corrupted cache snapshot"
)

// NewErrSizeLimitExceeded creates an error when an encoded entry is too large
func NewErrSizeLimitExceeded(key string, size, limit int64) error {
	return errors.NewWithContext(ErrCodeSizeLimitExceeded, msgSizeLimitExceeded, map[string]interface{}{
		"key":           key,
		"encoded_bytes": size,
		"limit_bytes":   limit,
	})
}

// NewErrEmptyKey creates an error when key is empty
func NewErrEmptyKey(operation string) error {
	return errors.NewWithField(ErrCodeEmptyKey, msgEmptyKey, "operation", operation)
}

// NewErrCacheClosed creates an error when an operation hits a closed cache
func NewErrCacheClosed(operation string) error {
	return errors.NewWithField(ErrCodeCacheClosed, msgCacheClosed, "operation", operation)
}

// NewErrEncodeFailed creates an error when the write-path codec fails
func NewErrEncodeFailed(key string, cause error) error {
	return errors.Wrap(cause, ErrCodeEncodeFailed, msgEncodeFailed).
		WithContext("key", key)
}

// NewErrDecodeFailed creates an error when the read-path codec fails
func NewErrDecodeFailed(key string, cause error) error {
	return errors.Wrap(cause, ErrCodeDecodeFailed, msgDecodeFailed).
		WithContext("key", key)
}

// NewErrLoaderFailed creates an error when a loader function fails
func NewErrLoaderFailed(key string, cause error) error {
	return errors.Wrap(cause, ErrCodeLoaderFailed, msgLoaderFailed).
		WithContext("key", key).
		AsRetryable()
}

// NewErrInvalidLoader creates an error when a loader function is nil
func NewErrInvalidLoader(key string) error {
	return errors.NewWithField(ErrCodeInvalidLoader, msgInvalidLoader, "key", key)
}

// NewErrPanicRecovered creates an error when a panic is recovered
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// NewErrSaveFailed creates an error when persisting a snapshot fails
func NewErrSaveFailed(strategy Strategy, cause error) error {
	return errors.Wrap(cause, ErrCodeSaveFailed, msgSaveFailed).
		WithContext("strategy", string(strategy)).
		AsRetryable()
}

// NewErrLoadFailed creates an error when reading a snapshot fails
func NewErrLoadFailed(strategy Strategy, cause error) error {
	return errors.Wrap(cause, ErrCodeLoadFailed, msgLoadFailed).
		WithContext("strategy", string(strategy)).
		AsRetryable()
}

// NewErrCorruptedData creates an error when snapshot data fails validation
func NewErrCorruptedData(source string, details string) error {
	return errors.NewWithContext(ErrCodeCorruptedData, msgCorruptedData, map[string]interface{}{
		"source":  source,
		"details": details,
	})
}

// IsSizeLimitExceeded checks if error is a size limit error
func IsSizeLimitExceeded(err error) bool {
	return errors.HasCode(err, ErrCodeSizeLimitExceeded)
}

// IsEmptyKey checks if error is an empty key error
func IsEmptyKey(err error) bool {
	return errors.HasCode(err, ErrCodeEmptyKey)
}

// IsCacheClosed checks if error is a closed cache error
func IsCacheClosed(err error) bool {
	return errors.HasCode(err, ErrCodeCacheClosed)
}

// IsCodecError checks if error is an encode or decode failure
func IsCodecError(err error) bool {
	return errors.HasCode(err, ErrCodeEncodeFailed) || errors.HasCode(err, ErrCodeDecodeFailed)
}

// IsLoaderError checks if error is a loader error
func IsLoaderError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeLoaderFailed || code == ErrCodeInvalidLoader || code == ErrCodePanicRecovered
	}
	return false
}

// IsStorageError checks if error is a persistence error
func IsStorageError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeSaveFailed || code == ErrCodeLoadFailed || code == ErrCodeCorruptedData
	}
	return false
}

// IsRetryable checks if the error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error
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

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var strataErr *errors.Error
	if goerrors.As(err, &strataErr) {
		return strataErr.Context
	}
	return nil
}
