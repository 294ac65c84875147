// apexlog.go: apex/log adapter for the Logger interface
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"fmt"

	alog "github.com/apex/log"
)

// ApexLogger adapts an apex/log logger to the strata Logger interface,
// mapping key-value pairs onto structured fields.
type ApexLogger struct {
	l alog.Interface
}

// NewApexLogger wraps l. A nil l uses the apex/log package logger.
func NewApexLogger(l alog.Interface) ApexLogger {
	if l == nil {
		l = alog.Log
	}
	return ApexLogger{l: l}
}

// Debug implements Logger.
func (a ApexLogger) Debug(msg string, keyvals ...interface{}) {
	a.entry(keyvals).Debug(msg)
}

// Info implements Logger.
func (a ApexLogger) Info(msg string, keyvals ...interface{}) {
	a.entry(keyvals).Info(msg)
}

// Warn implements Logger.
func (a ApexLogger) Warn(msg string, keyvals ...interface{}) {
	a.entry(keyvals).Warn(msg)
}

// Error implements Logger.
func (a ApexLogger) Error(msg string, keyvals ...interface{}) {
	a.entry(keyvals).Error(msg)
}

func (a ApexLogger) entry(keyvals []interface{}) alog.Interface {
	if len(keyvals) == 0 {
		return a.l
	}
	fields := alog.Fields{}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvals[i])
		}
		fields[key] = keyvals[i+1]
	}
	return a.l.WithFields(fields)
}
