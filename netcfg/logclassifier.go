// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop errclassifier.go

package netcfg

import "github.com/coderealm-atlas/my-mysql/errs"

// ErrClassifier classifies errors into short categorical strings for
// structured log lines (distinct from [errs.Classifier], which selects a
// taxonomy code). Implementations map errors to labels such as
// "ECONNREFUSED" or "ETIMEDOUT" so log consumers can group failures
// without parsing free-form messages.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier labels errors using [errs.Classify]'s code
// selection, translated to the short mnemonic log consumers expect.
var DefaultErrClassifier = ErrClassifierFunc(func(err error) string {
	if err == nil {
		return ""
	}
	switch errs.Classify(err) {
	case errs.ConnectionRefused:
		return "ECONNREFUSED"
	case errs.HostUnreachable:
		return "EHOSTUNREACH"
	case errs.ConnectionTimeout:
		return "ETIMEDOUT"
	case errs.DNSLookupFailed:
		return "EDNSLOOKUP"
	default:
		return "EGENERIC"
	}
})
