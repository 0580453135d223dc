// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop errclassifier.go (Classifier shape)
// Adapted from: bassosimone/nop errclass/{unix,windows}.go (errno constants),
// generalized here to select a Network namespace code rather than a bare
// classification string.

package errs

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// Classifier classifies raw errors into one of this package's Network
// namespace codes, for use before wrapping a raw network error as an
// [*Error]. Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(err error) int
}

// ClassifierFunc adapts a function to the [Classifier] interface.
type ClassifierFunc func(error) int

// Classify implements [Classifier].
func (f ClassifierFunc) Classify(err error) int {
	return f(err)
}

// DefaultClassifier is the [Classifier] used when none is configured.
var DefaultClassifier = ClassifierFunc(Classify)

// Classify inspects err and returns the best-matching Network namespace
// code, or zero if err does not look like a network-level failure.
//
// This generalizes the teacher's errclass package: instead of returning a
// short string label for log lines, it returns one of this package's own
// numeric codes so a raw dial/handshake/DNS failure can be wrapped
// directly as an [*Error] without a caller-side string-to-code table.
func Classify(err error) int {
	if err == nil {
		return 0
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNSLookupFailed
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ConnectionTimeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case errECONNREFUSED:
			return ConnectionRefused
		case errEHOSTUNREACH, errENETUNREACH, errENETDOWN:
			return HostUnreachable
		case errETIMEDOUT:
			return ConnectionTimeout
		case errECONNRESET, errECONNABORTED, errENOTCONN:
			return ConnectionRefused
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnectionTimeout
	}

	return 0
}
