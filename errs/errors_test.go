// SPDX-License-Identifier: GPL-3.0-or-later

package errs

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	e := New(SQLFailed, "boom")
	assert.Equal(t, "[Error 1000] boom", e.Error())

	cause := errors.New("driver said no")
	wrapped := Wrap(NoRows, "no rows", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "driver said no")
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, 0, Classify(nil))
}

func TestClassifyDNS(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "example.invalid"}
	assert.Equal(t, DNSLookupFailed, Classify(err))
}
