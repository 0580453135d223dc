// SPDX-License-Identifier: GPL-3.0-or-later

package ioeffect_test

import (
	"context"
	"testing"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSync[T any](io ioeffect.IO[T]) ioeffect.Res[T] {
	var out ioeffect.Res[T]
	io.Run(context.Background(), func(r ioeffect.Res[T]) {
		out = r
	})
	return out
}

func TestPure(t *testing.T) {
	r := runSync(ioeffect.Pure(42))
	require.True(t, r.IsOk())
	assert.Equal(t, 42, r.Value())
}

func TestFail(t *testing.T) {
	want := errs.New(errs.SQLFailed, "boom")
	r := runSync(ioeffect.Fail[int](want))
	require.True(t, r.IsErr())
	assert.Same(t, want, r.ErrorValue())
}

func TestFromResult(t *testing.T) {
	ok := runSync(ioeffect.FromResult(okResult("hi")))
	require.True(t, ok.IsOk())
	assert.Equal(t, "hi", ok.Value())
}

func TestClone(t *testing.T) {
	calls := 0
	io := ioeffect.FromThunk(func(_ context.Context, cb ioeffect.Callback[int]) {
		calls++
		cb(okResult(calls))
	})

	r1 := runSync(io)
	r2 := runSync(io.Clone())

	assert.Equal(t, 1, r1.Value())
	assert.Equal(t, 2, r2.Value())
	assert.Equal(t, 2, calls)
}

func okResult[T any](v T) ioeffect.Res[T] {
	var r ioeffect.Res[T]
	ioeffect.Pure(v).Run(context.Background(), func(res ioeffect.Res[T]) {
		r = res
	})
	return r
}
