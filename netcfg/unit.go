// SPDX-License-Identifier: GPL-3.0-or-later

package netcfg

// Unit is a type not containing any value (analogous to an
// explicit `void` type in C and C++).
//
// Use this type for [ioeffect.IO] instances that carry no result value,
// such as the cleanup IO passed to ioeffect.FinallyThen.
type Unit struct{}
