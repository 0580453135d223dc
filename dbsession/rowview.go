// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec.md §4.5 (RowView/ResultSetView/FieldView borrow
// contract); original_source/include/mysql_base.hpp for the underlying
// boost::mysql::field/row/results shape this generalizes.

package dbsession

import (
	"strconv"
	"time"
)

// FieldView is a read-only view of one column of one row. Its backing
// value aliases State's buffers: do not retain a FieldView, RowView, or
// ResultSetView past the return of the accessor or Visit* callback that
// produced it.
type FieldView struct {
	val any
}

func newFieldView(v any) FieldView {
	return FieldView{val: v}
}

// IsNull reports whether the column value is SQL NULL.
func (f FieldView) IsNull() bool {
	return f.val == nil
}

// AsInt64 converts the field to int64, accepting the driver's native
// int64 as well as textual/decimal encodings.
func (f FieldView) AsInt64() (int64, bool) {
	switch v := f.val.(type) {
	case int64:
		return v, true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// AsUint64 converts the field to uint64. A negative int64 is rejected.
func (f FieldView) AsUint64() (uint64, bool) {
	switch v := f.val.(type) {
	case uint64:
		return v, true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case []byte:
		n, err := strconv.ParseUint(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// AsFloat64 converts the field to float64.
func (f FieldView) AsFloat64() (float64, bool) {
	switch v := f.val.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case []byte:
		n, err := strconv.ParseFloat(string(v), 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	return 0, false
}

// AsBool converts the field to bool. An integer 0/1 is accepted, matching
// MySQL's tinyint(1) boolean convention.
func (f FieldView) AsBool() (bool, bool) {
	switch v := f.val.(type) {
	case bool:
		return v, true
	case int64:
		return v != 0, true
	case []byte:
		switch string(v) {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	case string:
		switch v {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	}
	return false, false
}

// AsString converts the field to string, formatting numeric and time
// values textually.
func (f FieldView) AsString() (string, bool) {
	switch v := f.val.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	}
	return "", false
}

// RowView is a read-only view of one row's columns.
type RowView struct {
	fields []FieldView
}

// Len returns the number of columns in the row.
func (r RowView) Len() int {
	return len(r.fields)
}

// Field returns the i'th column. It panics if i is out of range; callers
// that don't already know the column count should check Len first.
func (r RowView) Field(i int) FieldView {
	return r.fields[i]
}

// ResultSetView is a read-only view of one statement's result set: its
// rows (SELECT) or its affected-row count (INSERT/UPDATE/DELETE).
type ResultSetView struct {
	Rows         []RowView
	AffectedRows uint64
}

// Len returns the number of rows in the result set.
func (rs ResultSetView) Len() int {
	return len(rs.Rows)
}
