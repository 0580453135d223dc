// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec.md §4.5 (Shape Adaptors); original_source/include/mysql_monad.hpp
// and original_source/tests/include/result_monad.hpp for the Result-returning
// accessor pattern these methods generalize from boost::mysql to database/sql.

package dbsession

import (
	"strconv"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/result"
)

type unitResult = result.Result[netcfg.Unit, *errs.Error]

func okUnit() unitResult {
	return result.Ok[netcfg.Unit, *errs.Error](netcfg.Unit{})
}

func errOf[T any](code int, what string) result.Result[T, *errs.Error] {
	return result.Err[T, *errs.Error](errs.New(code, what))
}

// ExpectNoError succeeds iff the State carries no driver error.
func (s *State) ExpectNoError(msg string) unitResult {
	if s.HasError() {
		return errOf[netcfg.Unit](s.ErrorCode, msg+": "+s.ErrorText)
	}
	return okUnit()
}

// singleRow locates the sole qualifying row of a result set, applying
// the bounds/error/cardinality checks shared by every "exactly one row"
// accessor.
func (s *State) singleRow(msg string, resultIndex int) result.Result[RowView, *errs.Error] {
	if s.HasError() {
		return errOf[RowView](s.ErrorCode, msg+": "+s.ErrorText)
	}
	rs, ok := s.resultSet(resultIndex)
	if !ok {
		return errOf[RowView](errs.IndexOutOfBounds, msg+": result index out of bounds")
	}
	switch rs.Len() {
	case 0:
		return errOf[RowView](errs.NoRows, msg+": no rows")
	case 1:
		return result.Ok[RowView, *errs.Error](rs.Rows[0])
	default:
		return errOf[RowView](errs.MultipleResults, msg+": multiple rows")
	}
}

// ExpectOneRow succeeds iff resultIndex names a result set with exactly
// one row whose idColumnIndex'th column is present and non-null.
func (s *State) ExpectOneRow(msg string, resultIndex, idColumnIndex int) result.Result[RowView, *errs.Error] {
	rowRes := s.singleRow(msg, resultIndex)
	if rowRes.IsErr() {
		return rowRes
	}
	row := rowRes.Value()
	if idColumnIndex < 0 || idColumnIndex >= row.Len() {
		return errOf[RowView](errs.IndexOutOfBounds, msg+": id column out of bounds")
	}
	if row.Field(idColumnIndex).IsNull() {
		return errOf[RowView](errs.NullID, msg+": id column is null")
	}
	return result.Ok[RowView, *errs.Error](row)
}

// MaybeOneRow is ExpectOneRow except an absent row or a null id column
// is reported as a nil *RowView rather than an error.
func (s *State) MaybeOneRow(resultIndex, idColumnIndex int) result.Result[*RowView, *errs.Error] {
	rowRes := s.ExpectOneRow("maybeOneRow", resultIndex, idColumnIndex)
	if rowRes.IsOk() {
		row := rowRes.Value()
		return result.Ok[*RowView, *errs.Error](&row)
	}
	switch rowRes.ErrorValue().Code {
	case errs.NoRows, errs.NullID:
		return result.Ok[*RowView, *errs.Error](nil)
	default:
		return result.Err[*RowView, *errs.Error](rowRes.ErrorValue())
	}
}

// ExpectOneRowColsGT scans every result set in order and returns the
// first row whose column count is strictly greater than cols.
func (s *State) ExpectOneRowColsGT(msg string, cols int) result.Result[RowView, *errs.Error] {
	if s.HasError() {
		return errOf[RowView](s.ErrorCode, msg+": "+s.ErrorText)
	}
	for _, rs := range s.Results {
		for _, row := range rs.Rows {
			if row.Len() > cols {
				return result.Ok[RowView, *errs.Error](row)
			}
		}
	}
	return errOf[RowView](errs.NoRows, msg+": no row with more than "+strconv.Itoa(cols)+" columns")
}

// ExpectAffectedOneRow succeeds iff the resultIndex'th statement
// affected exactly one row.
func (s *State) ExpectAffectedOneRow(msg string, resultIndex int) unitResult {
	if s.HasError() {
		return errOf[netcfg.Unit](s.ErrorCode, msg+": "+s.ErrorText)
	}
	rs, ok := s.resultSet(resultIndex)
	if !ok {
		return errOf[netcfg.Unit](errs.IndexOutOfBounds, msg+": result index out of bounds")
	}
	if rs.AffectedRows != 1 {
		return errOf[netcfg.Unit](errs.MultipleResults, msg+": expected exactly one affected row")
	}
	return okUnit()
}

// ExpectAffectedRows returns the affected-row count of the resultIndex'th
// statement, whatever it is.
func (s *State) ExpectAffectedRows(msg string, resultIndex int) result.Result[uint64, *errs.Error] {
	if s.HasError() {
		return errOf[uint64](s.ErrorCode, msg+": "+s.ErrorText)
	}
	rs, ok := s.resultSet(resultIndex)
	if !ok {
		return errOf[uint64](errs.IndexOutOfBounds, msg+": result index out of bounds")
	}
	return result.Ok[uint64, *errs.Error](rs.AffectedRows)
}

// ListResult is the outcome of a paginated listing query: a page of rows
// plus the total row count across all pages.
type ListResult struct {
	Rows  ResultSetView
	Total int64
}

// ExpectListOfRows reads a page of rows from rowsIdx and a total count
// from totalIdx. When the two indices coincide, the total is simply the
// page's row count; otherwise the total is read from column 0 of the
// first row of the totalIdx result set.
func (s *State) ExpectListOfRows(msg string, rowsIdx, totalIdx int) result.Result[ListResult, *errs.Error] {
	if s.HasError() {
		return errOf[ListResult](s.ErrorCode, msg+": "+s.ErrorText)
	}
	rows, ok := s.resultSet(rowsIdx)
	if !ok {
		return errOf[ListResult](errs.IndexOutOfBounds, msg+": rows index out of bounds")
	}
	if rowsIdx == totalIdx {
		return result.Ok[ListResult, *errs.Error](ListResult{Rows: rows, Total: int64(rows.Len())})
	}
	totalSet, ok := s.resultSet(totalIdx)
	if !ok {
		return errOf[ListResult](errs.IndexOutOfBounds, msg+": total index out of bounds")
	}
	if totalSet.Len() == 0 {
		return errOf[ListResult](errs.NoRows, msg+": total result set is empty")
	}
	total, valid := totalSet.Rows[0].Field(0).AsInt64()
	if !valid {
		return errOf[ListResult](errs.BadValueAccess, msg+": total column is not numeric")
	}
	return result.Ok[ListResult, *errs.Error](ListResult{Rows: rows, Total: total})
}

// ExpectAllListOfRows is ExpectListOfRows with the rows and total read
// from the same result set (the total is simply the row count).
func (s *State) ExpectAllListOfRows(msg string, idx int) result.Result[ListResult, *errs.Error] {
	return s.ExpectListOfRows(msg, idx, idx)
}

// Scalar lists the column types ExpectOneValue can decode; any other T
// yields BadValueAccess.
type Scalar interface {
	int64 | uint64 | float64 | bool | string
}

func convertScalar[T any](f FieldView) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case int64:
		v, ok := f.AsInt64()
		return any(v).(T), ok
	case uint64:
		v, ok := f.AsUint64()
		return any(v).(T), ok
	case float64:
		v, ok := f.AsFloat64()
		return any(v).(T), ok
	case bool:
		v, ok := f.AsBool()
		return any(v).(T), ok
	case string:
		v, ok := f.AsString()
		return any(v).(T), ok
	default:
		return zero, false
	}
}

// ExpectOneValue reads a single typed scalar out of the sole row of
// resultIndex, at columnIndex. The supported T are int64, uint64,
// float64, bool, and string (see Scalar); any other T compiles but
// yields a runtime BadValueAccess (see DESIGN.md).
func ExpectOneValue[T any](s *State, msg string, resultIndex, columnIndex int) result.Result[T, *errs.Error] {
	rowRes := s.singleRow(msg, resultIndex)
	if rowRes.IsErr() {
		return result.Err[T, *errs.Error](rowRes.ErrorValue())
	}
	row := rowRes.Value()
	if columnIndex < 0 || columnIndex >= row.Len() {
		return errOf[T](errs.IndexOutOfBounds, msg+": column index out of bounds")
	}
	v, ok := convertScalar[T](row.Field(columnIndex))
	if !ok {
		return errOf[T](errs.BadValueAccess, msg+": column value is not convertible to the requested type")
	}
	return result.Ok[T, *errs.Error](v)
}

// ExpectCount is ExpectOneValue[int64], the common case of reading a
// COUNT(*)-style scalar.
func ExpectCount(s *State, msg string, resultIndex, columnIndex int) result.Result[int64, *errs.Error] {
	return ExpectOneValue[int64](s, msg, resultIndex, columnIndex)
}

// VisitOneRow invokes f with the sole qualifying row and returns its
// result wrapped in Ok, or propagates the ExpectOneRow error. f must not
// let the RowView escape its own stack frame.
func VisitOneRow[R any](s *State, msg string, resultIndex, idColumnIndex int, f func(RowView) R) result.Result[R, *errs.Error] {
	rowRes := s.ExpectOneRow(msg, resultIndex, idColumnIndex)
	if rowRes.IsErr() {
		return result.Err[R, *errs.Error](rowRes.ErrorValue())
	}
	return result.Ok[R, *errs.Error](f(rowRes.Value()))
}

// VisitMaybeOneRow is VisitOneRow except a missing row invokes f with a
// nil *RowView instead of short-circuiting.
func VisitMaybeOneRow[R any](s *State, resultIndex, idColumnIndex int, f func(*RowView) R) result.Result[R, *errs.Error] {
	rowRes := s.MaybeOneRow(resultIndex, idColumnIndex)
	if rowRes.IsErr() {
		return result.Err[R, *errs.Error](rowRes.ErrorValue())
	}
	return result.Ok[R, *errs.Error](f(rowRes.Value()))
}
