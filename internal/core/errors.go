package core

import (
	"errors"
	"fmt"
)

// Parse error kinds, stable strings used in logs, metrics and JSON responses.
const (
	KindMissingColumn    = "missing-column"
	KindBadDeletionValue = "bad-deletion-value"
	KindMissingCell      = "missing-cell"
	KindFormat           = "format"
)

// CellKind names a labelled cell a roster worksheet must contain.
type CellKind string

const (
	CellCourseIDLabel   CellKind = "course-id-label"
	CellCourseID        CellKind = "course-id"
	CellCourseNameLabel CellKind = "course-name-label"
	CellCourseName      CellKind = "course-name"
	CellStudentIDLabel  CellKind = "student-id-label"
)

// ParseError is implemented by every error an input parser returns.
type ParseError interface {
	error
	Kind() string
}

// MissingColumnError reports a required column absent from a CSV header.
type MissingColumnError struct {
	Source string // Source key, e.g. "registrations"
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Source, e.Column)
}

func (e *MissingColumnError) Kind() string { return KindMissingColumn }

// BadDeletionValueError reports a deletion marker that is neither blank nor the deleted marker.
type BadDeletionValueError struct {
	Value string
	Line  int // 1-based line number in the file, header is line 1
}

func (e *BadDeletionValueError) Error() string {
	return fmt.Sprintf("registrations: bad deletion value %q on line %d", e.Value, e.Line)
}

func (e *BadDeletionValueError) Kind() string { return KindBadDeletionValue }

// MissingCellError reports a roster worksheet lacking a labelled cell or its value.
type MissingCellError struct {
	Sheet string
	Cell  CellKind
}

func (e *MissingCellError) Error() string {
	return fmt.Sprintf("courses: missing cell %s in sheet %q", e.Cell, e.Sheet)
}

func (e *MissingCellError) Kind() string { return KindMissingCell }

// FormatError reports input that could not be decoded at all.
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Source == SourceCourses {
		return fmt.Sprintf("%s: invalid spreadsheet: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: invalid csv: %v", e.Source, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Kind() string { return KindFormat }

// ParseErrorKind returns the kind of the first ParseError in err's chain,
// or "" if there is none.
func ParseErrorKind(err error) string {
	var pe ParseError
	if errors.As(err, &pe) {
		return pe.Kind()
	}
	return ""
}
