// Package core provides the business logic for roster registration checks.
//
// The package holds everything needed to compare course rosters with the
// registration system, independent of any UI or transport layer. It is used
// by the web handlers and the rostercheck CLI without modification.
//
// # Inputs
//
// A check reads three files:
//
//   - the registration export (CSV), one course per student, via [ParseRegistrations]
//   - the student directory export (CSV), via [ParseStudents]
//   - the roster workbook (xlsx), one course per worksheet, via [ParseCourses]
//
// CSV files go through [ReadTable] first, which drops a UTF-8 BOM, repairs
// invalid UTF-8 and trims every field. Column names and worksheet labels are
// configurable; the defaults match the university exports.
//
// # Reconciliation
//
// [Reconcile] walks every course in worksheet order and every expected
// student in roster order, and files each pair under one of four
// categories of [RegistrationDiscrepancy]. It is pure: the same inputs
// always give the same report.
//
// # Service
//
// [Service.Verify] parses the three inputs concurrently and reconciles them
// only when all three parsed. Runs are bounded by a [VerifyLimiter].
//
// # Error Handling
//
// Parse errors are typed and carry a [ParseError.Kind]. Technical errors are
// mapped to user-friendly messages using [MapError]. Each error category has
// a unique code for support reference:
//
//   - VAL004, VAL007, VAL008: input errors (missing column, bad deletion value, missing cell)
//   - FILE001-FILE006: file errors (size, format, missing file)
//   - VER001-VER003: verification errors (busy, cancelled, timeout)
//   - TPL001-TPL002: email template errors
package core
