package core

// # Error Codes Reference
//
// User-facing messages carry a code that administrators can quote when
// asking for help. Codes are grouped by category:
//
// # Validation Errors (VAL)
//
//	VAL004 - Missing column: a required column is absent from a CSV export
//	         Action: Export the file again with the standard column set
//	         Patterns: "missing required column"
//
//	VAL007 - Bad deletion value: the deletion column holds an unknown value
//	         Action: The column must be blank or hold the deleted marker
//	         Patterns: "bad deletion value"
//
//	VAL008 - Missing cell: a roster worksheet lacks a labelled cell
//	         Action: Check the course id, course name and student id labels
//	         Patterns: "missing cell"
//
// # File Errors (FILE)
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV ("invalid csv")
//	FILE004 - No file ("no file provided")
//	FILE006 - Invalid spreadsheet ("invalid spreadsheet")
//
// # Verification Errors (VER)
//
//	VER001 - Busy: too many verifications running ("too many verifications")
//	VER002 - Cancelled ("context canceled")
//	VER003 - Timed out ("context deadline exceeded")
//
// # Template Errors (TPL)
//
//	TPL001 - Unknown template ("unknown email template")
//	TPL002 - Template storage failed ("template store")
//
// # Rate Limiting (RATE)
//
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches; the technical error is in the logs.
//
// Parse errors are mapped by their Kind, never by their text, since that
// text carries user data such as sheet names and cell values. Other errors
// are matched case-insensitively with strings.Contains and the first match
// wins, so specific patterns precede general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the CSV file",
			Action:  "Export the file again with the standard column set",
			Code:    "VAL004",
		},
	},
	{
		pattern: "bad deletion value",
		msg: UserMessage{
			Message: "The deletion column contains an unrecognized value",
			Action:  "Leave the column blank for active rows or use the deleted marker",
			Code:    "VAL007",
		},
	},
	{
		pattern: "missing cell",
		msg: UserMessage{
			Message: "A roster worksheet is missing a labelled cell",
			Action:  "Check that every sheet has the course id, course name and student id labels",
			Code:    "VAL008",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Remove unrelated sheets or rows and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "A required file was not selected",
			Action:  "Select the registration, student and course files",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The course file is not a readable Excel workbook",
			Action:  "Save the roster as .xlsx and try again",
			Code:    "FILE006",
		},
	},

	// Verification
	{
		pattern: "too many verifications",
		msg: UserMessage{
			Message: "The system is busy with other verifications",
			Action:  "Please wait a moment and try again",
			Code:    "VER001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "VER002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Verification timed out",
			Action:  "Try again with smaller files",
			Code:    "VER003",
		},
	},

	// Templates
	{
		pattern: "unknown email template",
		msg: UserMessage{
			Message: "Unknown email template",
			Action:  "Use the wrong-course or no-course template",
			Code:    "TPL001",
		},
	},
	{
		pattern: "template store",
		msg: UserMessage{
			Message: "Email template could not be saved or loaded",
			Action:  "Please try again",
			Code:    "TPL002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pe ParseError
	if errors.As(err, &pe) {
		if msg, ok := lookupPattern(parseErrorPattern(pe)); ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// parseErrorPattern names the errorPatterns entry for a parse error kind.
func parseErrorPattern(pe ParseError) string {
	switch pe.Kind() {
	case KindMissingColumn:
		return "missing required column"
	case KindBadDeletionValue:
		return "bad deletion value"
	case KindMissingCell:
		return "missing cell"
	case KindFormat:
		if fe, ok := pe.(*FormatError); ok && fe.Source == SourceCourses {
			return "invalid spreadsheet"
		}
		return "invalid csv"
	}
	return ""
}

func lookupPattern(pattern string) (UserMessage, bool) {
	for _, ep := range errorPatterns {
		if ep.pattern == pattern {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action". Parse errors append their detail, e.g.
// the missing column or sheet name.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	out := fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
	if detail := ErrorDetail(err); detail != "" {
		out += ". " + detail
	}
	return out
}

// ErrorDetail returns the specifics of a parse error for display,
// or "" for other errors.
func ErrorDetail(err error) string {
	var pe ParseError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return ""
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
