package mail

import (
	"strings"

	"github.com/JonMunkholm/rostercheck/internal/core"
)

// Placeholders recognised in email templates.
const (
	PlaceholderStudentID            = "$student_id"
	PlaceholderStudentName          = "$student_name"
	PlaceholderExpectedCourseID     = "$expected_course_id"
	PlaceholderExpectedCourseTarget = "$expected_course_target"
	PlaceholderRegisteredCourseID   = "$registered_course_id"
	PlaceholderRegisteredTarget     = "$registered_course_target"
)

// FillWrongCourse fills a wrong-course template for one report row.
// Substitution is a single pass: placeholder text inside a substituted
// value is left as is.
func FillWrongCourse(tmpl string, e core.StudentInWrongCourse) string {
	return strings.NewReplacer(
		PlaceholderStudentID, string(e.Student.ID),
		PlaceholderStudentName, e.Student.Name,
		PlaceholderExpectedCourseID, string(e.ExpectedCourse.ID),
		PlaceholderExpectedCourseTarget, e.ExpectedCourse.TargetName,
		PlaceholderRegisteredCourseID, string(e.RegisteredCourse.ID),
		PlaceholderRegisteredTarget, e.RegisteredCourse.TargetName,
	).Replace(tmpl)
}

// FillNoCourse fills a no-course template for one report row.
// Registered-course placeholders are left untouched.
func FillNoCourse(tmpl string, e core.StudentInNoCourse) string {
	return strings.NewReplacer(
		PlaceholderStudentID, string(e.Student.ID),
		PlaceholderStudentName, e.Student.Name,
		PlaceholderExpectedCourseID, string(e.ExpectedCourse.ID),
		PlaceholderExpectedCourseTarget, e.ExpectedCourse.TargetName,
	).Replace(tmpl)
}
