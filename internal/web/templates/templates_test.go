package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return sb.String()
}

type fixedLinks struct{}

func (fixedLinks) WrongCourse(e core.StudentInWrongCourse) string {
	return "mailto:" + string(e.Student.SchoolEmail) + "?subject=a&body=b"
}

func (fixedLinks) NoCourse(e core.StudentInNoCourse) string {
	return "mailto:" + string(e.Student.SchoolEmail)
}

func TestErrorAlert(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		code    string
		want    []string
		wantNot []string
	}{
		{
			name:   "message, action and code",
			action: "Try again",
			code:   "VAL004",
			want:   []string{`role="alert"`, "<strong>&lt;b&gt;bad&lt;/b&gt;</strong>", "<div>Try again</div>", "Code: VAL004"},
		},
		{
			name:    "empty action and code are omitted",
			want:    []string{"<strong>&lt;b&gt;bad&lt;/b&gt;</strong>"},
			wantNot: []string{"<div>", "Code:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, ErrorAlert("<b>bad</b>", tt.action, tt.code))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ErrorAlert() = %q, want it to contain %q", got, w)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(got, w) {
					t.Errorf("ErrorAlert() = %q, want it not to contain %q", got, w)
				}
			}
		})
	}
}

func TestErrorPage(t *testing.T) {
	got := render(t, ErrorPage("Oops", "", "ERR000"))

	if !strings.HasPrefix(got, "<!doctype html>") {
		t.Errorf("ErrorPage() does not start with a doctype: %q", got[:min(len(got), 40)])
	}
	for _, w := range []string{"<title>エラー</title>", `<div class="alert" role="alert">`, `<a href="/">戻る</a>`} {
		if !strings.Contains(got, w) {
			t.Errorf("ErrorPage() missing %q", w)
		}
	}
}

func TestReport(t *testing.T) {
	math := core.Course{ID: "MATH101", Name: "数学", TargetName: "数学", ExpectedStudents: []core.StudentID{"S1", "S2"}}
	phys := core.Course{ID: "PHYS201", Name: "物理", TargetName: "物理", ExpectedStudents: []core.StudentID{"S3"}}

	result := &core.VerifyResult{
		RunID: "run-1",
		Discrepancy: core.RegistrationDiscrepancy{
			StudentsInWrongCourse: []core.StudentInWrongCourse{{
				Student:          core.Student{ID: "S1", Name: "<i>Alice</i>", SchoolEmail: "s1@u.ac.jp"},
				RegisteredCourse: phys,
				ExpectedCourse:   math,
			}},
			StudentsInNoCourse: []core.StudentInNoCourse{{
				Student:        core.Student{ID: "S2", Name: "Bob", SchoolEmail: "s2@u.ac.jp"},
				ExpectedCourse: math,
			}},
		},
		Summary: core.DiscrepancySummary{WrongCourse: 1, NoCourse: 1, Total: 2},
		Inputs:  core.InputCounts{Registrations: 1, Students: 2, Courses: 2},
		Courses: core.NewCourseIndex(math, phys),
	}

	got := render(t, Report(ReportData{Result: result, Links: fixedLinks{}}))

	for _, w := range []string{
		"<title>照合結果</title>",
		"&lt;i&gt;Alice&lt;/i&gt;",
		`href="mailto:s1@u.ac.jp?subject=a&amp;body=b"`,
		`href="mailto:s2@u.ac.jp"`,
		`<td>MATH101 <span class="muted">数学</span></td>`,
		"· run run-1",
		`<section id="students-in-unknown-course"><h2>名簿にない科目に登録</h2><p class="muted">該当なし</p>`,
		"<td>MATH101</td><td>数学</td><td>数学</td><td>2</td><td>1</td><td>1</td><td>0</td><td>0</td>",
		"<td>PHYS201</td><td>物理</td><td>物理</td><td>1</td><td>0</td><td>0</td><td>0</td><td>0</td>",
	} {
		if !strings.Contains(got, w) {
			t.Errorf("Report() missing %q", w)
		}
	}
}
