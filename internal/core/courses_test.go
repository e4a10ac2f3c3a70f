package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

type testSheet struct {
	name string
	rows [][]string
}

// buildWorkbook writes sheets, in order, into an xlsx file.
func buildWorkbook(t *testing.T, sheets ...testSheet) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for r, row := range sh.rows {
			for c, v := range row {
				if v == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("CoordinatesToCellName: %v", err)
				}
				if err := f.SetCellValue(sh.name, cell, v); err != nil {
					t.Fatalf("SetCellValue: %v", err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func rosterSheet(name, id, courseName string, students ...string) testSheet {
	rows := [][]string{
		{"科目番号：", id},
		{"科目名：", courseName},
		{"学籍番号", "氏名"},
	}
	for _, s := range students {
		rows = append(rows, []string{s, "name"})
	}
	return testSheet{name: name, rows: rows}
}

func TestParseCourses(t *testing.T) {
	wb := buildWorkbook(t,
		rosterSheet("数学", "C1", "Math", "S1", "S2"),
		testSheet{name: "物理", rows: [][]string{
			{"", "", ""},
			{"", "注意", ""},
			{"", "  科目番号：  ", " C2 "},
			{"", "科目名：", "Physics"},
			{"", "", ""},
			{"", "学籍番号", "備考"},
			{"", " S3 ", "x"},
			{"", "", "blank id is skipped"},
			{"", "S1", ""},
			{"S9", "", "other columns are ignored"},
		}},
	)

	got, err := ParseCourses(wb, DefaultCourseLabels())
	if err != nil {
		t.Fatalf("ParseCourses() error: %v", err)
	}

	want := []Course{
		{ID: "C1", Name: "Math", ExpectedStudents: []StudentID{"S1", "S2"}, TargetName: "数学"},
		{ID: "C2", Name: "Physics", ExpectedStudents: []StudentID{"S3", "S1"}, TargetName: "物理"},
	}
	if diff := cmp.Diff(want, got.Courses()); diff != "" {
		t.Errorf("ParseCourses() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCourses_EmptyRoster(t *testing.T) {
	got, err := ParseCourses(buildWorkbook(t, rosterSheet("Sheet", "C1", "Math")), DefaultCourseLabels())
	if err != nil {
		t.Fatalf("ParseCourses() error: %v", err)
	}
	c, ok := got.Get("C1")
	if !ok {
		t.Fatal("course C1 not found")
	}
	if len(c.ExpectedStudents) != 0 {
		t.Errorf("ExpectedStudents = %v, want none", c.ExpectedStudents)
	}
}

// A later worksheet with the same course id replaces the earlier one but
// keeps its position.
func TestParseCourses_DuplicateCourseID(t *testing.T) {
	wb := buildWorkbook(t,
		rosterSheet("A", "C1", "Math", "S1"),
		rosterSheet("B", "C2", "Physics", "S2"),
		rosterSheet("C", "C1", "Math II", "S3"),
	)

	got, err := ParseCourses(wb, DefaultCourseLabels())
	if err != nil {
		t.Fatalf("ParseCourses() error: %v", err)
	}

	if diff := cmp.Diff([]CourseID{"C1", "C2"}, got.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	c1, _ := got.Get("C1")
	if c1.TargetName != "C" || c1.Name != "Math II" {
		t.Errorf("C1 = %+v, want the sheet C version", c1)
	}
}

func TestParseCourses_MissingCell(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		wantCell CellKind
	}{
		{
			name:     "no course id label",
			rows:     [][]string{{"科目名：", "Math"}, {"学籍番号"}},
			wantCell: CellCourseIDLabel,
		},
		{
			name:     "course id value absent",
			rows:     [][]string{{"科目番号："}, {"科目名：", "Math"}, {"学籍番号"}},
			wantCell: CellCourseID,
		},
		{
			name:     "course id value blank",
			rows:     [][]string{{"科目番号：", "   "}, {"科目名：", "Math"}, {"学籍番号"}},
			wantCell: CellCourseID,
		},
		{
			name:     "no course name label",
			rows:     [][]string{{"科目番号：", "C1"}, {"学籍番号"}},
			wantCell: CellCourseNameLabel,
		},
		{
			name:     "course name value absent",
			rows:     [][]string{{"科目番号：", "C1"}, {"", "", "科目名："}, {"学籍番号"}},
			wantCell: CellCourseName,
		},
		{
			name:     "no student id header",
			rows:     [][]string{{"科目番号：", "C1"}, {"科目名：", "Math"}},
			wantCell: CellStudentIDLabel,
		},
		{
			name:     "empty sheet",
			rows:     nil,
			wantCell: CellCourseIDLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := buildWorkbook(t,
				rosterSheet("good", "C0", "Intro", "S1"),
				testSheet{name: "broken", rows: tt.rows},
			)

			got, err := ParseCourses(wb, DefaultCourseLabels())
			if got != nil {
				t.Errorf("ParseCourses() returned %d courses with an error", got.Len())
			}

			var mc *MissingCellError
			if !errors.As(err, &mc) {
				t.Fatalf("error = %v, want *MissingCellError", err)
			}
			if mc.Sheet != "broken" || mc.Cell != tt.wantCell {
				t.Errorf("got sheet %q cell %s, want sheet broken cell %s", mc.Sheet, mc.Cell, tt.wantCell)
			}
			if ParseErrorKind(err) != KindMissingCell {
				t.Errorf("ParseErrorKind() = %q", ParseErrorKind(err))
			}
		})
	}
}

func TestParseCourses_CustomLabels(t *testing.T) {
	wb := buildWorkbook(t, testSheet{name: "s", rows: [][]string{
		{"Course:", "C1"},
		{"Title:", "Math"},
		{"ID"},
		{"S1"},
	}})

	got, err := ParseCourses(wb, CourseLabels{CourseID: "Course:", CourseName: "Title:", StudentID: "ID"})
	if err != nil {
		t.Fatalf("ParseCourses() error: %v", err)
	}
	c, _ := got.Get("C1")
	if diff := cmp.Diff([]StudentID{"S1"}, c.ExpectedStudents); diff != "" {
		t.Errorf("ExpectedStudents mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCourses_NotAWorkbook(t *testing.T) {
	_, err := ParseCourses(strings.NewReader("学籍番号,科目番号\n"), DefaultCourseLabels())

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FormatError", err)
	}
	if fe.Source != SourceCourses {
		t.Errorf("Source = %q, want %q", fe.Source, SourceCourses)
	}
	if !strings.Contains(err.Error(), "invalid spreadsheet") {
		t.Errorf("Error() = %q", err.Error())
	}
}
