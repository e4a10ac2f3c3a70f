package core

// courses.go reads course rosters from a workbook, one course per worksheet.
//
// Each worksheet is scanned row by row for three labels:
//
//	科目番号：  course id, value in the next column
//	科目名：    course name, value in the next column
//	学籍番号    student id header; every non-blank cell below it in the
//	           same column is an expected student
//
// A worksheet missing any of them aborts the whole parse.

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CourseLabels holds the label texts searched for on each roster worksheet.
type CourseLabels struct {
	CourseID   string
	CourseName string
	StudentID  string
}

// DefaultCourseLabels returns the labels used by the roster workbook.
func DefaultCourseLabels() CourseLabels {
	return CourseLabels{
		CourseID:   "科目番号：",
		CourseName: "科目名：",
		StudentID:  "学籍番号",
	}
}

// Names returns the labels in search order.
func (l CourseLabels) Names() []string {
	return []string{l.CourseID, l.CourseName, l.StudentID}
}

// cellPos is a zero-based row/column position in a worksheet grid.
type cellPos struct {
	row, col int
}

// sheetGrid is the trimmed text of a worksheet, row-major.
type sheetGrid [][]string

// find returns the first cell, scanning row by row, whose text equals label.
func (g sheetGrid) find(label string) (cellPos, bool) {
	for r, row := range g {
		for c, text := range row {
			if text == label {
				return cellPos{row: r, col: c}, true
			}
		}
	}
	return cellPos{}, false
}

// at returns the text at p, and false if the cell is absent or blank.
func (g sheetGrid) at(p cellPos) (string, bool) {
	if p.row >= len(g) || p.col >= len(g[p.row]) {
		return "", false
	}
	text := g[p.row][p.col]
	return text, text != ""
}

// below returns every non-blank cell under p in the same column, top to bottom.
func (g sheetGrid) below(p cellPos) []StudentID {
	var ids []StudentID
	for r := p.row + 1; r < len(g); r++ {
		if p.col < len(g[r]) && g[r][p.col] != "" {
			ids = append(ids, StudentID(g[r][p.col]))
		}
	}
	return ids
}

// ParseCourses reads every worksheet of the workbook in r as one course.
// Courses are indexed in worksheet order; a later sheet with the same
// course id replaces the earlier one.
func ParseCourses(r io.Reader, labels CourseLabels) (*CourseIndex, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &FormatError{Source: SourceCourses, Err: err}
	}
	defer f.Close()

	courses := &CourseIndex{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &FormatError{Source: SourceCourses, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
		}

		course, err := parseCourseSheet(sheet, trimGrid(rows), labels)
		if err != nil {
			return nil, err
		}
		courses.Set(course)
	}

	return courses, nil
}

func parseCourseSheet(sheet string, g sheetGrid, labels CourseLabels) (Course, error) {
	idLabel, ok := g.find(labels.CourseID)
	if !ok {
		return Course{}, &MissingCellError{Sheet: sheet, Cell: CellCourseIDLabel}
	}
	id, ok := g.at(cellPos{row: idLabel.row, col: idLabel.col + 1})
	if !ok {
		return Course{}, &MissingCellError{Sheet: sheet, Cell: CellCourseID}
	}

	nameLabel, ok := g.find(labels.CourseName)
	if !ok {
		return Course{}, &MissingCellError{Sheet: sheet, Cell: CellCourseNameLabel}
	}
	name, ok := g.at(cellPos{row: nameLabel.row, col: nameLabel.col + 1})
	if !ok {
		return Course{}, &MissingCellError{Sheet: sheet, Cell: CellCourseName}
	}

	header, ok := g.find(labels.StudentID)
	if !ok {
		return Course{}, &MissingCellError{Sheet: sheet, Cell: CellStudentIDLabel}
	}

	return Course{
		ID:               CourseID(id),
		Name:             name,
		ExpectedStudents: g.below(header),
		TargetName:       sheet,
	}, nil
}

func trimGrid(rows [][]string) sheetGrid {
	g := make(sheetGrid, len(rows))
	for r, row := range rows {
		g[r] = make([]string, len(row))
		for c, text := range row {
			g[r][c] = strings.TrimSpace(text)
		}
	}
	return g
}
