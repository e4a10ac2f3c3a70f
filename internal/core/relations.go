package core

// relations.go turns CSV tables into the registration and student relations.
//
// Both relations are keyed by student ID and built by sequential insertion:
// when an ID appears on several rows the last row wins.

// DefaultDeletedMarker marks a registration row as logically deleted.
const DefaultDeletedMarker = "○"

// RegistrationColumns names the columns of the registration export.
type RegistrationColumns struct {
	StudentID     string
	CourseID      string
	Deletion      string
	DeletedMarker string // Value of Deletion on deleted rows; blank means active
}

// DefaultRegistrationColumns returns the column names of the registration system export.
func DefaultRegistrationColumns() RegistrationColumns {
	return RegistrationColumns{
		StudentID:     "学籍番号",
		CourseID:      "科目番号",
		Deletion:      "論理削除",
		DeletedMarker: DefaultDeletedMarker,
	}
}

// Names returns the required column names in check order.
func (c RegistrationColumns) Names() []string {
	return []string{c.StudentID, c.CourseID, c.Deletion}
}

// StudentColumns names the columns of the student directory export.
type StudentColumns struct {
	ID            string
	Name          string
	SchoolEmail   string
	PersonalEmail string
}

// DefaultStudentColumns returns the column names of the student directory export.
func DefaultStudentColumns() StudentColumns {
	return StudentColumns{
		ID:            "学籍番号",
		Name:          "学生氏名",
		SchoolEmail:   "Ｅ－ＭＡＩＬ＿大学",
		PersonalEmail: "Ｅ－ＭＡＩＬ",
	}
}

// Names returns the required column names in check order.
func (c StudentColumns) Names() []string {
	return []string{c.ID, c.Name, c.SchoolEmail, c.PersonalEmail}
}

// ParseRegistrations builds the registration index from the export table.
// Deleted rows are skipped; any deletion value other than blank or the
// deleted marker fails the whole parse.
func ParseRegistrations(t *Table, cols RegistrationColumns) (RegisteredCourseIndex, error) {
	if err := t.RequireColumns(SourceRegistrations, cols.Names()...); err != nil {
		return nil, err
	}

	registered := make(RegisteredCourseIndex, len(t.Records))
	for i := range t.Records {
		switch deletion := t.Value(i, cols.Deletion); deletion {
		case "":
		case cols.DeletedMarker:
			continue
		default:
			return nil, &BadDeletionValueError{Value: deletion, Line: t.Line(i)}
		}

		registered[StudentID(t.Value(i, cols.StudentID))] = CourseID(t.Value(i, cols.CourseID))
	}

	return registered, nil
}

// ParseStudents builds the student directory from the export table.
func ParseStudents(t *Table, cols StudentColumns) (StudentDirectory, error) {
	if err := t.RequireColumns(SourceStudents, cols.Names()...); err != nil {
		return nil, err
	}

	students := make(StudentDirectory, len(t.Records))
	for i := range t.Records {
		id := StudentID(t.Value(i, cols.ID))
		students[id] = Student{
			ID:            id,
			Name:          t.Value(i, cols.Name),
			SchoolEmail:   Email(t.Value(i, cols.SchoolEmail)),
			PersonalEmail: Email(t.Value(i, cols.PersonalEmail)),
		}
	}

	return students, nil
}
