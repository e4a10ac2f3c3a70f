package core

// StudentID identifies a student (学籍番号).
type StudentID string

// CourseID identifies a course (科目番号).
type CourseID string

// Email is a student contact address.
type Email string

// Student is one entry of the student directory.
type Student struct {
	ID            StudentID `json:"id"`
	Name          string    `json:"name"`
	SchoolEmail   Email     `json:"schoolEmail"`
	PersonalEmail Email     `json:"personalEmail"`
}

// Course is one roster worksheet: the course and the students expected to take it.
type Course struct {
	ID               CourseID    `json:"id"`
	Name             string      `json:"name"`
	ExpectedStudents []StudentID `json:"expectedStudents"` // Roster order, duplicates kept
	TargetName       string      `json:"targetName"`       // Worksheet name the course was read from
}

// clone returns a copy of c that shares no memory with it.
func (c Course) clone() Course {
	out := c
	if c.ExpectedStudents != nil {
		out.ExpectedStudents = append([]StudentID(nil), c.ExpectedStudents...)
	}
	return out
}

// RegisteredCourseIndex maps each student to the single course they are registered for.
type RegisteredCourseIndex map[StudentID]CourseID

// StudentDirectory maps student IDs to their directory entry.
type StudentDirectory map[StudentID]Student

// CourseIndex is an insertion-ordered map of courses.
//
// Iteration follows the order in which ids were first set. Setting an id
// that is already present replaces the course but keeps its position.
// The zero value is an empty index ready to use.
type CourseIndex struct {
	order []CourseID
	byID  map[CourseID]Course
}

// NewCourseIndex builds an index from courses in the given order.
func NewCourseIndex(courses ...Course) *CourseIndex {
	idx := &CourseIndex{}
	for _, c := range courses {
		idx.Set(c)
	}
	return idx
}

// Set adds or replaces a course keyed by its ID.
func (idx *CourseIndex) Set(c Course) {
	if idx.byID == nil {
		idx.byID = make(map[CourseID]Course)
	}
	if _, exists := idx.byID[c.ID]; !exists {
		idx.order = append(idx.order, c.ID)
	}
	idx.byID[c.ID] = c
}

// Get returns the course with the given id.
func (idx *CourseIndex) Get(id CourseID) (Course, bool) {
	if idx == nil {
		return Course{}, false
	}
	c, ok := idx.byID[id]
	return c, ok
}

// Len returns the number of courses.
func (idx *CourseIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// IDs returns course ids in iteration order.
func (idx *CourseIndex) IDs() []CourseID {
	if idx == nil {
		return nil
	}
	return append([]CourseID(nil), idx.order...)
}

// Courses returns the courses in iteration order.
func (idx *CourseIndex) Courses() []Course {
	if idx == nil {
		return nil
	}
	out := make([]Course, len(idx.order))
	for i, id := range idx.order {
		out[i] = idx.byID[id]
	}
	return out
}

// Clone returns a deep copy of the index.
func (idx *CourseIndex) Clone() *CourseIndex {
	out := &CourseIndex{}
	if idx == nil {
		return out
	}
	out.order = append([]CourseID(nil), idx.order...)
	out.byID = make(map[CourseID]Course, len(idx.byID))
	for id, c := range idx.byID {
		out.byID[id] = c.clone()
	}
	return out
}

// StudentInWrongCourse is a student registered for a known course other than the expected one.
type StudentInWrongCourse struct {
	Student          Student `json:"student"`
	RegisteredCourse Course  `json:"registeredCourse"`
	ExpectedCourse   Course  `json:"expectedCourse"`
}

// StudentInNoCourse is a student with no registration record at all.
type StudentInNoCourse struct {
	Student        Student `json:"student"`
	ExpectedCourse Course  `json:"expectedCourse"`
}

// StudentInUnknownCourse is a student registered for a course id that matches no roster.
type StudentInUnknownCourse struct {
	Student         Student  `json:"student"`
	UnknownCourseID CourseID `json:"unknownCourseId"`
	ExpectedCourse  Course   `json:"expectedCourse"`
}

// StudentWithoutDetails is a roster entry with no student directory record.
type StudentWithoutDetails struct {
	ID             StudentID `json:"id"`
	ExpectedCourse Course    `json:"expectedCourse"`
}

// RegistrationDiscrepancy is the result of one reconciliation run.
// Entries in every slice are ordered by (course order, roster order).
type RegistrationDiscrepancy struct {
	StudentsInWrongCourse   []StudentInWrongCourse   `json:"studentsInWrongCourse"`
	StudentsInNoCourse      []StudentInNoCourse      `json:"studentsInNoCourse"`
	StudentsInUnknownCourse []StudentInUnknownCourse `json:"studentsInUnknownCourse"`
	StudentsWithoutDetails  []StudentWithoutDetails  `json:"studentsWithoutDetails"`
}

// DiscrepancySummary holds per-category entry counts.
type DiscrepancySummary struct {
	WrongCourse    int `json:"wrongCourse"`
	NoCourse       int `json:"noCourse"`
	UnknownCourse  int `json:"unknownCourse"`
	WithoutDetails int `json:"withoutDetails"`
	Total          int `json:"total"`
}

// Summary counts the entries in each category.
func (d RegistrationDiscrepancy) Summary() DiscrepancySummary {
	s := DiscrepancySummary{
		WrongCourse:    len(d.StudentsInWrongCourse),
		NoCourse:       len(d.StudentsInNoCourse),
		UnknownCourse:  len(d.StudentsInUnknownCourse),
		WithoutDetails: len(d.StudentsWithoutDetails),
	}
	s.Total = s.WrongCourse + s.NoCourse + s.UnknownCourse + s.WithoutDetails
	return s
}

// Empty reports whether no discrepancy was found.
func (d RegistrationDiscrepancy) Empty() bool {
	return d.Summary().Total == 0
}
