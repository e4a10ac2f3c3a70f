package core

// reconcile.go compares course rosters against registrations and the
// student directory.
//
// Every (course, expected student) pair lands in exactly one bucket, checked
// in this order:
//
//  1. no directory entry            -> StudentsWithoutDetails
//  2. no registration               -> StudentsInNoCourse
//  3. registered for an unknown id  -> StudentsInUnknownCourse
//  4. registered for another course -> StudentsInWrongCourse
//  5. registered for this course    -> nothing
//
// Pairs are visited in course order, then roster order. A student listed
// twice in one roster is reported twice; a student listed in two rosters is
// checked against each independently.

// Reconcile computes the discrepancies between rosters, registrations and
// the student directory. It never fails and does not modify its inputs.
// A nil courses index is treated as empty.
func Reconcile(registered RegisteredCourseIndex, students StudentDirectory, courses *CourseIndex) RegistrationDiscrepancy {
	d := RegistrationDiscrepancy{
		StudentsInWrongCourse:   []StudentInWrongCourse{},
		StudentsInNoCourse:      []StudentInNoCourse{},
		StudentsInUnknownCourse: []StudentInUnknownCourse{},
		StudentsWithoutDetails:  []StudentWithoutDetails{},
	}

	// Entries hold copies so later edits to the caller's index can't leak in.
	frozen := courses.Clone()

	for _, course := range frozen.Courses() {
		for _, studentID := range course.ExpectedStudents {
			student, ok := students[studentID]
			if !ok {
				d.StudentsWithoutDetails = append(d.StudentsWithoutDetails, StudentWithoutDetails{
					ID:             studentID,
					ExpectedCourse: course.clone(),
				})
				continue
			}

			registeredID, ok := registered[studentID]
			switch {
			case !ok:
				d.StudentsInNoCourse = append(d.StudentsInNoCourse, StudentInNoCourse{
					Student:        student,
					ExpectedCourse: course.clone(),
				})
			case registeredID != course.ID:
				registeredCourse, known := frozen.Get(registeredID)
				if !known {
					d.StudentsInUnknownCourse = append(d.StudentsInUnknownCourse, StudentInUnknownCourse{
						Student:         student,
						UnknownCourseID: registeredID,
						ExpectedCourse:  course.clone(),
					})
					continue
				}
				d.StudentsInWrongCourse = append(d.StudentsInWrongCourse, StudentInWrongCourse{
					Student:          student,
					RegisteredCourse: registeredCourse.clone(),
					ExpectedCourse:   course.clone(),
				})
			}
		}
	}

	return d
}

// CourseDiscrepancy groups the entries of a report that share an expected course.
type CourseDiscrepancy struct {
	ExpectedCourse          Course                   `json:"expectedCourse"`
	StudentsInWrongCourse   []StudentInWrongCourse   `json:"studentsInWrongCourse"`
	StudentsInNoCourse      []StudentInNoCourse      `json:"studentsInNoCourse"`
	StudentsInUnknownCourse []StudentInUnknownCourse `json:"studentsInUnknownCourse"`
	StudentsWithoutDetails  []StudentWithoutDetails  `json:"studentsWithoutDetails"`
}

// Total returns the number of entries for the course.
func (c CourseDiscrepancy) Total() int {
	return len(c.StudentsInWrongCourse) + len(c.StudentsInNoCourse) +
		len(c.StudentsInUnknownCourse) + len(c.StudentsWithoutDetails)
}

// ByExpectedCourse regroups the report per expected course, following the
// order of courses. Courses without entries are included with empty slices.
func (d RegistrationDiscrepancy) ByExpectedCourse(courses *CourseIndex) []CourseDiscrepancy {
	ids := courses.IDs()
	groups := make([]CourseDiscrepancy, len(ids))
	pos := make(map[CourseID]int, len(ids))
	for i, id := range ids {
		c, _ := courses.Get(id)
		groups[i] = CourseDiscrepancy{ExpectedCourse: c}
		pos[id] = i
	}

	for _, e := range d.StudentsInWrongCourse {
		if i, ok := pos[e.ExpectedCourse.ID]; ok {
			groups[i].StudentsInWrongCourse = append(groups[i].StudentsInWrongCourse, e)
		}
	}
	for _, e := range d.StudentsInNoCourse {
		if i, ok := pos[e.ExpectedCourse.ID]; ok {
			groups[i].StudentsInNoCourse = append(groups[i].StudentsInNoCourse, e)
		}
	}
	for _, e := range d.StudentsInUnknownCourse {
		if i, ok := pos[e.ExpectedCourse.ID]; ok {
			groups[i].StudentsInUnknownCourse = append(groups[i].StudentsInUnknownCourse, e)
		}
	}
	for _, e := range d.StudentsWithoutDetails {
		if i, ok := pos[e.ExpectedCourse.ID]; ok {
			groups[i].StudentsWithoutDetails = append(groups[i].StudentsWithoutDetails, e)
		}
	}

	return groups
}
