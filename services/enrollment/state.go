// Package enrollment derives the per-course training state of a user.
//
// Nothing here is persisted: the state is always reconstructed from the
// enrolled set, progress, assignment and payment maps on the user record.
package enrollment

import (
	"fmt"

	"github.com/sahilchouksey/skill-training-api/model"
)

// Stage is the position of a (user, course) pair in the enrollment lifecycle
type Stage int

const (
	Unenrolled Stage = iota
	Enrolled
	InProgress
	Submitted
	Complete
)

func (s Stage) String() string {
	switch s {
	case Unenrolled:
		return "unenrolled"
	case Enrolled:
		return "enrolled"
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// State is the resolved state of one course for one user. Only the fields
// relevant to Stage are populated.
type State struct {
	Stage    Stage
	Payment  model.PaymentInfo
	Progress model.DayProgress
	FileRef  string
}

// Resolve derives the state of courseID for the user.
// assignmentRequired comes from the course definition.
func Resolve(u *model.User, courseID model.CourseID, assignmentRequired bool) State {
	if u == nil || !u.IsEnrolled(courseID) {
		return State{Stage: Unenrolled}
	}

	st := State{
		Stage:    Enrolled,
		Payment:  u.PaymentStatus[courseID],
		Progress: u.TrainingProgress[courseID],
		FileRef:  u.Assignments[courseID],
	}

	switch {
	case st.Progress.AllComplete() && (st.FileRef != "" || !assignmentRequired):
		st.Stage = Complete
	case st.FileRef != "":
		st.Stage = Submitted
	case st.Progress.CompletedCount() > 0:
		st.Stage = InProgress
	}
	return st
}

// CanToggleProgress reports whether the user may change day flags for the course
func CanToggleProgress(u *model.User, courseID model.CourseID) bool {
	return u != nil && u.IsStudent() && u.IsEnrolled(courseID)
}

// CanSubmitAssignment reports whether the user may upload an assignment.
// Day flags are deliberately not consulted.
func CanSubmitAssignment(u *model.User, courseID model.CourseID) bool {
	return u != nil && u.IsStudent() && u.IsEnrolled(courseID)
}

// Catalog answers whether a course requires an assignment for completion.
// Unknown courses are treated as requiring one.
type Catalog map[model.CourseID]bool

// NewCatalog builds a Catalog from course definitions
func NewCatalog(courses []model.Course) Catalog {
	c := make(Catalog, len(courses))
	for _, course := range courses {
		c[course.CourseID] = course.AssignmentRequired
	}
	return c
}

func (c Catalog) AssignmentRequired(courseID model.CourseID) bool {
	required, ok := c[courseID]
	if !ok {
		return true
	}
	return required
}

// CompletedCourses counts enrolled courses that reached Complete
func CompletedCourses(u *model.User, catalog Catalog) int {
	n := 0
	for _, id := range u.EnrolledCourses {
		if Resolve(u, id, catalog.AssignmentRequired(id)).Stage == Complete {
			n++
		}
	}
	return n
}

// CompletionSummary renders the admin dashboard completion string
func CompletionSummary(u *model.User, catalog Catalog) string {
	if len(u.EnrolledCourses) == 0 {
		return "No courses enrolled"
	}
	return fmt.Sprintf("%d/%d courses completed", CompletedCourses(u, catalog), len(u.EnrolledCourses))
}
