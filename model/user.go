package model

import (
	"slices"
	"time"
)

// Role of a user account
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a registered account together with its per-course training state.
// Each storage backend maps it onto its own row or document shape.
type User struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	Email            string                   `json:"email"`
	PasswordHash     string                   `json:"-"`
	Role             Role                     `json:"role"`
	EnrolledCourses  []CourseID               `json:"enrolledCourses"`
	TrainingProgress map[CourseID]DayProgress `json:"trainingProgress"`
	Assignments      map[CourseID]string      `json:"assignments"`
	PaymentStatus    map[CourseID]PaymentInfo `json:"paymentStatus"`
	Shortlisted      bool                     `json:"shortlisted"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// UserResponse is the password-free projection returned to clients
type UserResponse struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	Email            string                   `json:"email"`
	Role             Role                     `json:"role"`
	EnrolledCourses  []CourseID               `json:"enrolledCourses"`
	TrainingProgress map[CourseID]DayProgress `json:"trainingProgress"`
	Assignments      map[CourseID]string      `json:"assignments"`
	AssignmentURLs   map[CourseID]string      `json:"assignmentUrls"`
	PaymentStatus    map[CourseID]PaymentInfo `json:"paymentStatus"`
	Shortlisted      bool                     `json:"shortlisted"`
	CreatedAt        time.Time                `json:"createdAt"`
}

// ResolveAssignmentURLs fills AssignmentURLs from the stored file references
func (r *UserResponse) ResolveAssignmentURLs(fileURL func(ref string) string) {
	r.AssignmentURLs = make(map[CourseID]string, len(r.Assignments))
	for courseID, ref := range r.Assignments {
		if ref != "" {
			r.AssignmentURLs[courseID] = fileURL(ref)
		}
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsEnrolled reports whether the course is in the user's enrolled set
func (u *User) IsEnrolled(courseID CourseID) bool {
	return slices.Contains(u.EnrolledCourses, courseID)
}

// Enroll adds the course to the enrolled set, records the payment and
// initialises day progress unless progress already exists.
func (u *User) Enroll(courseID CourseID, payment PaymentInfo) {
	u.ensureMaps()
	if !u.IsEnrolled(courseID) {
		u.EnrolledCourses = append(u.EnrolledCourses, courseID)
	}
	u.PaymentStatus[courseID] = payment
	if _, ok := u.TrainingProgress[courseID]; !ok {
		u.TrainingProgress[courseID] = DayProgress{}
	}
}

// SetDayProgress sets a single day flag for the course
func (u *User) SetDayProgress(courseID CourseID, day Day, completed bool) {
	u.ensureMaps()
	p := u.TrainingProgress[courseID]
	p.Set(day, completed)
	u.TrainingProgress[courseID] = p
}

// SetAssignment replaces the submitted file reference for the course
func (u *User) SetAssignment(courseID CourseID, fileRef string) {
	u.ensureMaps()
	u.Assignments[courseID] = fileRef
}

// Clone returns a deep copy so callers can't mutate shared state
func (u *User) Clone() *User {
	c := *u
	c.EnrolledCourses = slices.Clone(u.EnrolledCourses)
	c.TrainingProgress = cloneMap(u.TrainingProgress)
	c.Assignments = cloneMap(u.Assignments)
	c.PaymentStatus = cloneMap(u.PaymentStatus)
	return &c
}

// Public strips the password hash and normalises nil collections
func (u *User) Public() UserResponse {
	c := u.Clone()
	c.ensureMaps()
	if c.EnrolledCourses == nil {
		c.EnrolledCourses = []CourseID{}
	}

	return UserResponse{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Role:             c.Role,
		EnrolledCourses:  c.EnrolledCourses,
		TrainingProgress: c.TrainingProgress,
		Assignments:      c.Assignments,
		AssignmentURLs:   map[CourseID]string{},
		PaymentStatus:    c.PaymentStatus,
		Shortlisted:      c.Shortlisted,
		CreatedAt:        c.CreatedAt,
	}
}

func (u *User) ensureMaps() {
	if u.TrainingProgress == nil {
		u.TrainingProgress = map[CourseID]DayProgress{}
	}
	if u.Assignments == nil {
		u.Assignments = map[CourseID]string{}
	}
	if u.PaymentStatus == nil {
		u.PaymentStatus = map[CourseID]PaymentInfo{}
	}
}

func cloneMap[V any](m map[CourseID]V) map[CourseID]V {
	if m == nil {
		return nil
	}
	out := make(map[CourseID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
