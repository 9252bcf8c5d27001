package sis

import (
	"fmt"
	"time"
)

type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticated
	StateExpired
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	}
	return fmt.Sprintf("AuthState(%d)", int(s))
}

// ClassToken identifies a class within the Session that produced it, it is only
// obtainable through Session.Classes.
type ClassToken struct {
	value  string
	origin uint64
}

func (t ClassToken) String() string {
	return t.value
}

// IsZero is true for the token of no class.
func (t ClassToken) IsZero() bool {
	return t.value == ""
}

// Score is a number that may not have been posted yet.
type Score struct {
	Value  float64
	Posted bool
}

func (s Score) String() string {
	if !s.Posted {
		return "-"
	}
	return fmt.Sprintf("%g", s.Value)
}

type ClassSummary struct {
	Token        ClassToken
	CourseCode   string
	Name         string
	Term         string
	Grade        Score
	LetterGrade  string
	Teacher      string
	TeacherEmail string
	Room         string
	Absent       int
	Tardy        int
	Dismissed    int
}

// AttendanceCounts holds a count per term (index 0 is term 1) and the total the server reports.
type AttendanceCounts struct {
	Terms [4]int
	Total int
}

type Attendance struct {
	Absent    AttendanceCounts
	Tardy     AttendanceCounts
	Dismissed AttendanceCounts
}

type Category int

const (
	CategoryAssessment Category = iota
	CategoryPractice
	CategoryResponsibility
)

// Categories is every grading category in the order the grades grid lists them.
var Categories = [3]Category{CategoryAssessment, CategoryPractice, CategoryResponsibility}

func (c Category) String() string {
	switch c {
	case CategoryAssessment:
		return "assessment"
	case CategoryPractice:
		return "practice"
	case CategoryResponsibility:
		return "responsibility"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

type CategoryGrade struct {
	// Weight is a percentage (0-100).
	Weight float64
	Score  Score
}

type TermGrades struct {
	Categories [3]CategoryGrade
	// Total is the weighted sum of the category scores divided by 100. It is always a
	// number: when TotalDefined is false (a weighted category has no posted score) it is 0.
	Total        float64
	TotalDefined bool
}

// ClassDetail is the attendance and per-term grade breakdown of a class, index 0 of Terms
// is term 1.
type ClassDetail struct {
	Attendance Attendance
	Terms      [4]TermGrades
}

// Ungraded is the literal an assignment's grade, score and points are set to before
// it is graded.
const Ungraded = "Ungraded"

// Mark is a grade-like value that is either a number or a literal marker.
type Mark struct {
	Text    string
	Number  float64
	Numeric bool
}

func (m Mark) String() string {
	return m.Text
}

func (m Mark) IsUngraded() bool {
	return !m.Numeric && m.Text == Ungraded
}

type Assignment struct {
	Name string
	// Assigned and Due are calendar dates, the zero time if the cell was empty.
	Assigned    time.Time
	Due         time.Time
	MeetingDays string
	// Grade is a percentage.
	Grade Mark
	// Score is the literal score text, ex. "9.0 / 10.0".
	Score Mark
	// Points is usually numeric but some assignments show a literal marker instead.
	Points   Mark
	Feedback string
}

type Period struct {
	// Label is the text of the period number column.
	Label      string
	Day        string
	CourseCode string
	Name       string
	Teacher    string
	Room       string
	Current    bool
}

// Schedule is the weekly schedule matrix. The day codes are discovered from the page.
type Schedule struct {
	// DayOrder is every day code in the order of the matrix columns.
	DayOrder []string
	// DayNames maps a day code to its full name.
	DayNames map[string]string
	Days     map[string][]Period
	// CurrentDay is "" when no day is highlighted.
	CurrentDay string
	// CurrentPeriod is a best-effort signal, it relies on the page highlighting the cell.
	CurrentPeriod *Period
}
