package domain

import "errors"

// ReviewGrade represents the recall-difficulty signal a user gives
// after seeing a card's back.
type ReviewGrade string

// Possible review grade values
const (
	ReviewGradeAgain ReviewGrade = "again"
	ReviewGradeHard  ReviewGrade = "hard"
	ReviewGradeGood  ReviewGrade = "good"
	ReviewGradeEasy  ReviewGrade = "easy"
)

// ErrInvalidReviewGrade is returned when a grade outside the four
// defined values is supplied.
var ErrInvalidReviewGrade = errors.New("invalid review grade")

// Quality maps the grade to its numeric quality rating used by the
// scheduling recurrence: again=0, hard=1, good=2, easy=3.
func (g ReviewGrade) Quality() int {
	switch g {
	case ReviewGradeAgain:
		return 0
	case ReviewGradeHard:
		return 1
	case ReviewGradeGood:
		return 2
	case ReviewGradeEasy:
		return 3
	default:
		return -1
	}
}

// IsValid reports whether the grade is one of the four defined values.
func (g ReviewGrade) IsValid() bool {
	switch g {
	case ReviewGradeAgain, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the grade counts as a successful recall
// (good or easy). Again and hard are treated as lapses.
func (g ReviewGrade) IsSuccess() bool {
	return g.Quality() >= 2
}
