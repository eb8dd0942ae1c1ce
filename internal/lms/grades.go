package lms

import (
	"context"
	"net/http"
	"time"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Grade struct {
	ID           string     `json:"id"`
	SubmissionID string     `json:"submission_id"`
	AssignmentID string     `json:"assignment_id"`
	UserID       string     `json:"user_id"`
	Score        NullInt    `json:"score"`
	Feedback     string     `json:"feedback,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

type GradeInput struct {
	Score    NullInt `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}

func (s Service) ListGrades(ctx context.Context, courseID string) ([]Grade, error) {
	if err := requireID("course", courseID); err != nil {
		return nil, err
	}

	grades, err := get[[]Grade](ctx, s.api, pathFor("course", courseID, "grades"))
	return grades, errors.Wrapf(err, "unable to list grades of course %q", courseID)
}

// GradeSubmission sets the score of a submission. A null score clears a previous grade.
func (s Service) GradeSubmission(ctx context.Context, submissionID string, input GradeInput) (Grade, error) {
	if err := requireID("submission", submissionID); err != nil {
		return Grade{}, err
	}
	if !input.Score.IsNull && input.Score.Value < 0 {
		return Grade{}, errors.Wrap(errors.New("score must not be negative"), "validation failed")
	}

	grade, err := send[Grade](ctx, s.api, http.MethodPut, pathFor("course", "submissions", submissionID, "grade"), input)
	return grade, errors.Wrapf(err, "unable to grade submission %q", submissionID)
}
