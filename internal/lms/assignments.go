package lms

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/errors"
)

type Assignment struct {
	ID          string     `json:"id"`
	ModuleID    string     `json:"module_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	MaxScore    NullInt    `json:"max_score"`
}

type AssignmentInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	MaxScore    *NullInt   `json:"max_score,omitempty"`
}

// Submission is sent as multipart form data: the comment as a field and every attachment as a file.
type Submission struct {
	Comment     string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Content  io.Reader
}

type SubmissionResult struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	Status       string    `json:"status"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func (s Submission) Validate() error {
	if s.Comment == "" && len(s.Attachments) == 0 {
		return errors.New("a submission needs a comment or at least one attachment")
	}

	for _, attachment := range s.Attachments {
		if attachment.Filename == "" {
			return errors.New("attachments must have a filename")
		}
		if attachment.Content == nil {
			return errors.Errorf("attachment %q has no content", attachment.Filename)
		}
	}

	return nil
}

func (s Submission) formData() *api.FormData {
	form := api.NewFormData()
	if s.Comment != "" {
		form.Set("comment", s.Comment)
	}
	for _, attachment := range s.Attachments {
		form.Attach("files", attachment.Filename, attachment.Content)
	}
	return form
}

func (s Service) ListAssignments(ctx context.Context, moduleID string, params ListParams) ([]Assignment, error) {
	if err := requireID("module", moduleID); err != nil {
		return nil, err
	}

	assignments, err := get[[]Assignment](ctx, s.api, pathFor("course", "modules", moduleID, "assignments"), withQuery(params))
	return assignments, errors.Wrapf(err, "unable to list assignments of module %q", moduleID)
}

func (s Service) CreateAssignment(ctx context.Context, moduleID string, input AssignmentInput) (Assignment, error) {
	if err := requireID("module", moduleID); err != nil {
		return Assignment{}, err
	}
	if input.Title == "" {
		return Assignment{}, errors.Wrap(errors.New("missing title"), "validation failed")
	}

	assignment, err := send[Assignment](ctx, s.api, http.MethodPost, pathFor("course", "modules", moduleID, "assignments"), input)
	return assignment, errors.Wrap(err, "unable to create assignment")
}

func (s Service) UpdateAssignment(ctx context.Context, assignmentID string, input AssignmentInput) (Assignment, error) {
	if err := requireID("assignment", assignmentID); err != nil {
		return Assignment{}, err
	}

	assignment, err := send[Assignment](ctx, s.api, http.MethodPatch, pathFor("course", "assignments", assignmentID), input)
	return assignment, errors.Wrapf(err, "unable to update assignment %q", assignmentID)
}

func (s Service) DeleteAssignment(ctx context.Context, assignmentID string) error {
	if err := requireID("assignment", assignmentID); err != nil {
		return err
	}

	_, err := send[struct{}](ctx, s.api, http.MethodDelete, pathFor("course", "assignments", assignmentID), nil)
	return errors.Wrapf(err, "unable to delete assignment %q", assignmentID)
}

func (s Service) SubmitAssignment(ctx context.Context, assignmentID string, submission Submission) (SubmissionResult, error) {
	if err := requireID("assignment", assignmentID); err != nil {
		return SubmissionResult{}, err
	}
	if err := submission.Validate(); err != nil {
		return SubmissionResult{}, errors.Wrap(err, "validation failed")
	}

	result, err := send[SubmissionResult](ctx, s.api, http.MethodPost, pathFor("course", "assignments", assignmentID, "submissions"), submission.formData())
	return result, errors.Wrapf(err, "unable to submit assignment %q", assignmentID)
}
