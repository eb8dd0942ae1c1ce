package lms

import (
	"context"
	"net/http"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Lesson struct {
	ID        string  `json:"id"`
	ModuleID  string  `json:"module_id"`
	Title     string  `json:"title"`
	Content   string  `json:"content,omitempty"`
	Position  NullInt `json:"position"`
	Completed bool    `json:"completed"`
}

type LessonInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content,omitempty"`
	Position *NullInt `json:"position,omitempty"`
}

func (s Service) ListLessons(ctx context.Context, moduleID string) ([]Lesson, error) {
	if err := requireID("module", moduleID); err != nil {
		return nil, err
	}

	lessons, err := get[[]Lesson](ctx, s.api, pathFor("course", "modules", moduleID, "lessons"))
	return lessons, errors.Wrapf(err, "unable to list lessons of module %q", moduleID)
}

func (s Service) GetLesson(ctx context.Context, lessonID string) (Lesson, error) {
	if err := requireID("lesson", lessonID); err != nil {
		return Lesson{}, err
	}

	lesson, err := get[Lesson](ctx, s.api, pathFor("course", "lessons", lessonID))
	return lesson, errors.Wrapf(err, "unable to get lesson %q", lessonID)
}

func (s Service) CreateLesson(ctx context.Context, moduleID string, input LessonInput) (Lesson, error) {
	if err := requireID("module", moduleID); err != nil {
		return Lesson{}, err
	}
	if input.Title == "" {
		return Lesson{}, errors.Wrap(errors.New("missing title"), "validation failed")
	}

	lesson, err := send[Lesson](ctx, s.api, http.MethodPost, pathFor("course", "modules", moduleID, "lessons"), input)
	return lesson, errors.Wrap(err, "unable to create lesson")
}

func (s Service) UpdateLesson(ctx context.Context, lessonID string, input LessonInput) (Lesson, error) {
	if err := requireID("lesson", lessonID); err != nil {
		return Lesson{}, err
	}

	lesson, err := send[Lesson](ctx, s.api, http.MethodPatch, pathFor("course", "lessons", lessonID), input)
	return lesson, errors.Wrapf(err, "unable to update lesson %q", lessonID)
}

func (s Service) DeleteLesson(ctx context.Context, lessonID string) error {
	if err := requireID("lesson", lessonID); err != nil {
		return err
	}

	_, err := send[struct{}](ctx, s.api, http.MethodDelete, pathFor("course", "lessons", lessonID), nil)
	return errors.Wrapf(err, "unable to delete lesson %q", lessonID)
}

// CompleteLesson marks the lesson as completed for the signed-in user.
func (s Service) CompleteLesson(ctx context.Context, lessonID string) (Lesson, error) {
	if err := requireID("lesson", lessonID); err != nil {
		return Lesson{}, err
	}

	lesson, err := send[Lesson](ctx, s.api, http.MethodPost, pathFor("course", "lessons", lessonID, "complete"), nil)
	return lesson, errors.Wrapf(err, "unable to complete lesson %q", lessonID)
}
