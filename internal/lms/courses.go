package lms

import (
	"context"
	"net/http"
	"time"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Course struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	Published   bool       `json:"published"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Published   *bool  `json:"published,omitempty"`
}

func (i CourseInput) Validate() error {
	if i.Title == "" {
		return errors.New("missing title")
	}
	return nil
}

func (s Service) ListCourses(ctx context.Context, params ListParams) ([]Course, error) {
	courses, err := get[[]Course](ctx, s.api, "/course", withQuery(params))
	return courses, errors.Wrap(err, "unable to list courses")
}

func (s Service) GetCourse(ctx context.Context, courseID string) (Course, error) {
	if err := requireID("course", courseID); err != nil {
		return Course{}, err
	}

	course, err := get[Course](ctx, s.api, pathFor("course", courseID))
	return course, errors.Wrapf(err, "unable to get course %q", courseID)
}

func (s Service) CreateCourse(ctx context.Context, input CourseInput) (Course, error) {
	if err := input.Validate(); err != nil {
		return Course{}, errors.Wrap(err, "validation failed")
	}

	course, err := send[Course](ctx, s.api, http.MethodPost, "/course", input)
	return course, errors.Wrap(err, "unable to create course")
}

func (s Service) UpdateCourse(ctx context.Context, courseID string, input CourseInput) (Course, error) {
	if err := requireID("course", courseID); err != nil {
		return Course{}, err
	}

	course, err := send[Course](ctx, s.api, http.MethodPatch, pathFor("course", courseID), input)
	return course, errors.Wrapf(err, "unable to update course %q", courseID)
}

func (s Service) DeleteCourse(ctx context.Context, courseID string) error {
	if err := requireID("course", courseID); err != nil {
		return err
	}

	_, err := send[struct{}](ctx, s.api, http.MethodDelete, pathFor("course", courseID), nil)
	return errors.Wrapf(err, "unable to delete course %q", courseID)
}
