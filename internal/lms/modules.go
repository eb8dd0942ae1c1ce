package lms

import (
	"context"
	"net/http"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Module struct {
	ID       string  `json:"id"`
	CourseID string  `json:"course_id"`
	Title    string  `json:"title"`
	Position NullInt `json:"position"`
}

type ModuleInput struct {
	Title    string   `json:"title"`
	Position *NullInt `json:"position,omitempty"`
}

func (s Service) ListModules(ctx context.Context, courseID string) ([]Module, error) {
	if err := requireID("course", courseID); err != nil {
		return nil, err
	}

	modules, err := get[[]Module](ctx, s.api, pathFor("course", courseID, "modules"))
	return modules, errors.Wrapf(err, "unable to list modules of course %q", courseID)
}

func (s Service) CreateModule(ctx context.Context, courseID string, input ModuleInput) (Module, error) {
	if err := requireID("course", courseID); err != nil {
		return Module{}, err
	}
	if input.Title == "" {
		return Module{}, errors.Wrap(errors.New("missing title"), "validation failed")
	}

	module, err := send[Module](ctx, s.api, http.MethodPost, pathFor("course", courseID, "modules"), input)
	return module, errors.Wrap(err, "unable to create module")
}

func (s Service) UpdateModule(ctx context.Context, moduleID string, input ModuleInput) (Module, error) {
	if err := requireID("module", moduleID); err != nil {
		return Module{}, err
	}

	module, err := send[Module](ctx, s.api, http.MethodPatch, pathFor("course", "modules", moduleID), input)
	return module, errors.Wrapf(err, "unable to update module %q", moduleID)
}

func (s Service) DeleteModule(ctx context.Context, moduleID string) error {
	if err := requireID("module", moduleID); err != nil {
		return err
	}

	_, err := send[struct{}](ctx, s.api, http.MethodDelete, pathFor("course", "modules", moduleID), nil)
	return errors.Wrapf(err, "unable to delete module %q", moduleID)
}
