package lms

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rwx-research/lms-cli/internal/errors"
)

const outlineConcurrency = 4

type Outline struct {
	Course  Course          `json:"course"`
	Modules []ModuleOutline `json:"modules"`
}

type ModuleOutline struct {
	Module  `yaml:",inline"`
	Lessons []Lesson `json:"lessons"`
}

// CourseOutline loads a course with its modules and then every module's lessons in parallel.
func (s Service) CourseOutline(ctx context.Context, courseID string) (Outline, error) {
	var (
		outline Outline
		modules []Module
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outline.Course, err = s.GetCourse(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		modules, err = s.ListModules(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Outline{}, err
	}

	outline.Modules = make([]ModuleOutline, len(modules))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(outlineConcurrency)
	for i, module := range modules {
		outline.Modules[i].Module = module
		g.Go(func() error {
			lessons, err := s.ListLessons(gctx, module.ID)
			if err != nil {
				return err
			}
			outline.Modules[i].Lessons = lessons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Outline{}, errors.Wrapf(err, "unable to build outline of course %q", courseID)
	}

	return outline, nil
}
