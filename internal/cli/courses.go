package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/lms"
)

func (s Service) ListCourses(ctx context.Context, cfg ListCoursesConfig) error {
	stop := s.spin("Loading courses...")
	courses, err := s.lms.ListCourses(ctx, lms.ListParams{Limit: cfg.Limit, Search: cfg.Search})
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, courses); ok {
		return err
	}

	if len(courses) == 0 {
		fmt.Fprintln(s.Stdout, "No courses found.")
		return nil
	}

	rows := make([][]string, len(courses))
	for i, course := range courses {
		rows[i] = []string{course.ID, course.Title, yesNo(course.Published)}
	}

	return s.writeTable([]string{"ID", "TITLE", "PUBLISHED"}, rows)
}

func (s Service) GetCourse(ctx context.Context, cfg GetCourseConfig) error {
	stop := s.spin("Loading course...")
	course, err := s.lms.GetCourse(ctx, cfg.CourseID)
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, course); ok {
		return err
	}

	fmt.Fprintf(s.Stdout, "ID: %v\n", course.ID)
	fmt.Fprintf(s.Stdout, "Title: %v\n", course.Title)
	if course.Description != "" {
		fmt.Fprintf(s.Stdout, "Description: %v\n", course.Description)
	}
	fmt.Fprintf(s.Stdout, "Published: %v\n", yesNo(course.Published))

	return nil
}

func (s Service) CourseOutline(ctx context.Context, cfg CourseOutlineConfig) error {
	stop := s.spin("Loading course outline...")
	outline, err := s.lms.CourseOutline(ctx, cfg.CourseID)
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, outline); ok {
		return err
	}

	fmt.Fprintf(s.Stdout, "%s (%s)\n", outline.Course.Title, outline.Course.ID)
	for i, module := range outline.Modules {
		fmt.Fprintf(s.Stdout, "  %d. %s (%s)\n", i+1, module.Title, module.ID)
		for _, lesson := range module.Lessons {
			mark := " "
			if lesson.Completed {
				mark = "✓"
			}
			fmt.Fprintf(s.Stdout, "     [%s] %s (%s)\n", mark, lesson.Title, lesson.ID)
		}
	}

	return nil
}

func (s Service) ListAssignments(ctx context.Context, cfg ListAssignmentsConfig) error {
	stop := s.spin("Loading assignments...")
	assignments, err := s.lms.ListAssignments(ctx, cfg.ModuleID, lms.ListParams{Limit: cfg.Limit})
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, assignments); ok {
		return err
	}

	if len(assignments) == 0 {
		fmt.Fprintln(s.Stdout, "No assignments found.")
		return nil
	}

	rows := make([][]string, len(assignments))
	for i, assignment := range assignments {
		rows[i] = []string{assignment.ID, assignment.Title, formatTime(assignment.DueAt), formatNullInt(assignment.MaxScore)}
	}

	return s.writeTable([]string{"ID", "TITLE", "DUE", "MAX SCORE"}, rows)
}

func (s Service) SubmitAssignment(ctx context.Context, cfg SubmitAssignmentConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	submission := lms.Submission{Comment: cfg.Comment}
	for _, path := range cfg.Files {
		file, err := s.FileSystem.Open(path)
		if err != nil {
			if errors.Is(err, errors.ErrFileNotExists) {
				return fmt.Errorf("Unable to find %q", path)
			}
			return errors.Wrapf(err, "unable to open %q", path)
		}
		defer file.Close()

		submission.Attachments = append(submission.Attachments, lms.Attachment{
			Filename: filepath.Base(path),
			Content:  file,
		})
	}

	stop := s.spin("Submitting...")
	result, err := s.lms.SubmitAssignment(ctx, cfg.AssignmentID, submission)
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, result); ok {
		return err
	}

	fmt.Fprintf(s.Stdout, "Submitted %s (%s).\n", result.ID, result.Status)
	return nil
}

func (s Service) ListGrades(ctx context.Context, cfg ListGradesConfig) error {
	stop := s.spin("Loading grades...")
	grades, err := s.lms.ListGrades(ctx, cfg.CourseID)
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, grades); ok {
		return err
	}

	if len(grades) == 0 {
		fmt.Fprintln(s.Stdout, "No grades yet.")
		return nil
	}

	rows := make([][]string, len(grades))
	for i, grade := range grades {
		rows[i] = []string{grade.AssignmentID, grade.SubmissionID, grade.UserID, formatNullInt(grade.Score), grade.Feedback}
	}

	return s.writeTable([]string{"ASSIGNMENT", "SUBMISSION", "USER", "SCORE", "FEEDBACK"}, rows)
}

func (s Service) ListCertificates(ctx context.Context, cfg ListCertificatesConfig) error {
	stop := s.spin("Loading certificates...")
	certificates, err := s.lms.ListCertificates(ctx, cfg.CourseID)
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, certificates); ok {
		return err
	}

	if len(certificates) == 0 {
		fmt.Fprintln(s.Stdout, "No certificates issued.")
		return nil
	}

	rows := make([][]string, len(certificates))
	for i, certificate := range certificates {
		rows[i] = []string{certificate.SerialNumber, certificate.UserID, formatTime(&certificate.IssuedAt)}
	}

	return s.writeTable([]string{"SERIAL", "USER", "ISSUED"}, rows)
}

func (s Service) IssueCertificate(ctx context.Context, cfg IssueCertificateConfig) error {
	stop := s.spin("Issuing certificate...")
	certificate, err := s.lms.IssueCertificate(ctx, cfg.CourseID, cfg.UserID)
	stop()
	if err != nil {
		return err
	}

	if ok, err := s.writeStructured(cfg.Output, certificate); ok {
		return err
	}

	fmt.Fprintf(s.Stdout, "Issued certificate %s to %s.\n", certificate.SerialNumber, certificate.UserID)
	if certificate.URL != "" {
		fmt.Fprintf(s.Stdout, "\t%v\n", certificate.URL)
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatNullInt(n lms.NullInt) string {
	if n.IsNull {
		return "-"
	}
	return strconv.Itoa(n.Value)
}
