package lms

import (
	"context"
	"net/http"
	"time"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Certificate struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	UserID       string    `json:"user_id"`
	SerialNumber string    `json:"serial_number"`
	URL          string    `json:"url,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

func (s Service) ListCertificates(ctx context.Context, courseID string) ([]Certificate, error) {
	if err := requireID("course", courseID); err != nil {
		return nil, err
	}

	certificates, err := get[[]Certificate](ctx, s.api, pathFor("course", courseID, "certificates"))
	return certificates, errors.Wrapf(err, "unable to list certificates of course %q", courseID)
}

func (s Service) IssueCertificate(ctx context.Context, courseID, userID string) (Certificate, error) {
	if err := requireID("course", courseID); err != nil {
		return Certificate{}, err
	}
	if err := requireID("user", userID); err != nil {
		return Certificate{}, err
	}

	payload := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}

	certificate, err := send[Certificate](ctx, s.api, http.MethodPost, pathFor("course", courseID, "certificates"), payload)
	return certificate, errors.Wrapf(err, "unable to issue certificate for %q", userID)
}
