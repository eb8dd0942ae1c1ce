package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/rwx-research/lms-cli/internal/errors"
)

const jsonContentType = "application/json"

// FormData is a multipart payload. The client sends it as encoded here and uses the multipart
// content type (with its boundary) instead of JSON.
type FormData struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	content  io.Reader
}

func NewFormData() *FormData {
	return &FormData{}
}

func (f *FormData) Set(name, value string) *FormData {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

func (f *FormData) Attach(name, filename string, content io.Reader) *FormData {
	f.parts = append(f.parts, formPart{name: name, filename: filename, content: content})
	return f
}

func (f *FormData) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, part := range f.parts {
		if part.content == nil {
			if err := writer.WriteField(part.name, part.value); err != nil {
				return nil, "", errors.Wrapf(err, "unable to write form field %q", part.name)
			}
			continue
		}

		fw, err := writer.CreateFormFile(part.name, part.filename)
		if err != nil {
			return nil, "", errors.Wrapf(err, "unable to create form file %q", part.filename)
		}

		if _, err := io.Copy(fw, part.content); err != nil {
			return nil, "", errors.Wrapf(err, "unable to read %q", part.filename)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "unable to finalize form data")
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// encodePayload returns the body and its default content type. Bodies are buffered so a retried
// request sends the same bytes.
func encodePayload(payload any) ([]byte, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, "", nil
	case *FormData:
		return p.encode()
	case json.RawMessage:
		return p, jsonContentType, nil
	case []byte:
		return p, "", nil
	case io.Reader:
		body, err := io.ReadAll(p)
		if err != nil {
			return nil, "", errors.Wrap(err, "unable to read request body")
		}
		return body, "", nil
	default:
		body, err := json.Marshal(p)
		if err != nil {
			return nil, "", errors.Wrap(err, "unable to encode as JSON")
		}
		return body, jsonContentType, nil
	}
}

type RequestOption func(*requestOptions)

type requestOptions struct {
	header http.Header
	query  url.Values
}

// WithHeader overrides a request header. A Content-Type set this way wins over the payload's.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, vs := range values {
			for _, v := range vs {
				o.query.Add(key, v)
			}
		}
	}
}

func newRequestOptions(opts []RequestOption) requestOptions {
	o := requestOptions{header: http.Header{}, query: url.Values{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
