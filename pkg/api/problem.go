// Package api holds the wire types of the cachekit admin API.
package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]any `json:"-"`

	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) Unwrap() error {
	return p.Log
}

// MarshalJSON flattens Extensions into the root object. Standard members win
// over extensions of the same name.
func (p *Problem) MarshalJSON() ([]byte, error) {
	data := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		data[k] = v
	}
	data["type"] = p.Type
	data["title"] = p.Title
	data["status"] = p.Status
	if p.Detail != "" {
		data["detail"] = p.Detail
	}
	if p.Instance != "" {
		data["instance"] = p.Instance
	}
	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// NewProblem creates a generic Problem
func NewProblem(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank",
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]any),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value any) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

func WithInstance(instance string) ProblemOption {
	return func(p *Problem) {
		p.Instance = instance
	}
}

// ValidationError reports field-level failures under the "errors" extension.
func ValidationError(fields map[string]string) *Problem {
	return NewProblem(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithExtension("errors", fields),
	)
}

func BadRequest(detail string, opts ...ProblemOption) *Problem {
	return NewProblem(http.StatusBadRequest, "Bad Request", detail, opts...)
}

func NotFound(detail string, opts ...ProblemOption) *Problem {
	return NewProblem(http.StatusNotFound, "Not Found", detail, opts...)
}

func TooManyRequests(detail string) *Problem {
	return NewProblem(http.StatusTooManyRequests, "Too Many Requests", detail)
}

func Internal(err error) *Problem {
	return NewProblem(http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.", WithLog(err))
}
