package research

import (
	"encoding/json"
	"fmt"
)

// Params bound a deep research job.
type Params struct {
	MaxDepth  int `json:"maxDepth"`
	TimeLimit int `json:"timeLimit"`
	MaxURLs   int `json:"maxUrls"`
}

// DefaultParams returns the service defaults used when a caller leaves a
// field at zero.
func DefaultParams() Params {
	return Params{MaxDepth: 3, TimeLimit: 180, MaxURLs: 10}
}

// WithDefaults fills zero fields with the service defaults.
func (p Params) WithDefaults() Params {
	def := DefaultParams()
	if p.MaxDepth <= 0 {
		p.MaxDepth = def.MaxDepth
	}
	if p.TimeLimit <= 0 {
		p.TimeLimit = def.TimeLimit
	}
	if p.MaxURLs <= 0 {
		p.MaxURLs = def.MaxURLs
	}
	return p
}

// Source is one reference discovered during research. The upstream API is not
// consistent about field names across versions, so decoding accepts both
// url/link, title/name and summary/content.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title   string `json:"title"`
		Name    string `json:"name"`
		URL     string `json:"url"`
		Link    string `json:"link"`
		Summary string `json:"summary"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Title = raw.Title
	if s.Title == "" {
		s.Title = raw.Name
	}
	s.URL = raw.URL
	if s.URL == "" {
		s.URL = raw.Link
	}
	s.Summary = raw.Summary
	if s.Summary == "" {
		s.Summary = raw.Content
	}
	return nil
}

// Activity is one progress notification emitted while a job runs.
type Activity struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// String renders the activity for display, substituting placeholders when the
// service omits a field.
func (a Activity) String() string {
	t := a.Type
	if t == "" {
		t = "event"
	}
	m := a.Message
	if m == "" {
		m = "..."
	}
	return fmt.Sprintf("[%s] %s", t, m)
}

// ActivityFunc receives activities as they are observed. Implementations must
// not block for long; they are called from the polling loop.
type ActivityFunc func(Activity)

// Result is the outcome of one research run. Failed runs still produce a
// Result so callers can persist and display the error without special cases.
type Result struct {
	Success       bool     `json:"success"`
	FinalAnalysis string   `json:"finalAnalysis"`
	Sources       []Source `json:"sources"`
	Error         string   `json:"error,omitempty"`
}

// Failure wraps an error message in a Result with empty analysis and an empty
// (never nil) source list.
func Failure(msg string) *Result {
	return &Result{
		Success:       false,
		FinalAnalysis: "",
		Sources:       []Source{},
		Error:         msg,
	}
}
