package report

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a failed completion or research call so callers can react
// without parsing provider-specific messages.
type Kind string

const (
	KindServiceUnavailable Kind = "service unavailable"
	KindInvalidCredentials Kind = "invalid credentials"
	KindRateLimited        Kind = "rate limited"
	KindUnknown            Kind = "unknown"
)

// Stage identifies the pipeline step a failure occurred in.
type Stage string

const (
	StageResearch Stage = "research"
	StageFormat   Stage = "format"
	StageDraft    Stage = "draft"
	StageEnhance  Stage = "enhance"
)

// Error is the typed failure returned by Pipeline.Run. Message carries the
// underlying error text verbatim.
type Error struct {
	Stage   Stage
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Stage, e.Kind, e.Message)
}

// statusCodeRE matches the HTTP status embedded in client error text, both
// the completion client's "status code: 401" and "status 401" variants.
var statusCodeRE = regexp.MustCompile(`status(?: code)?:? (\d{3})`)

// Classify maps an error to its Kind. HTTP statuses recovered from the error
// chain take precedence; transport-level failures count as the service being
// unavailable.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindServiceUnavailable
	}

	msg := err.Error()
	if m := statusCodeRE.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		switch {
		case code == 401 || code == 403:
			return KindInvalidCredentials
		case code == 429:
			return KindRateLimited
		case code == 408 || code >= 500:
			return KindServiceUnavailable
		}
		return KindUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindServiceUnavailable
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "timeout"):
		return KindServiceUnavailable
	case strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "too many requests"):
		return KindRateLimited
	case strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "invalid api key"):
		return KindInvalidCredentials
	}
	return KindUnknown
}
