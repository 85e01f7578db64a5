package tracking

import (
	"errors"
	"time"
)

var (
	ErrMissingCookie = errors.New("tracking cookie not found")
	ErrMissingConfig = errors.New("tracking options incomplete")
)

// Result is the outcome of one submission. Only ResultSent is a success;
// every other value is a silent abort from the caller's point of view.
type Result int

const (
	ResultSent Result = iota
	ResultNoCookie
	ResultMissingConfig
	ResultBuildFailure
	ResultTransportFailure
	ResultDropped
)

func (r Result) OK() bool {
	return r == ResultSent
}

// Attempted reports whether the submission reached the network.
func (r Result) Attempted() bool {
	return r == ResultSent || r == ResultTransportFailure
}

func (r Result) String() string {
	switch r {
	case ResultSent:
		return "sent"
	case ResultNoCookie:
		return "no_cookie"
	case ResultMissingConfig:
		return "missing_config"
	case ResultBuildFailure:
		return "build_failure"
	case ResultTransportFailure:
		return "transport_failure"
	case ResultDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Outcome describes a finished submission for recorders.
type Outcome struct {
	PageURL    string
	Result     Result
	StatusCode int
	Err        error
	Duration   time.Duration
	At         time.Time
}
