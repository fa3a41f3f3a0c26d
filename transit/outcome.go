package transit

import "fmt"

// Outcome is the result of one poll cycle. It is exactly one of
// Arrivals, ServiceErrors or TransportFailure.
type Outcome interface {
	isOutcome()
}

// Arrivals holds the predictions of a successful poll.
type Arrivals []Arrival

// ServiceError is a condition reported by the upstream service itself,
// such as "No service scheduled".
type ServiceError struct {
	Route   string
	Stop    string
	Message string
}

type ServiceErrors []ServiceError

// FailureKind classifies why a poll produced no usable payload.
type FailureKind int

const (
	Unclassified FailureKind = iota
	BadRequest
	Unauthorized
	DecodeError
)

func (k FailureKind) String() string {
	switch k {
	case BadRequest:
		return "bad-request"
	case Unauthorized:
		return "unauthorized"
	case DecodeError:
		return "decode-error"
	default:
		return "unclassified"
	}
}

// TransportFailure is a poll that failed on the way to, or while reading,
// the upstream service.
type TransportFailure struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (f TransportFailure) Error() string {
	msg := "transport failure: " + f.Kind.String()
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, f.StatusCode)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f TransportFailure) Unwrap() error {
	return f.Err
}

func (Arrivals) isOutcome()         {}
func (ServiceErrors) isOutcome()    {}
func (TransportFailure) isOutcome() {}

// Normalizer turns a raw 200 response body into an Outcome.
type Normalizer func(raw []byte) Outcome
