package domain

// RequestState is the lifecycle position of the lookup controller.
type RequestState string

const (
	StateIdle      RequestState = "idle"
	StateInFlight  RequestState = "in_flight"
	StateSucceeded RequestState = "succeeded"
	StateFailed    RequestState = "failed"
)

// FailureKind classifies why a lookup did not produce a record.
type FailureKind string

const (
	FailureInvalidInput   FailureKind = "invalid_input"
	FailureTimeout        FailureKind = "timeout"
	FailureNotFound       FailureKind = "not_found"
	FailureTransportError FailureKind = "transport_error"
)
