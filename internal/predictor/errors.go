package predictor

import (
	"encoding/json"
	"fmt"
)

// FallbackMessage is shown when the service fails without a usable detail
const FallbackMessage = "Failed to fetch prediction"

// ErrorKind tells a server-supplied message from the fixed fallback
type ErrorKind int

const (
	// ServerMessage carries the service's "detail" text verbatim
	ServerMessage ErrorKind = iota
	// Fallback is used when the error body has no usable detail
	Fallback
)

func (k ErrorKind) String() string {
	switch k {
	case ServerMessage:
		return "server_message"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// PredictionError is returned for every non-2xx response from the service.
// Transport failures are never a PredictionError.
type PredictionError struct {
	Kind       ErrorKind
	Detail     string
	StatusCode int
}

func (e *PredictionError) Error() string {
	if e.Kind == ServerMessage {
		return e.Detail
	}
	return FallbackMessage
}

// errorBody is the error shape FastAPI-style services return
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// newPredictionError builds the error from a non-2xx response body. Only a
// non-empty JSON string detail counts as a server message; validation
// errors that put an object or array in detail fall back.
func newPredictionError(statusCode int, body []byte) *PredictionError {
	perr := &PredictionError{Kind: Fallback, StatusCode: statusCode}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return perr
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err != nil || detail == "" {
		return perr
	}

	perr.Kind = ServerMessage
	perr.Detail = detail
	return perr
}
