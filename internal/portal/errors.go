package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenericMessage is shown when the server gives no usable detail.
const GenericMessage = "Something went wrong while contacting the portal. Please try again."

// RemoteError is a failed call to the portal API: either a transport failure (Status 0)
// or a non-2xx response.
type RemoteError struct {
	Op     string
	Status int
	Code   string
	Detail string
	Err    error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString("portal: ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Code != "" {
		b.WriteString(" ")
		b.WriteString(e.Code)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.Err }

// UserMessage is the server-provided detail when there is one, otherwise a generic message.
func (e *RemoteError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return GenericMessage
}

// IsStatus reports whether err is a RemoteError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var rerr *RemoteError
	return errors.As(err, &rerr) && rerr.Status == status
}

// errorBody covers the error shapes the API and its proxies return:
// {"error":{"code","message"}}, {"detail":"..."} and {"message":"..."}.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Detail  string          `json:"detail"`
	Message string          `json:"message"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newRemoteError(op string, resp *http.Response) *RemoteError {
	rerr := &RemoteError{Op: op, Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return rerr
	}

	if len(body.Error) > 0 {
		var env errorEnvelope
		if err := json.Unmarshal(body.Error, &env); err == nil {
			rerr.Code = env.Code
			rerr.Detail = env.Message
		} else {
			var s string
			if json.Unmarshal(body.Error, &s) == nil {
				rerr.Detail = s
			}
		}
	}
	if rerr.Detail == "" {
		rerr.Detail = body.Detail
	}
	if rerr.Detail == "" {
		rerr.Detail = body.Message
	}
	return rerr
}
