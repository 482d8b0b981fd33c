package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when a response does not match the endpoint's
// canonical shape.
var ErrMalformedResponse = errors.New("malformed upstream response")

// StatusError is a failed upstream call. Status 0 means the request never got an
// HTTP response.
type StatusError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// UserMessage maps the failure to the text shown to dashboard users.
func (e *StatusError) UserMessage() string {
	switch {
	case e.Status == 0:
		return "Network error, please check your connection and try again"
	case e.Status == http.StatusUnauthorized:
		return "Your session has expired, please log in again"
	case e.Status >= 500:
		return "Server error, please try again later"
	case e.Message != "":
		return e.Message
	default:
		return "Request failed"
	}
}

// GenericMessage is shown for failures that carry no user-facing text.
const GenericMessage = "Something went wrong, please try again"

// UserMessage returns the user-facing description of any error coming out of
// this package. Other errors never expose their text.
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	if errors.Is(err, ErrMalformedResponse) {
		return "Unexpected response from server"
	}
	return GenericMessage
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
