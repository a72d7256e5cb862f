package server

import "strconv"

// Status is an HTTP response status. Only the codes this server actually
// produces are represented.
type Status int

const (
	StatusOK          Status = 200
	StatusSeeOther    Status = 303
	StatusForbidden   Status = 403
	StatusNotFound    Status = 404
	StatusServerError Status = 500
)

// ReasonPhrase returns the fixed reason phrase written after the status code
// on the status line.
func (s Status) ReasonPhrase() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusSeeOther:
		return "SEE OTHER"
	case StatusForbidden:
		return "FORBIDDEN"
	case StatusNotFound:
		return "NOT FOUND"
	case StatusServerError:
		return "SERVER ERROR"
	default:
		return "UNKNOWN"
	}
}

func (s Status) String() string {
	return strconv.Itoa(int(s)) + " " + s.ReasonPhrase()
}
