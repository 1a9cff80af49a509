package navigation

import "fmt"

// MalformedTokenError reports a token outside the wire grammar.
type MalformedTokenError struct {
	Token  string
	Reason string
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed token %q: %s", e.Token, e.Reason)
}

func (e *MalformedTokenError) Code() string { return "malformed_token" }

// OutOfRangeError reports a list page beyond the catalog. The engine clamps
// such pages, so this error only describes what happened.
type OutOfRangeError struct {
	Requested int
	Served    int
	Pages     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("page %d out of range (%d pages), served page %d", e.Requested, e.Pages, e.Served)
}

func (e *OutOfRangeError) Code() string { return "out_of_range" }

// UnauthorizedActionError reports a restricted action denied by the guard.
type UnauthorizedActionError struct {
	Identity int64
	Action   string
}

func (e *UnauthorizedActionError) Error() string {
	return fmt.Sprintf("identity %d is not authorized for %q", e.Identity, e.Action)
}

func (e *UnauthorizedActionError) Code() string { return "unauthorized" }

// ContentMissingError reports a detail key absent from the catalog.
type ContentMissingError struct {
	Key string
}

func (e *ContentMissingError) Error() string {
	return fmt.Sprintf("content %q is missing from the catalog", e.Key)
}

func (e *ContentMissingError) Code() string { return "content_missing" }
