// Package apperr classifies remote and client failures and turns them into
// user-facing outcomes.
package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/service"
)

// SignInPath is where an unauthenticated user is sent.
const SignInPath = "/users/sign_in"

// Default messages.
const (
	MsgNotFound = "Item not found"
	MsgNetwork  = "Something went wrong. Please check your connection and try again."
	MsgServer   = "Something went wrong"
)

// Kind is a failure class
type Kind int

const (
	KindUnknownClient Kind = iota
	KindAuthenticationRequired
	KindResourceNotFound
	KindValidationFailed
	KindNetworkUnreachable
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindResourceNotFound:
		return "resource_not_found"
	case KindValidationFailed:
		return "validation_failed"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown_client_error"
	}
}

// Failure is a classified error
type Failure struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Classify maps err onto the failure taxonomy. conjunction joins the last pair
// of validation messages.
func Classify(err error, conjunction string) Failure {
	if errors.Is(err, context.Canceled) {
		return Failure{Kind: KindCanceled, Message: "request canceled", Err: err}
	}

	var respErr *service.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.Status {
		case 401:
			return Failure{Kind: KindAuthenticationRequired, Status: 401, Message: "You must sign in or sign up before continuing.", Err: err}
		case 403, 404:
			return Failure{Kind: KindResourceNotFound, Status: respErr.Status, Message: MsgNotFound, Err: err}
		default:
			msg := ValidationMessage(respErr.Data, conjunction)
			if msg == "" {
				msg = MsgServer
			}
			return Failure{Kind: KindValidationFailed, Status: respErr.Status, Message: msg, Err: err}
		}
	}

	var noResp *service.NoResponseError
	if errors.As(err, &noResp) || errors.Is(err, context.DeadlineExceeded) {
		return Failure{Kind: KindNetworkUnreachable, Message: MsgNetwork, Err: err}
	}

	return Failure{Kind: KindUnknownClient, Message: err.Error(), Err: err}
}

// ValidationMessage joins a field-map error body into one sentence:
// {"title":["can't be blank"],"category":"is too long"} becomes
// "category is too long and title can't be blank". Returns "" when data is
// not a field map.
func ValidationMessage(data json.RawMessage, conjunction string) string {
	if len(data) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			parts = append(parts, k+" "+v)
		case []any:
			for _, m := range v {
				if s, ok := m.(string); ok {
					parts = append(parts, k+" "+s)
				}
			}
		}
	}
	return JoinSentence(parts, conjunction)
}

// JoinSentence joins parts as "a", "a and b" or "a, b and c".
func JoinSentence(parts []string, conjunction string) string {
	if conjunction == "" {
		conjunction = "and"
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " " + conjunction + " " + parts[len(parts)-1]
	}
}

// Handler turns failures into notices and redirects.
type Handler struct {
	Notifier notify.Notifier

	// Redirect navigates to a route. Nil means no navigation is available
	// and authentication failures are reported as notices instead.
	Redirect func(path string)

	Conjunction string

	// Optional message overrides. Empty fields use the defaults.
	NotFound string
	Network  string
	Server   string
}

// Handle classifies err and reports it. Cancellation is never reported.
func (h Handler) Handle(err error) Failure {
	f := Classify(err, h.Conjunction)
	h.Report(f)
	return f
}

// Report delivers an already classified failure.
func (h Handler) Report(f Failure) {
	notifier := h.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}

	switch f.Kind {
	case KindCanceled:
		return
	case KindAuthenticationRequired:
		if h.Redirect != nil {
			h.Redirect(SignInPath)
			return
		}
		notify.Errorf(notifier, "%s", f.Message)
	case KindResourceNotFound:
		notify.Errorf(notifier, "%s", firstNonEmpty(h.NotFound, f.Message))
	case KindNetworkUnreachable:
		notify.Errorf(notifier, "%s", firstNonEmpty(h.Network, f.Message))
	case KindValidationFailed:
		notify.Errorf(notifier, "%s", firstNonEmpty(h.Server, f.Message))
	default:
		notify.Errorf(notifier, "%s", f.Message)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
