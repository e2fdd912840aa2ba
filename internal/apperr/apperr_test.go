package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{
			name: "unauthorized",
			err:  &service.ResponseError{Status: 401},
			kind: KindAuthenticationRequired,
		},
		{
			name:    "forbidden",
			err:     &service.ResponseError{Status: 403},
			kind:    KindResourceNotFound,
			message: MsgNotFound,
		},
		{
			name:    "not found wrapped",
			err:     fmt.Errorf("complete item: %w", &service.ResponseError{Status: 404}),
			kind:    KindResourceNotFound,
			message: MsgNotFound,
		},
		{
			name:    "validation",
			err:     &service.ResponseError{Status: 422, Data: json.RawMessage(`{"title":["can't be blank"],"category":"is too long"}`)},
			kind:    KindValidationFailed,
			message: "category is too long and title can't be blank",
		},
		{
			name:    "server error without field map",
			err:     &service.ResponseError{Status: 500, Data: json.RawMessage(`"oops"`)},
			kind:    KindValidationFailed,
			message: MsgServer,
		},
		{
			name:    "no response",
			err:     &service.NoResponseError{Err: errors.New("connection refused")},
			kind:    KindNetworkUnreachable,
			message: MsgNetwork,
		},
		{
			name:    "deadline",
			err:     fmt.Errorf("get: %w", context.DeadlineExceeded),
			kind:    KindNetworkUnreachable,
			message: MsgNetwork,
		},
		{
			name:    "canceled",
			err:     context.Canceled,
			kind:    KindCanceled,
			message: "request canceled",
		},
		{
			name:    "client exception",
			err:     errors.New("cannot read property"),
			kind:    KindUnknownClient,
			message: "cannot read property",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err, "and")
			if f.Kind != tt.kind {
				t.Errorf("Classify() kind = %s, want %s", f.Kind, tt.kind)
			}
			if tt.message != "" && f.Message != tt.message {
				t.Errorf("Classify() message = %q, want %q", f.Message, tt.message)
			}
			if !errors.Is(f, tt.err) {
				t.Error("expected Failure to wrap the original error")
			}
		})
	}
}

func TestJoinSentence(t *testing.T) {
	tests := []struct {
		parts []string
		conj  string
		want  string
	}{
		{nil, "and", ""},
		{[]string{"a"}, "and", "a"},
		{[]string{"a", "b"}, "and", "a and b"},
		{[]string{"a", "b", "c"}, "or", "a, b or c"},
		{[]string{"a", "b"}, "", "a and b"},
	}
	for _, tt := range tests {
		if got := JoinSentence(tt.parts, tt.conj); got != tt.want {
			t.Errorf("JoinSentence(%v, %q) = %q, want %q", tt.parts, tt.conj, got, tt.want)
		}
	}
}

func TestValidationMessageMultipleMessagesPerField(t *testing.T) {
	got := ValidationMessage(json.RawMessage(`{"quantity":["must be a number","is too large"]}`), "and")
	want := "quantity must be a number and quantity is too large"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHandlerRedirectsOnUnauthorized(t *testing.T) {
	rec := &notify.Recorder{}
	var redirected string
	h := Handler{Notifier: rec, Redirect: func(p string) { redirected = p }}

	f := h.Handle(&service.ResponseError{Status: 401})
	if f.Kind != KindAuthenticationRequired {
		t.Fatalf("unexpected kind %s", f.Kind)
	}
	if redirected != SignInPath {
		t.Errorf("expected redirect to %s, got %q", SignInPath, redirected)
	}
	if len(rec.Notices()) != 0 {
		t.Errorf("expected no notice on redirect, got %v", rec.Notices())
	}
}

func TestHandlerUnauthorizedWithoutNavigator(t *testing.T) {
	rec := &notify.Recorder{}
	Handler{Notifier: rec}.Handle(&service.ResponseError{Status: 401})
	if len(rec.ByLevel(notify.Error)) != 1 {
		t.Errorf("expected one error notice, got %v", rec.Notices())
	}
}

func TestHandlerOverrides(t *testing.T) {
	rec := &notify.Recorder{}
	h := Handler{Notifier: rec, NotFound: "List not found", Network: "offline", Server: "server trouble"}

	h.Handle(&service.ResponseError{Status: 404})
	h.Handle(&service.NoResponseError{Err: errors.New("x")})
	h.Handle(&service.ResponseError{Status: 500})
	h.Handle(context.Canceled)

	got := rec.Notices()
	want := []string{"List not found", "offline", "server trouble"}
	if len(got) != len(want) {
		t.Fatalf("expected %d notices, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i].Message != w || got[i].Level != notify.Error {
			t.Errorf("notice %d = %+v, want error %q", i, got[i], w)
		}
	}
}
