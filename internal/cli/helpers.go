package cli

import (
	"errors"
	"fmt"

	"github.com/lherron/listsync/internal/cli/appctx"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/mutation"
	"github.com/lherron/listsync/internal/reconcile"
	"github.com/lherron/listsync/internal/session"
	"github.com/spf13/cobra"
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error

	// Reported is set when the failure was already shown as a notice.
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError returns an error that will cause the CLI to exit with the given code
func exitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// reportedError is an exitError whose message the user has already seen.
func reportedError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err, Reported: true}
}

// ExitCode returns the process exit code for err: 0 for nil, the code of an
// ExitError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// listFlags describe the list a command operates on.
type listFlags struct {
	listType string
	config   string
	name     string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.listType, "list-type", "", "List type: BookList, GroceryList, MusicList, SimpleList or ToDoList")
	cmd.Flags().StringVar(&f.config, "list-config", "", "List item configuration id (needed to create missing fields)")
	cmd.Flags().StringVar(&f.name, "list-name", "", "List name")
}

func (f *listFlags) list(id string) (domain.List, error) {
	listType, err := domain.ParseListType(f.listType)
	if err != nil {
		return domain.List{}, err
	}
	return domain.List{
		ID:                  id,
		Name:                f.name,
		Type:                listType,
		ListConfigurationID: f.config,
	}, nil
}

// newSession builds a session for list from the app context.
func newSession(app *appctx.App, list domain.List, jobs int, onChange func(reconcile.Change)) *session.Session {
	return session.New(session.Deps{
		Service:  app.Service,
		List:     list,
		Notifier: app.Notifier,
		Logger:   app.Logger,
		Config:   app.Config.Reconcile(),
		OnChange: onChange,
		Jobs:     jobs,
	})
}

// loadSession builds a session and runs the first reconciliation. A failed
// fetch has already been reported as a notice.
func loadSession(cmd *cobra.Command, app *appctx.App, list domain.List, jobs int) (*session.Session, error) {
	s := newSession(app, list, jobs, nil)
	if err := s.Sync(cmd.Context()); err != nil {
		return nil, reportedError(1, fmt.Errorf("failed to load list %s: %w", list.ID, err))
	}
	return s, nil
}

// reportDoc is the structured form of a mutation report.
type reportDoc struct {
	Operation string            `json:"operation" yaml:"operation"`
	Outcome   string            `json:"outcome" yaml:"outcome"`
	Succeeded int               `json:"succeeded" yaml:"succeeded"`
	Failed    int               `json:"failed" yaml:"failed"`
	Errors    map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newReportDoc(r mutation.Report) reportDoc {
	doc := reportDoc{
		Operation: string(r.Op),
		Outcome:   r.Outcome.String(),
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
	}
	if len(r.FailedIDs) > 0 {
		doc.Errors = make(map[string]string, len(r.FailedIDs))
		for id, err := range r.FailedIDs {
			doc.Errors[id] = err.Error()
		}
	}
	return doc
}
