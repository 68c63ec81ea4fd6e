// Package executor implements migration execution.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/planner"
	"github.com/satishbabariya/ctf-migrate/internal/debug"
)

// State is a step of the execution state machine.
type State string

const (
	StateInit             State = "Init"
	StatePlanning         State = "Planning"
	StateValidationFailed State = "ValidationFailed"
	StatePlanned          State = "Planned"
	StateDryRunDone       State = "DryRunDone"
	StateExecuting        State = "Executing"
	StateSucceeded        State = "Succeeded"
	StatePartiallyFailed  State = "PartiallyFailed"
)

// Job is one script direction to execute.
type Job struct {
	Title       string
	Intents     intent.List
	AccessToken string
	Session     domain.Session
	DryRun      bool
}

// Result describes how far a job got.
type Result struct {
	State    State
	Plan     *domain.Plan
	Attempts int
	Errors   []*domain.RequestError
	ErrorLog string
}

// Runner executes jobs. The store and loader depend on this interface.
type Runner interface {
	Execute(ctx context.Context, job Job) (*Result, error)
}

// MigrationExecutor implements the Runner interface.
type MigrationExecutor struct {
	compiler planner.Compiler
	reporter domain.Reporter
	errorLog *ErrorLog
}

// Option configures a MigrationExecutor.
type Option func(*MigrationExecutor)

// WithReporter sets the progress reporter.
func WithReporter(r domain.Reporter) Option {
	return func(e *MigrationExecutor) {
		e.reporter = r
	}
}

// WithErrorLog sets where failed requests are written.
func WithErrorLog(l *ErrorLog) Option {
	return func(e *MigrationExecutor) {
		e.errorLog = l
	}
}

// NewMigrationExecutor creates a new migration executor. Failed requests are
// logged to errors-<unix-ms>.log in the working directory unless overridden.
func NewMigrationExecutor(compiler planner.Compiler, store storage.Storage, opts ...Option) *MigrationExecutor {
	e := &MigrationExecutor{
		compiler: compiler,
		reporter: domain.NopReporter{},
		errorLog: NewErrorLog(store, ".", time.Now),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates the credential, compiles the job and runs its batches.
// Batches run in order and the first failing batch stops the run, while the
// requests of a batch are all attempted before its errors are raised.
func (e *MigrationExecutor) Execute(ctx context.Context, job Job) (*Result, error) {
	result := &Result{State: StateInit}
	log := debug.With("migration", job.Title)
	if err := domain.CheckAccessToken(job.AccessToken); err != nil {
		return result, err
	}

	result.State = StatePlanning
	plan, err := e.compiler.Compile(ctx, job.Session, job.Intents)
	if err != nil {
		return result, fmt.Errorf("failed to compile %s: %w", job.Title, err)
	}
	result.Plan = plan

	if errs := plan.ValidationErrors(); len(errs) > 0 {
		result.State = StateValidationFailed
		for _, verr := range errs {
			e.reporter.Error(verr.Error())
		}
		return result, errs
	}
	if errs := plan.RuntimeErrors(); len(errs) > 0 {
		result.State = StateValidationFailed
		for _, rerr := range errs {
			e.reporter.Error(rerr.Error())
			if path, lerr := e.errorLog.Write(ctx, rerr.Intent, rerr); lerr == nil {
				result.ErrorLog = path
			}
		}
		return result, errs
	}

	result.State = StatePlanned
	e.reporter.Plan(job.Title, plan)

	if job.DryRun {
		result.State = StateDryRunDone
		e.reporter.Info("Dry run completed")
		return result, nil
	}

	result.State = StateExecuting
	for _, batch := range plan.Batches {
		if err := e.runBatch(ctx, log, job.Session, batch, result); err != nil {
			result.State = StatePartiallyFailed
			return result, err
		}
	}

	result.State = StateSucceeded
	log.Debug("Migration executed", "batches", len(plan.Batches), "attempts", result.Attempts)
	return result, nil
}

func (e *MigrationExecutor) runBatch(ctx context.Context, log *slog.Logger, session domain.Session, batch *domain.ExecutionBatch, result *Result) error {
	var failed []*domain.RequestError
	for i, req := range batch.Requests {
		e.reporter.Request(i+1, len(batch.Requests), req)
		result.Attempts++

		err := session.Send(ctx, req)
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			return err
		}

		reqErr := domain.AsRequestError(err, req.URL)
		log.Warn("Request failed", "method", req.Method, "url", req.URL, "error", reqErr.Error())
		if path, lerr := e.errorLog.Write(ctx, batch.Intent, reqErr); lerr != nil {
			e.reporter.Warning(fmt.Sprintf("failed to write error log: %v", lerr))
		} else {
			result.ErrorLog = path
		}
		failed = append(failed, reqErr)
	}

	if len(failed) == 0 {
		return nil
	}
	result.Errors = append(result.Errors, failed...)
	return &domain.BatchError{
		Intent:  batch.Intent,
		Errors:  failed,
		LogPath: result.ErrorLog,
	}
}

// Ensure MigrationExecutor implements Runner interface.
var _ Runner = (*MigrationExecutor)(nil)
