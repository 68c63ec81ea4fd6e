package executor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/remote/memory"
	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/planner"
)

const token = "CFPAT-test"

// fixedPlan returns the same plan for every job.
type fixedPlan struct {
	plan *domain.Plan
}

func (c fixedPlan) Compile(context.Context, domain.Session, intent.List) (*domain.Plan, error) {
	return c.plan, nil
}

type recorder struct {
	domain.NopReporter
	infos  []string
	errors []string
}

func (r *recorder) Info(msg string)  { r.infos = append(r.infos, msg) }
func (r *recorder) Error(msg string) { r.errors = append(r.errors, msg) }

func newExecutor(t *testing.T, compiler planner.Compiler, rep domain.Reporter) (*MigrationExecutor, storage.Storage) {
	t.Helper()
	st := storage.NewMemoryStorage()
	clock := func() time.Time { return time.UnixMilli(1700000000000) }
	return NewMigrationExecutor(compiler, st,
		WithReporter(rep),
		WithErrorLog(NewErrorLog(st, "logs", clock)),
	), st
}

func request(id string) domain.RemoteRequest {
	return domain.RemoteRequest{
		Method: http.MethodPut,
		URL:    "/spaces/space/environments/master/content_types/" + id,
		Body:   intent.ContentTypeBody{Name: id, Fields: []domain.Field{}},
	}
}

func TestExecute_BatchContinuesAfterFailedRequest(t *testing.T) {
	env := memory.NewEnvironment("space", "master")
	env.FailWhen(func(r domain.RemoteRequest) bool {
		return strings.HasSuffix(r.URL, "/two")
	}, http.StatusUnprocessableEntity, "invalid")

	plan := &domain.Plan{Batches: []*domain.ExecutionBatch{
		{Intent: "first", Requests: []domain.RemoteRequest{request("one"), request("two"), request("three")}},
		{Intent: "second", Requests: []domain.RemoteRequest{request("four")}},
	}}
	exec, st := newExecutor(t, fixedPlan{plan: plan}, &recorder{})

	result, err := exec.Execute(context.Background(), Job{Title: "t", AccessToken: token, Session: env})
	require.Error(t, err)

	var batchErr *domain.BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, "first", batchErr.Intent)
	require.Len(t, batchErr.Errors, 1)
	assert.Equal(t, "invalid", batchErr.Errors[0].Message)

	assert.Equal(t, StatePartiallyFailed, result.State)
	assert.Equal(t, 3, result.Attempts)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, env.Requests(), 3, "the second batch must not be sent")

	assert.Equal(t, "/logs/errors-1700000000000.log", result.ErrorLog)
	assert.Equal(t, result.ErrorLog, batchErr.LogPath)
	data, err := st.Read(context.Background(), "logs/errors-1700000000000.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), `"message":"invalid"`)
}

func TestExecute_InvalidToken(t *testing.T) {
	env := memory.NewEnvironment("space", "master")
	exec, _ := newExecutor(t, planner.NewPlanCompiler(), &recorder{})

	result, err := exec.Execute(context.Background(), Job{
		AccessToken: "not-a-pat",
		Session:     env,
		Intents:     intent.List{&intent.CreateContentTypeIntent{ID: "post", Name: "Post"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	assert.Equal(t, StateInit, result.State)
	assert.Empty(t, env.Requests())
}

func TestExecute_DryRunSendsNothing(t *testing.T) {
	env := memory.NewEnvironment("space", "master")
	rep := &recorder{}
	exec, _ := newExecutor(t, planner.NewPlanCompiler(), rep)

	result, err := exec.Execute(context.Background(), Job{
		AccessToken: token,
		Session:     env,
		DryRun:      true,
		Intents:     intent.List{&intent.CreateContentTypeIntent{ID: "post", Name: "Post"}},
	})
	require.NoError(t, err)
	assert.Equal(t, StateDryRunDone, result.State)
	assert.Equal(t, 2, result.Plan.RequestCount())
	assert.Empty(t, env.Requests())
	assert.Contains(t, rep.infos, "Dry run completed")
}

func TestExecute_ValidationFailure(t *testing.T) {
	env := memory.NewEnvironment("space", "master")
	rep := &recorder{}
	exec, _ := newExecutor(t, planner.NewPlanCompiler(), rep)

	result, err := exec.Execute(context.Background(), Job{
		AccessToken: token,
		Session:     env,
		Intents: intent.List{
			&intent.CreateContentTypeIntent{ID: "post", Name: "Post"},
			&intent.EditContentTypeIntent{ID: "missing", Name: domain.StringPtr("x")},
		},
	})
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 1)
	assert.Equal(t, StateValidationFailed, result.State)
	assert.Len(t, rep.errors, 1)
	assert.Empty(t, env.Requests(), "nothing is sent when any batch is invalid")
}

func TestExecute_Succeeds(t *testing.T) {
	env := memory.NewEnvironment("space", "master")
	exec, _ := newExecutor(t, planner.NewPlanCompiler(), &recorder{})

	result, err := exec.Execute(context.Background(), Job{
		AccessToken: token,
		Session:     env,
		Intents: intent.List{
			&intent.CreateContentTypeIntent{
				ID:     "post",
				Name:   "Post",
				Fields: []domain.Field{{ID: "title", Name: "Title", Type: "Symbol"}},
			},
			&intent.CreateFieldIntent{ContentType: "post", Field: domain.Field{ID: "body", Name: "Body", Type: "Text"}},
			&intent.ChangeFieldControlIntent{ContentType: "post", FieldID: "body", WidgetID: "multipleLine"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 5, result.Attempts)
	assert.Empty(t, result.ErrorLog)

	ct, err := env.ContentType(context.Background(), "post")
	require.NoError(t, err)
	assert.Len(t, ct.Fields, 2)
	assert.Equal(t, 4, ct.Sys.Version)
	assert.Equal(t, 3, ct.Sys.PublishedVersion)

	ei, err := env.EditorInterface(context.Background(), "post")
	require.NoError(t, err)
	assert.Equal(t, 2, ei.Sys.Version)
	assert.Equal(t, "multipleLine", ei.Controls[1].WidgetID)
}

func TestErrorLog_SingleFilePerRun(t *testing.T) {
	st := storage.NewMemoryStorage()
	ticks := int64(1000)
	log := NewErrorLog(st, ".", func() time.Time {
		ticks++
		return time.UnixMilli(ticks)
	})
	assert.Empty(t, log.Path())

	first, err := log.Write(context.Background(), "a", errors.New("one"))
	require.NoError(t, err)
	second, err := log.Write(context.Background(), "b", errors.New("two"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, first, log.Path())

	data, err := st.Read(context.Background(), "errors-1001.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "one")
	assert.Contains(t, string(data), "two")
}
