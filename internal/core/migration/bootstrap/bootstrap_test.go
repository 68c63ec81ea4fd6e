package bootstrap

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/remote/memory"
	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/executor"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/planner"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/script"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/store"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stateRecorder struct {
	states []*domain.MigrationState
}

func (r *stateRecorder) Write(ctx context.Context, state *domain.MigrationState) error {
	r.states = append(r.states, state)
	return nil
}

// circularModel seeds a post that links to a hero that links back to post.
func circularModel() *memory.Environment {
	env := memory.NewEnvironment("space", "master")
	env.Seed(domain.ContentType{
		Sys:          domain.Sys{ID: "post"},
		Name:         "Post",
		DisplayField: "title",
		Fields: []domain.Field{
			{ID: "title", Name: "Title", Type: "Symbol", Required: true},
			{
				ID:          "hero",
				Name:        "Hero",
				Type:        "Link",
				LinkType:    "Entry",
				Validations: []map[string]any{{"linkContentType": []any{"heroImage"}}},
			},
		},
	}, nil)
	env.Seed(domain.ContentType{
		Sys:  domain.Sys{ID: "heroImage"},
		Name: "Hero Image",
		Fields: []domain.Field{
			{ID: "image", Name: "Image", Type: "Link", LinkType: "Asset"},
			{
				ID:   "posts",
				Name: "Posts",
				Type: "Array",
				Items: &domain.FieldItems{
					Type:        "Link",
					LinkType:    "Entry",
					Validations: []map[string]any{{"linkContentType": []any{"post"}}},
				},
			},
		},
	}, nil)
	env.Seed(domain.ContentType{
		Sys:          domain.Sys{ID: store.ContentTypeID},
		Name:         "Migration",
		DisplayField: "contentTypeId",
		Fields:       []domain.Field{{ID: "contentTypeId", Name: "Content type id", Type: "Symbol"}},
	}, nil)
	return env
}

// peakSession records the highest number of concurrent editor interface fetches.
type peakSession struct {
	*memory.Environment
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *peakSession) EditorInterface(ctx context.Context, id string) (*domain.EditorInterface, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return s.Environment.EditorInterface(ctx, id)
}

func generate(t *testing.T, env *memory.Environment, st storage.Storage, dir string) []domain.CreatedFile {
	t.Helper()
	g := NewGenerator(env, st, &stateRecorder{}, nil)
	files, err := g.Generate(context.Background(), Options{Dir: dir, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return files
}

func TestGenerate_SkipsMigrationContentType(t *testing.T) {
	st := storage.NewMemoryStorage()
	files := generate(t, circularModel(), st, "migrations")

	require.Len(t, files, 2)
	assert.Equal(t, domain.CreatedFile{ContentTypeID: "post", FileName: "20240301120000-create-post.yaml"}, files[0])
	assert.Equal(t, domain.CreatedFile{ContentTypeID: "heroImage", FileName: "20240301120000-create-hero-image.yaml"}, files[1])

	list, err := st.List(context.Background(), "migrations")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGenerate_Deterministic(t *testing.T) {
	ctx := context.Background()
	env := circularModel()
	st := storage.NewMemoryStorage()
	generate(t, env, st, "a")
	generate(t, env, st, "b")

	for _, name := range []string{"20240301120000-create-post.yaml", "20240301120000-create-hero-image.yaml"} {
		first, err := st.Read(ctx, "a/"+name)
		require.NoError(t, err)
		second, err := st.Read(ctx, "b/"+name)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), name)
	}
}

func TestGenerate_ScriptsRecreateModelInAnyOrder(t *testing.T) {
	ctx := context.Background()
	source := circularModel()
	st := storage.NewMemoryStorage()
	files := generate(t, source, st, "migrations")

	parse := func(name string) *script.Script {
		data, err := st.Read(ctx, "migrations/"+name)
		require.NoError(t, err)
		s, err := script.Parse(name, data)
		require.NoError(t, err)
		return s
	}

	orders := [][]domain.CreatedFile{files, {files[1], files[0]}}
	for _, order := range orders {
		target := memory.NewEnvironment("space", "master")
		runner := executor.NewMigrationExecutor(planner.NewPlanCompiler(), storage.NewMemoryStorage())
		for _, f := range order {
			s := parse(f.FileName)
			_, err := runner.Execute(ctx, executor.Job{
				Title:       s.Title,
				Intents:     s.Intents(true),
				AccessToken: "CFPAT-test",
				Session:     target,
			})
			require.NoError(t, err, f.FileName)
		}

		for _, id := range []string{"post", "heroImage"} {
			want, err := source.ContentType(ctx, id)
			require.NoError(t, err)
			got, err := target.ContentType(ctx, id)
			require.NoError(t, err)
			assert.True(t, got.Sys.IsPublished(), id)
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.DisplayField, got.DisplayField)
			require.Len(t, got.Fields, len(want.Fields))
			for i := range want.Fields {
				assert.Equal(t, want.Fields[i].ID, got.Fields[i].ID)
				assert.Equal(t, want.Fields[i].Type, got.Fields[i].Type)
			}

			wantEditor, err := source.EditorInterface(ctx, id)
			require.NoError(t, err)
			gotEditor, err := target.EditorInterface(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, wantEditor.Controls, gotEditor.Controls, id)
		}
	}
}

func TestBootstrap_DeletesDirAndRewritesState(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Write(ctx, "migrations/20190101000000-old.yaml", []byte("up: []\n")))

	recorder := &stateRecorder{}
	g := NewGenerator(circularModel(), st, recorder, nil)
	files, err := g.Bootstrap(ctx, Options{
		Dir:        "migrations",
		WriteState: true,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	require.Len(t, files, 2)

	exists, err := st.Exists(ctx, "migrations/20190101000000-old.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, recorder.states, 1)
	state := recorder.states[0]
	assert.Equal(t, "20240301120000-create-hero-image.yaml", state.LastRunTitle())
	require.Len(t, state.Migrations, 2)
	assert.Equal(t, "20240301120000-create-post.yaml", state.Migrations[0].Title)
	assert.True(t, fixedNow.Equal(*state.Migrations[0].Timestamp))
	assert.Equal(t, "Create content model for post", state.Migrations[0].Description)
}

func TestBootstrap_WithoutWriteState(t *testing.T) {
	recorder := &stateRecorder{}
	g := NewGenerator(circularModel(), storage.NewMemoryStorage(), recorder, nil)
	_, err := g.Bootstrap(context.Background(), Options{Dir: "migrations"})
	require.NoError(t, err)
	assert.Empty(t, recorder.states)
}

func TestRewriteState_NoFiles(t *testing.T) {
	recorder := &stateRecorder{}
	g := NewGenerator(memory.NewEnvironment("s", "e"), storage.NewMemoryStorage(), recorder, nil)
	require.NoError(t, g.RewriteState(context.Background(), nil, fixedNow))
	require.Len(t, recorder.states, 1)
	assert.True(t, recorder.states[0].IsEmpty())
}

func TestBuildScript(t *testing.T) {
	ct := domain.ContentType{
		Sys:  domain.Sys{ID: "post"},
		Name: "Post",
		Fields: []domain.Field{{
			ID:           "title",
			Name:         "Title",
			Type:         "Symbol",
			Validations:  []map[string]any{{"size": nil}, {"unique": true, "message": ""}},
			DefaultValue: map[string]any{"en-US": nil},
		}},
	}
	editor := &domain.EditorInterface{Controls: []domain.Control{
		{FieldID: "title", WidgetID: "singleLine", Settings: map[string]any{"helpText": "", "nested": map[string]any{}}},
		{FieldID: "legacy"},
	}}

	s := BuildScript(ct, editor)
	assert.Equal(t, "Create content model for Post", s.Description)
	require.Len(t, s.Up, 2)

	create := s.Up[0].(*intent.CreateContentTypeIntent)
	assert.Equal(t, []map[string]any{{"unique": true}}, create.Fields[0].Validations)
	assert.Nil(t, create.Fields[0].DefaultValue)

	control := s.Up[1].(*intent.ChangeFieldControlIntent)
	assert.Equal(t, "builtin", control.WidgetNamespace)
	assert.Nil(t, control.Settings)

	assert.Equal(t, intent.List{&intent.DeleteContentTypeIntent{ID: "post"}}, s.Down)
}

func TestBuildScript_SkipsDeletedFields(t *testing.T) {
	ct := domain.ContentType{
		Sys:  domain.Sys{ID: "post"},
		Name: "Post",
		Fields: []domain.Field{
			{ID: "title", Name: "Title", Type: "Symbol"},
			{ID: "legacy", Name: "Legacy", Type: "Text", Omitted: true, Deleted: true},
		},
	}
	editor := &domain.EditorInterface{Controls: []domain.Control{
		{FieldID: "title", WidgetID: "singleLine"},
		{FieldID: "legacy", WidgetID: "multipleLine"},
	}}

	s := BuildScript(ct, editor)
	create := s.Up[0].(*intent.CreateContentTypeIntent)
	require.Len(t, create.Fields, 1)
	assert.Equal(t, "title", create.Fields[0].ID)
	require.Len(t, s.Up, 2)
	assert.Equal(t, "title", s.Up[1].(*intent.ChangeFieldControlIntent).FieldID)
}

func TestPrune(t *testing.T) {
	in := map[string]any{
		"keep":  "x",
		"empty": "",
		"zero":  0,
		"list":  []any{nil, "", "a"},
		"none":  []any{nil},
		"deep":  map[string]any{"inner": map[string]any{"gone": nil}},
	}
	assert.Equal(t, map[string]any{
		"keep": "x",
		"zero": 0,
		"list": []any{"a"},
	}, pruneMap(in))
	assert.Nil(t, pruneMap(map[string]any{}))
}

func TestGenerate_BoundsEditorInterfaceFetches(t *testing.T) {
	env := memory.NewEnvironment("space", "master")
	for i := range 12 {
		env.Seed(domain.ContentType{
			Sys:    domain.Sys{ID: fmt.Sprintf("type%02d", i)},
			Name:   fmt.Sprintf("Type %d", i),
			Fields: []domain.Field{{ID: "title", Name: "Title", Type: "Symbol"}},
		}, nil)
	}

	tests := []struct {
		name        string
		concurrency int
		limit       int32
	}{
		{"default", 0, DefaultConcurrency},
		{"two", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &peakSession{Environment: env}
			g := NewGenerator(session, storage.NewMemoryStorage(), &stateRecorder{}, nil)
			files, err := g.Generate(context.Background(), Options{
				Dir:         "migrations",
				Concurrency: tt.concurrency,
				Now:         func() time.Time { return fixedNow },
			})
			require.NoError(t, err)
			assert.Len(t, files, 12)
			assert.LessOrEqual(t, session.peak.Load(), tt.limit)
			assert.Greater(t, session.peak.Load(), int32(1))
		})
	}
}
