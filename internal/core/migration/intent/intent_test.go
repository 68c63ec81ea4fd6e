package intent

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

const postPath = "/spaces/space/environments/master/content_types/post"

func newState() *PlanState {
	st := NewPlanState("space", "master")
	st.Track("post", nil, nil, nil)
	return st
}

func createPost() *CreateContentTypeIntent {
	return &CreateContentTypeIntent{
		ID:           "post",
		Name:         "Post",
		DisplayField: "title",
		Fields: []domain.Field{
			{ID: "title", Name: "Title", Type: "Symbol", Required: true},
			{ID: "body", Name: "Body", Type: "Text"},
		},
	}
}

func versions(reqs []domain.RemoteRequest) []int {
	out := make([]int, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Version())
	}
	return out
}

func TestList_UnmarshalYAML(t *testing.T) {
	src := `
- createContentType:
    id: post
    name: Post
    displayField: title
    fields:
      - id: title
        name: Title
        type: Symbol
        required: true
- createField:
    contentTypeId: post
    id: author
    name: Author
    type: Link
    linkType: Entry
- editField:
    contentTypeId: post
    id: title
    required: false
- changeFieldControl:
    contentTypeId: post
    fieldId: author
    widgetId: entryCardEditor
- deleteField:
    contentTypeId: post
    id: author
- deleteContentType:
    id: post
`
	var list List
	require.NoError(t, yaml.Unmarshal([]byte(src), &list))
	require.Len(t, list, 6)

	create, ok := list[0].(*CreateContentTypeIntent)
	require.True(t, ok)
	assert.Equal(t, "post", create.ID)
	require.Len(t, create.Fields, 1)
	assert.True(t, create.Fields[0].Required)

	field, ok := list[1].(*CreateFieldIntent)
	require.True(t, ok)
	assert.Equal(t, "author", field.Field.ID)
	assert.Equal(t, "Entry", field.Field.LinkType)

	edit, ok := list[2].(*EditFieldIntent)
	require.True(t, ok)
	require.NotNil(t, edit.Required)
	assert.False(t, *edit.Required)
	assert.Nil(t, edit.Name)

	assert.Equal(t, ChangeFieldControl, list[3].Kind())
	assert.Equal(t, DeleteField, list[4].Kind())
	assert.Equal(t, DeleteContentType, list[5].Kind())
	assert.True(t, list[5].IsDestructive())
}

func TestList_UnmarshalYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "not a list", src: "createContentType: {id: post}"},
		{name: "unknown kind", src: "- renameEverything: {id: post}"},
		{name: "two keys", src: "- {createContentType: {id: a}, deleteContentType: {id: b}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list List
			assert.Error(t, yaml.Unmarshal([]byte(tt.src), &list))
		})
	}
}

func TestList_MarshalYAML(t *testing.T) {
	list := List{
		createPost(),
		&ChangeFieldControlIntent{ContentType: "post", FieldID: "body", WidgetID: "markdown", WidgetNamespace: "builtin"},
	}
	data, err := yaml.Marshal(list)
	require.NoError(t, err)

	var decoded List
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, list, decoded)
}

func TestCreateContentType_Validate(t *testing.T) {
	tests := []struct {
		name   string
		intent *CreateContentTypeIntent
		errs   int
	}{
		{name: "valid", intent: createPost(), errs: 0},
		{name: "missing id", intent: &CreateContentTypeIntent{Name: "X"}, errs: 1},
		{
			name: "duplicate field and bad display field",
			intent: &CreateContentTypeIntent{
				ID:           "post",
				Name:         "Post",
				DisplayField: "nope",
				Fields: []domain.Field{
					{ID: "a", Name: "A", Type: "Symbol"},
					{ID: "a", Name: "A", Type: "Symbol"},
				},
			},
			errs: 2,
		},
		{
			name: "bad field shapes",
			intent: &CreateContentTypeIntent{
				ID:   "post",
				Name: "Post",
				Fields: []domain.Field{
					{ID: "a", Name: "A", Type: "Varchar"},
					{ID: "b", Name: "B", Type: "Link", LinkType: "Space"},
					{ID: "c", Name: "C", Type: "Array"},
				},
			},
			errs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.intent.Validate(), tt.errs)
		})
	}
}

func TestCreateContentType_ToBatch(t *testing.T) {
	st := newState()

	batch, err := createPost().ToBatch(st)
	require.NoError(t, err)
	require.Empty(t, batch.ValidationErrors)
	require.Len(t, batch.Requests, 2)

	assert.Equal(t, http.MethodPut, batch.Requests[0].Method)
	assert.Equal(t, postPath, batch.Requests[0].URL)
	assert.Nil(t, batch.Requests[0].Headers)
	assert.Equal(t, postPath+"/published", batch.Requests[1].URL)
	assert.Equal(t, 1, batch.Requests[1].Version())

	ct, err := st.ContentType("post")
	require.NoError(t, err)
	assert.Equal(t, 2, ct.Sys.Version)
	assert.Equal(t, 1, ct.Sys.PublishedVersion)

	ei, err := st.EditorInterface("post")
	require.NoError(t, err)
	require.NotNil(t, ei)
	assert.Equal(t, 1, ei.Sys.Version)
	assert.Len(t, ei.Controls, 2)

	again, err := createPost().ToBatch(st)
	require.NoError(t, err)
	assert.Empty(t, again.Requests)
	require.Len(t, again.ValidationErrors, 1)
	assert.Contains(t, again.ValidationErrors[0].Message, "already exists")
}

func TestIntents_VersionChain(t *testing.T) {
	st := newState()
	_, err := createPost().ToBatch(st)
	require.NoError(t, err)

	field := &CreateFieldIntent{ContentType: "post", Field: domain.Field{ID: "author", Name: "Author", Type: "Symbol"}}
	batch, err := field.ToBatch(st)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, versions(batch.Requests))

	control := &ChangeFieldControlIntent{ContentType: "post", FieldID: "author", WidgetID: "dropdown"}
	batch, err = control.ToBatch(st)
	require.NoError(t, err)
	require.Len(t, batch.Requests, 1)
	assert.Equal(t, postPath+"/editor_interface", batch.Requests[0].URL)
	assert.Equal(t, []int{1}, versions(batch.Requests))

	del := &DeleteFieldIntent{ContentType: "post", FieldID: "author"}
	batch, err = del.ToBatch(st)
	require.NoError(t, err)
	require.Len(t, batch.Requests, 4)
	assert.Equal(t, []int{4, 5, 6, 7}, versions(batch.Requests))

	omitBody := batch.Requests[0].Body.(ContentTypeBody)
	require.Len(t, omitBody.Fields, 3)
	assert.True(t, omitBody.Fields[2].Omitted)
	assert.False(t, omitBody.Fields[2].Deleted)
	deleteBody := batch.Requests[2].Body.(ContentTypeBody)
	assert.True(t, deleteBody.Fields[2].Deleted)

	ct, err := st.ContentType("post")
	require.NoError(t, err)
	_, ok := ct.Field("author")
	assert.False(t, ok)
	assert.Len(t, ct.Fields, 2)
	assert.Equal(t, 8, ct.Sys.Version)

	drop := &DeleteContentTypeIntent{ID: "post"}
	batch, err = drop.ToBatch(st)
	require.NoError(t, err)
	require.Len(t, batch.Requests, 2)
	assert.Equal(t, http.MethodDelete, batch.Requests[0].Method)
	assert.Equal(t, postPath+"/published", batch.Requests[0].URL)
	assert.Equal(t, []int{8, 9}, versions(batch.Requests))

	gone, err := st.ContentType("post")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestEditField_Rename(t *testing.T) {
	st := newState()
	_, err := createPost().ToBatch(st)
	require.NoError(t, err)

	edit := &EditFieldIntent{ContentType: "post", FieldID: "title", NewID: "headline"}
	batch, err := edit.ToBatch(st)
	require.NoError(t, err)
	require.Empty(t, batch.ValidationErrors)

	ct, err := st.ContentType("post")
	require.NoError(t, err)
	assert.Equal(t, "headline", ct.DisplayField)
	_, ok := ct.Field("headline")
	assert.True(t, ok)
}

func TestDeleteField_RejectsDisplayField(t *testing.T) {
	st := newState()
	_, err := createPost().ToBatch(st)
	require.NoError(t, err)

	batch, err := (&DeleteFieldIntent{ContentType: "post", FieldID: "title"}).ToBatch(st)
	require.NoError(t, err)
	assert.Empty(t, batch.Requests)
	assert.Len(t, batch.ValidationErrors, 1)
}

func TestChangeFieldControl_RequiresEditor(t *testing.T) {
	st := NewPlanState("space", "master")
	st.Track("post", &domain.ContentType{
		Sys:    domain.Sys{ID: "post", Version: 1},
		Name:   "Post",
		Fields: []domain.Field{{ID: "title", Name: "Title", Type: "Symbol"}},
	}, nil, nil)

	batch, err := (&ChangeFieldControlIntent{ContentType: "post", FieldID: "title", WidgetID: "slugEditor"}).ToBatch(st)
	require.NoError(t, err)
	require.Len(t, batch.ValidationErrors, 1)
	assert.Contains(t, batch.ValidationErrors[0].Message, "no editor interface")
}

func TestToBatch_PropagatesFetchError(t *testing.T) {
	st := NewPlanState("space", "master")
	fetchErr := errors.New("boom")
	st.Track("post", nil, nil, fetchErr)

	_, err := (&EditContentTypeIntent{ID: "post", Name: domain.StringPtr("x")}).ToBatch(st)
	assert.ErrorIs(t, err, fetchErr)
}

func TestEditContentType_MissingType(t *testing.T) {
	batch, err := (&EditContentTypeIntent{ID: "post", Name: domain.StringPtr("Article")}).ToBatch(newState())
	require.NoError(t, err)
	require.Len(t, batch.ValidationErrors, 1)
	assert.Contains(t, batch.ValidationErrors[0].Message, "does not exist")
}
