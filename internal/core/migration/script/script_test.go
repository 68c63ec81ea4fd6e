package script

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/intent"
)

func TestParse_YAML(t *testing.T) {
	src := `
description: Add author to post
requires: ">= 0.1.0"
up:
  - createField:
      contentTypeId: post
      id: author
      name: Author
      type: Link
      linkType: Entry
down:
  - deleteField:
      contentTypeId: post
      id: author
`
	s, err := Parse("20240101120000-add-author.yaml", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "20240101120000-add-author.yaml", s.Title)
	assert.Equal(t, "Add author to post", s.Description)
	assert.Equal(t, ">= 0.1.0", s.Requires)
	require.Len(t, s.Intents(true), 1)
	require.Len(t, s.Intents(false), 1)
	assert.Equal(t, intent.CreateField, s.Up[0].Kind())
	assert.Equal(t, intent.DeleteField, s.Down[0].Kind())
}

func TestParse_JSON(t *testing.T) {
	src := `{"description": "json", "up": [{"deleteContentType": {"id": "post"}}], "down": []}`
	s, err := Parse("20240101120000-drop.json", []byte(src))
	require.NoError(t, err)
	require.Len(t, s.Up, 1)
	assert.Equal(t, "post", s.Up[0].ContentTypeID())
	assert.Empty(t, s.Down)
}

func TestParse_Template(t *testing.T) {
	s, err := Parse("x.yaml", Template())
	require.NoError(t, err)
	assert.Equal(t, "<Put your description here>", s.Description)
	assert.Empty(t, s.Up)
	assert.Empty(t, s.Down)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("bad.yaml", []byte("up:\n  - explode: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestRender_Deterministic(t *testing.T) {
	s := &Script{
		Description: "Create content model for Post",
		Up: intent.List{
			&intent.CreateContentTypeIntent{
				ID:   "post",
				Name: "Post",
				Fields: []domain.Field{{
					ID:          "slug",
					Name:        "Slug",
					Type:        "Symbol",
					Validations: []map[string]any{{"unique": true, "size": map[string]any{"max": 80, "min": 1}}},
				}},
			},
		},
		Down: intent.List{&intent.DeleteContentTypeIntent{ID: "post"}},
	}

	first, err := Render(s)
	require.NoError(t, err)
	second, err := Render(s)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	parsed, err := Parse("x.yaml", first)
	require.NoError(t, err)
	assert.Equal(t, s.Description, parsed.Description)
	assert.Equal(t, s.Down, parsed.Down)
	create := parsed.Up[0].(*intent.CreateContentTypeIntent)
	assert.Equal(t, "slug", create.Fields[0].ID)
	assert.Equal(t, true, create.Fields[0].Validations[0]["unique"])
}

func TestFileNames(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	name := FileName(ts, "create-blog-post")
	assert.Equal(t, "20240506070809-create-blog-post.yaml", name)
	assert.True(t, IsScriptFile(name))

	parsed, err := Timestamp(name)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	tests := []struct {
		name string
		ok   bool
	}{
		{"20240506070809-a.yml", true},
		{"20240506070809-a.json", true},
		{"20240506070809-a.js", false},
		{"2024-a.yaml", true},
		{"20200101-a", false},
		{"a-20200101.yaml", false},
		{"README.md", false},
		{SchemaFile, false},
		{"errors-1700000000000.log", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, IsScriptFile(tt.name), tt.name)
	}

	_, err = Timestamp("notes.txt")
	assert.Error(t, err)
	_, err = Timestamp("20200101-a.yaml")
	assert.Error(t, err, "short prefixes are not timestamps")
}

func TestComparePrefix(t *testing.T) {
	assert.Equal(t, -1, ComparePrefix(Prefix("20200101-a.yaml"), Prefix("20200102-b.yaml")))
	assert.Equal(t, -1, ComparePrefix("9", "10"))
	assert.Equal(t, 0, ComparePrefix("007", "7"))
	assert.Equal(t, 1, ComparePrefix("20240101000000", "20240101"))
	assert.Equal(t, "", Prefix("notes.txt"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "add-author", Slugify("Add author"))
	assert.Equal(t, "blog-post", Slugify("blogPost"))
	assert.Equal(t, "x-y", Slugify("  x__y!! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCamelToDash(t *testing.T) {
	assert.Equal(t, "blog-post", CamelToDash("blogPost"))
	assert.Equal(t, "-hero-image", CamelToDash("HeroImage"))
	assert.Equal(t, "post", CamelToDash("post"))
}
