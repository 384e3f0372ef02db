package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/personal-notes/pkg/timex"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoteID(t *testing.T) {
	tests := []struct {
		in   string
		kind IDKind
		out  string
	}{
		{"", IDDraft, ""},
		{"draft-1712345678", IDDraft, ""},
		{"local-lq3k2a-AbCd1234", IDLocal, "local-lq3k2a-AbCd1234"},
		{"6f1c6c1e-8a52-4b8e-9f7e-0d2b1a3c4d5e", IDRemote, "6f1c6c1e-8a52-4b8e-9f7e-0d2b1a3c4d5e"},
		{"42", IDRemote, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id := ParseNoteID(tt.in)
			assert.Equal(t, tt.kind, id.Kind())
			assert.Equal(t, tt.out, id.String())
		})
	}
}

func TestLocalIDAddsPrefix(t *testing.T) {
	assert.Equal(t, "local-abc", LocalID("abc").String())
	assert.Equal(t, "local-abc", LocalID("local-abc").String())
	assert.True(t, LocalID("abc").IsLocal())
}

func TestNoteJSON(t *testing.T) {
	ts, err := timex.Parse("2024-03-04T05:06:07.089Z")
	require.NoError(t, err)

	n := Note{ID: LocalID("x-1"), Title: "t", Content: "c", UpdatedAt: ts}
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"local-x-1","title":"t","content":"c","updated_at":"2024-03-04T05:06:07.089Z"}`, string(data))

	var back Note
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, n.ID, back.ID)
	assert.True(t, n.UpdatedAt.Equal(back.UpdatedAt))

	var numeric Note
	require.NoError(t, json.Unmarshal([]byte(`{"id":17,"title":"n"}`), &numeric))
	assert.Equal(t, RemoteID("17"), numeric.ID)

	draft, err := json.Marshal(Note{Title: "d"})
	require.NoError(t, err)
	assert.Contains(t, string(draft), `"id":""`)
}

func TestNoteIDJSONEscaping(t *testing.T) {
	data, err := json.Marshal(RemoteID("a\x01b\"c"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data), string(data))
	var plain string
	require.NoError(t, json.Unmarshal(data, &plain))
	assert.Equal(t, "a\x01b\"c", plain)

	// invalid UTF-8 is replaced, the output stays valid JSON
	data, err = json.Marshal(RemoteID("c\xffd"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data), string(data))
	var back NoteID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "c\uFFFDd", back.String())

	// JSON-only escapes decode
	require.NoError(t, json.Unmarshal([]byte(`"a\/b\u0041"`), &back))
	assert.Equal(t, RemoteID("a/bA"), back)
	require.NoError(t, json.Unmarshal([]byte(`"local-\u0078"`), &back))
	assert.True(t, back.IsLocal())
}

func TestSortByUpdatedDesc(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := []Note{
		{Title: "a", UpdatedAt: timex.Time(base)},
		{Title: "b", UpdatedAt: timex.Time(base.Add(time.Hour))},
		{Title: "c", UpdatedAt: timex.Time(base)},
		{Title: "d", UpdatedAt: timex.Time(base.Add(-time.Hour))},
	}
	SortByUpdatedDesc(notes)

	titles := make([]string, 0, len(notes))
	for _, n := range notes {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, titles)
}

// 任意字符串解析后再序列化，ID 类型保持不变
func TestProperty_NoteIDStableThroughWire(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("parse(string(id)) keeps the kind", prop.ForAll(
		func(prefix, rest string) bool {
			id := ParseNoteID(prefix + rest)
			if id.IsDraft() {
				return id.String() == ""
			}
			again := ParseNoteID(id.String())
			return again == id
		},
		gen.OneConstOf("", LocalIDPrefix, DraftIDPrefix, "x"),
		gen.AlphaString(),
	))

	properties.Property("only local- ids are local", prop.ForAll(
		func(s string) bool {
			return ParseNoteID(s).IsLocal() == strings.HasPrefix(s, LocalIDPrefix)
		},
		gen.OneGenOf(gen.AlphaString(), gen.AlphaString().Map(func(s string) string { return LocalIDPrefix + s })),
	))

	properties.TestingRun(t)
}
