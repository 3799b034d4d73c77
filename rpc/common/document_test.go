package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryDataShapes(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		collection bool
		null       bool
		count      int
	}{
		{"single", `{"data": {"type": "people", "id": "9"}}`, false, false, 1},
		{"null", `{"data": null}`, false, true, 0},
		{"missing", `{"meta": {"total": 0}}`, false, true, 0},
		{"empty collection", `{"data": []}`, true, false, 0},
		{"collection", `{"data": [{"type": "people", "id": "9"}, {"type": "people", "id": "2"}]}`, true, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Document
			require.NoError(t, json.Unmarshal([]byte(tt.input), &doc))
			assert.Equal(t, tt.collection, doc.Data.IsCollection())
			assert.Equal(t, tt.null, doc.Data.IsNull())
			assert.Len(t, doc.Data.Resources(), tt.count)

			_, ok := doc.Data.One()
			assert.Equal(t, !tt.collection && !tt.null, ok)
		})
	}
}

func TestPrimaryDataMarshal(t *testing.T) {
	b, err := json.Marshal(Document{Data: CollectionData()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": []}`, string(b))

	b, err = json.Marshal(Document{Data: NullData()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": null}`, string(b))

	b, err = json.Marshal(Document{Errors: []ErrorObject{{Status: "404", Title: "Not Found"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors": [{"status": "404", "title": "Not Found"}]}`, string(b))

	b, err = json.Marshal(Document{Data: SingleData(Resource{
		Type:          "articles",
		ID:            "1",
		Relationships: map[string]Relationship{"author": ToOne(Identifier{Type: "people", ID: "9"}), "editor": ToNone()},
	})})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": {"type": "articles", "id": "1", "relationships": {
		"author": {"data": {"type": "people", "id": "9"}},
		"editor": {"data": null}
	}}}`, string(b))
}

func TestRelationshipLinkage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ids     []Identifier
		many    bool
		present bool
	}{
		{"links only", `{"links": {"related": "/articles/1/author"}}`, nil, false, false},
		{"null", `{"data": null}`, nil, false, true},
		{"to-one", `{"data": {"type": "people", "id": "9"}}`, []Identifier{{Type: "people", ID: "9"}}, false, true},
		{"empty to-many", `{"data": []}`, []Identifier{}, true, true},
		{"to-many", `{"data": [{"type": "comments", "id": "5"}, {"type": "comments", "id": "12"}]}`, []Identifier{{Type: "comments", ID: "5"}, {Type: "comments", ID: "12"}}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rel Relationship
			require.NoError(t, json.Unmarshal([]byte(tt.input), &rel))

			ids, many, present, err := rel.Linkage()
			require.NoError(t, err)
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.many, many)
			assert.Equal(t, tt.present, present)
		})
	}

	_, _, _, err := Relationship{Data: json.RawMessage(`[{"type": 1}]`)}.Linkage()
	assert.Error(t, err)
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 422, Status: "422 Unprocessable Entity", Errors: []ErrorObject{
		{Detail: "First name must contain at least two characters."},
		{Title: "Invalid Attribute"},
		{Code: "123"},
	}}
	assert.Equal(t, "json:api error: 422 Unprocessable Entity: First name must contain at least two characters.; Invalid Attribute; 123", err.Error())

	err = &APIError{StatusCode: 500, Status: "500 Internal Server Error"}
	assert.Equal(t, "json:api error: 500 Internal Server Error", err.Error())
}
