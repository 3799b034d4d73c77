package serializer

import (
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IDocumentSerializer{
	"JSON":       NewJSONSerializer,
	"PrettyJSON": NewPrettyJSONSerializer,
}

const articleDocument = `{
  "data": {
    "type": "articles",
    "id": "1",
    "attributes": {"title": "JSON:API paints my bikeshed!"},
    "relationships": {
      "author": {"data": {"type": "people", "id": "9"}},
      "comments": {"data": [{"type": "comments", "id": "5"}, {"type": "comments", "id": "12"}]},
      "tags": {"links": {"related": "http://example.com/articles/1/tags"}},
      "editor": {"data": null}
    }
  },
  "included": [
    {"type": "people", "id": "9", "attributes": {"firstName": "Dan"}}
  ]
}`

// TestDeserializeArticle tests decoding of a single resource document with linkage
func TestDeserializeArticle(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			var doc common.Document
			require.NoError(t, factory().Deserialize([]byte(articleDocument), &doc))

			assert.False(t, doc.Data.IsCollection())
			article, ok := doc.Data.One()
			require.True(t, ok)
			assert.Equal(t, "articles", article.Type)
			assert.Equal(t, "JSON:API paints my bikeshed!", article.Attributes["title"])
			require.Len(t, doc.Included, 1)

			ids, many, present, err := article.Relationships["comments"].Linkage()
			require.NoError(t, err)
			assert.True(t, many)
			assert.True(t, present)
			assert.Equal(t, []common.Identifier{{Type: "comments", ID: "5"}, {Type: "comments", ID: "12"}}, ids)

			_, _, present, err = article.Relationships["tags"].Linkage()
			require.NoError(t, err)
			assert.False(t, present, "links-only relationship carries no linkage")

			ids, many, present, err = article.Relationships["editor"].Linkage()
			require.NoError(t, err)
			assert.True(t, present, "null linkage is present")
			assert.False(t, many)
			assert.Empty(t, ids)
		})
	}
}

// TestSerializerRoundTrip tests that documents survive serialize + deserialize
func TestSerializerRoundTrip(t *testing.T) {
	docs := map[string]*common.Document{
		"single": {
			Data: common.SingleData(common.Resource{
				Type:       "people",
				ID:         "9",
				Attributes: map[string]any{"firstName": "Dan"},
			}),
		},
		"collection": {
			Data: common.CollectionData(
				common.Resource{Type: "comments", ID: "5", Relationships: map[string]common.Relationship{
					"author": common.ToOne(common.Identifier{Type: "people", ID: "2"}),
				}},
				common.Resource{Type: "comments", ID: "12"},
			),
		},
		"empty collection": {Data: common.CollectionData()},
		"null":             {Data: common.NullData()},
	}

	for name, factory := range testSerializers {
		s := factory()
		for docName, doc := range docs {
			t.Run(name+"/"+docName, func(t *testing.T) {
				data, err := s.Serialize(doc)
				require.NoError(t, err)

				var result common.Document
				require.NoError(t, s.Deserialize(data, &result))

				assert.Equal(t, doc.Data.IsCollection(), result.Data.IsCollection())
				assert.Equal(t, doc.Data.IsNull(), result.Data.IsNull())
				require.Len(t, result.Data.Resources(), len(doc.Data.Resources()))
				for i, r := range doc.Data.Resources() {
					assert.Equal(t, r.Type, result.Data.Resources()[i].Type)
					assert.Equal(t, r.ID, result.Data.Resources()[i].ID)
				}
			})
		}
	}
}

// TestDeserializeErrors tests that broken input is rejected
func TestDeserializeErrors(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			var doc common.Document
			assert.Error(t, s.Deserialize(nil, &doc))
			assert.Error(t, s.Deserialize([]byte("   "), &doc))
			assert.Error(t, s.Deserialize([]byte(`{"data": [}`), &doc))
			_, err := s.Serialize(nil)
			assert.Error(t, err)
			assert.Equal(t, MediaType, s.ContentType())
		})
	}
}

// TestDeserializeErrorDocument tests that json:api error objects are decoded
func TestDeserializeErrorDocument(t *testing.T) {
	var doc common.Document
	body := `{"errors": [{"status": "404", "title": "Not Found", "detail": "article 7 does not exist"}]}`
	require.NoError(t, NewJSONSerializer().Deserialize([]byte(body), &doc))

	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "404", doc.Errors[0].Status)
	assert.True(t, doc.Data.IsNull())

	apiErr := &common.APIError{StatusCode: 404, Status: "404 Not Found", Errors: doc.Errors}
	assert.Equal(t, "json:api error: 404 Not Found: article 7 does not exist", apiErr.Error())
}
