package records

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/lib/store"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func testRecords() []*store.Record {
	dan := store.NewRecord("person", "9", store.StateFetched)
	dan.Merge(map[string]any{"firstName": "Dan", "twitter": nil}, nil)

	first := store.NewRecord("comment", "5", store.StateFetched)
	second := store.NewRecord("comment", "12", store.StateFetched)

	article := store.NewRecord("article", "1", store.StateFetched)
	article.Merge(map[string]any{"title": "JSON:API paints my bikeshed!"}, nil)
	article.SetBelongsTo("author", dan)
	article.SetHasMany("comments", []*store.Record{first, second})
	article.SetBelongsTo("reviewer", nil)

	return []*store.Record{article, dan}
}

func TestRenderRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRecords(&buf, testRecords()))

	g := goldie.New(t)
	g.Assert(t, "records", buf.Bytes())
}

func TestRenderRecord(t *testing.T) {
	created := store.NewRecord("person", "k3j9x0a", store.StateCreated)

	var buf bytes.Buffer
	require.NoError(t, RenderRecord(&buf, created))

	g := goldie.New(t)
	g.Assert(t, "record", buf.Bytes())
}

func TestRenderModels(t *testing.T) {
	models := []*model.Model{
		model.New("article",
			model.WithAttributes("title", "body"),
			model.WithBelongsTo("author", "person"),
			model.WithHasMany("comments", "comment"),
		),
		model.New("person"),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderModels(&buf, models))

	g := goldie.New(t)
	g.Assert(t, "models", buf.Bytes())
}
