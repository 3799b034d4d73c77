package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMerge(t *testing.T) {
	rec := NewRecord("person", "9", StateFetched)
	assert.Equal(t, "person#9", rec.Ref())
	assert.Equal(t, "person#9", rec.String())

	written := rec.Merge(map[string]any{"firstName": "Dan", "lastName": "Gebhardt"}, nil)
	assert.True(t, written)

	// Undefined and absent keys keep the value, nil overwrites
	written = rec.Merge(map[string]any{"firstName": Undefined, "lastName": nil}, nil)
	assert.True(t, written)
	assert.Equal(t, map[string]any{"firstName": "Dan", "lastName": nil}, rec.Attributes())

	written = rec.Merge(map[string]any{"firstName": Undefined}, nil)
	assert.False(t, written)

	// filtered names are dropped
	written = rec.Merge(map[string]any{"twitter": "dgeb", "age": 40}, func(name string) bool { return name == "twitter" })
	assert.True(t, written)
	_, ok := rec.Attr("age")
	assert.False(t, ok)
	v, ok := rec.Attr("twitter")
	assert.True(t, ok)
	assert.Equal(t, "dgeb", v)

	// the returned attributes are a copy
	rec.Attributes()["firstName"] = "changed"
	v, _ = rec.Attr("firstName")
	assert.Equal(t, "Dan", v)
}

func TestRecordRelationships(t *testing.T) {
	article := NewRecord("article", "1", StateFetched)
	author := NewRecord("person", "9", StateFetched)

	_, ok := article.BelongsTo("author")
	assert.False(t, ok)
	_, ok = article.HasMany("comments")
	assert.False(t, ok)
	assert.Empty(t, article.Relationships())

	article.SetBelongsTo("author", author)
	got, ok := article.BelongsTo("author")
	require.True(t, ok)
	assert.Same(t, author, got)

	article.SetBelongsTo("author", nil)
	got, ok = article.BelongsTo("author")
	assert.True(t, ok)
	assert.Nil(t, got)

	article.SetHasMany("comments", nil)
	comments, ok := article.HasMany("comments")
	assert.True(t, ok)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	first, second := NewRecord("comment", "5", StateFetched), NewRecord("comment", "12", StateFetched)
	input := []*Record{first, second}
	article.SetHasMany("comments", input)
	input[0] = second // the record keeps its own copy

	comments, ok = article.HasMany("comments")
	require.True(t, ok)
	require.Len(t, comments, 2)
	assert.Same(t, first, comments[0])
	assert.Same(t, second, comments[1])

	assert.Equal(t, []string{"author", "comments"}, article.Relationships())
}

func TestRecordState(t *testing.T) {
	rec := NewRecord("person", "9", StateCreated)
	assert.Equal(t, StateCreated, rec.State())
	assert.Equal(t, "created", rec.State().String())

	rec.Touch()
	assert.Equal(t, StateUpdated, rec.State())
	assert.Equal(t, "updated", rec.State().String())
	assert.Equal(t, "fetched", StateFetched.String())
}

func TestUndefined(t *testing.T) {
	assert.True(t, IsUndefined(Undefined))
	assert.False(t, IsUndefined(nil))
	assert.False(t, IsUndefined(""))
}

func TestErrors(t *testing.T) {
	err := NewErrorf(RetCRecordNotFound, "%s#%s", "person", "9")
	assert.Equal(t, "japi: record not found: person#9", err.Error())
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NotErrorIs(t, err, ErrUnknownModel)

	wrapped := fmt.Errorf("find record: %w", err)
	assert.ErrorIs(t, wrapped, ErrRecordNotFound)

	var target *Error
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, RetCRecordNotFound, target.Code)

	assert.Equal(t, "japi: unknown model", ErrUnknownModel.Error())
	assert.Equal(t, "unknown error", RetCode(100).String())
}

func TestTypeMap(t *testing.T) {
	m := NewTypeMap("person")
	for _, id := range []string{"b", "c", "a"} {
		_, loaded := m.LoadOrStore(NewRecord("person", id, StateFetched))
		assert.False(t, loaded)
	}
	_, loaded := m.LoadOrStore(NewRecord("person", "a", StateFetched))
	assert.True(t, loaded)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"a", "b", "c"}, m.IDs())

	count := 0
	m.Range(func(id string, rec *Record) bool {
		assert.Equal(t, id, rec.ID())
		count++
		return true
	})
	assert.Equal(t, 3, count)
}
