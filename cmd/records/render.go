package records

import (
	"encoding/json"
	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/lib/store"
	"io"
)

// renderedRecord is the JSON shape of a record on the command line.
// Relationships are rendered as the id of the target (to-one, null if empty)
// or the list of ids (to-many).
type renderedRecord struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	State         string         `json:"state"`
	Attributes    map[string]any `json:"attributes"`
	Relationships map[string]any `json:"relationships,omitempty"`
}

type renderedModel struct {
	Name       string            `json:"name"`
	Attributes []string          `json:"attributes,omitempty"`
	HasMany    map[string]string `json:"hasMany,omitempty"`
	BelongsTo  map[string]string `json:"belongsTo,omitempty"`
}

// RenderRecord writes a single record as indented JSON
func RenderRecord(w io.Writer, rec *store.Record) error {
	return writeJSON(w, renderRecord(rec))
}

// RenderRecords writes the records as an indented JSON array
func RenderRecords(w io.Writer, recs []*store.Record) error {
	out := make([]renderedRecord, len(recs))
	for i, rec := range recs {
		out[i] = renderRecord(rec)
	}
	return writeJSON(w, out)
}

// RenderModels writes the model definitions as an indented JSON array
func RenderModels(w io.Writer, models []*model.Model) error {
	out := make([]renderedModel, len(models))
	for i, m := range models {
		out[i] = renderedModel{
			Name:       m.Name(),
			Attributes: m.Attributes(),
			HasMany:    m.HasMany(),
			BelongsTo:  m.BelongsTo(),
		}
	}
	return writeJSON(w, out)
}

func renderRecord(rec *store.Record) renderedRecord {
	out := renderedRecord{
		Type:          rec.Type(),
		ID:            rec.ID(),
		State:         rec.State().String(),
		Attributes:    rec.Attributes(),
		Relationships: map[string]any{},
	}
	for _, name := range rec.Relationships() {
		if target, ok := rec.BelongsTo(name); ok {
			if target == nil {
				out.Relationships[name] = nil
			} else {
				out.Relationships[name] = target.ID()
			}
			continue
		}
		targets, _ := rec.HasMany(name)
		ids := make([]string, len(targets))
		for i, target := range targets {
			ids[i] = target.ID()
		}
		out.Relationships[name] = ids
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
