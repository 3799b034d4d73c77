package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Document Structure (JSON:API subset)
// --------------------------------------------------------------------------

// Document is a JSON:API top-level document.
type Document struct {
	Data     PrimaryData    `json:"data"`
	Included []Resource     `json:"included,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	Links    map[string]any `json:"links,omitempty"`
	Errors   []ErrorObject  `json:"errors,omitempty"`
}

// MarshalJSON implements json.Marshaler. Error documents are written without
// a "data" member.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	if len(d.Errors) > 0 && d.Data.IsNull() {
		return json.Marshal(struct {
			plain
			Data *PrimaryData `json:"data,omitempty"`
		}{plain: plain(d)})
	}
	return json.Marshal(plain(d))
}

// Resource is a single resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]any          `json:"links,omitempty"`
	Meta          map[string]any          `json:"meta,omitempty"`
}

// Identifier is a resource identifier object (linkage).
type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship is a relationship object. Data holds the raw linkage: nil if
// the member is absent, "null" for an empty to-one relationship, an object
// or an array of identifiers otherwise.
type Relationship struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Links map[string]any  `json:"links,omitempty"`
	Meta  map[string]any  `json:"meta,omitempty"`
}

// ErrorObject is a JSON:API error object.
type ErrorObject struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// --------------------------------------------------------------------------
// Primary Data
// --------------------------------------------------------------------------

// PrimaryData is the "data" member of a document: a single resource,
// null, or a collection of resources.
type PrimaryData struct {
	many      bool
	resources []Resource
}

// SingleData wraps one resource as primary data.
func SingleData(r Resource) PrimaryData {
	return PrimaryData{resources: []Resource{r}}
}

// NullData is primary data of an empty to-one request.
func NullData() PrimaryData {
	return PrimaryData{}
}

// CollectionData wraps resources as primary data. An empty call creates an empty collection.
func CollectionData(rs ...Resource) PrimaryData {
	if rs == nil {
		rs = []Resource{}
	}
	return PrimaryData{many: true, resources: rs}
}

// IsCollection reports whether the data is an array.
func (d PrimaryData) IsCollection() bool {
	return d.many
}

// IsNull reports whether the data is a single null resource.
func (d PrimaryData) IsNull() bool {
	return !d.many && len(d.resources) == 0
}

// Resources returns the resources in document order (empty for null data).
func (d PrimaryData) Resources() []Resource {
	return d.resources
}

// One returns the resource of single-resource data.
func (d PrimaryData) One() (Resource, bool) {
	if d.many || len(d.resources) == 0 {
		return Resource{}, false
	}
	return d.resources[0], true
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *PrimaryData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*d = NullData()
		return nil
	case b[0] == '[':
		var rs []Resource
		if err := json.Unmarshal(b, &rs); err != nil {
			return err
		}
		*d = CollectionData(rs...)
		return nil
	default:
		var r Resource
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		*d = SingleData(r)
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (d PrimaryData) MarshalJSON() ([]byte, error) {
	if d.many {
		rs := d.resources
		if rs == nil {
			rs = []Resource{}
		}
		return json.Marshal(rs)
	}
	if len(d.resources) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(d.resources[0])
}

// --------------------------------------------------------------------------
// Linkage
// --------------------------------------------------------------------------

// ToOne creates a relationship object linking a single resource.
func ToOne(id Identifier) Relationship {
	data, _ := json.Marshal(id)
	return Relationship{Data: data}
}

// ToNone creates a to-one relationship object with null linkage.
func ToNone() Relationship {
	return Relationship{Data: json.RawMessage("null")}
}

// ToMany creates a relationship object linking the resources in order.
func ToMany(ids ...Identifier) Relationship {
	if ids == nil {
		ids = []Identifier{}
	}
	data, _ := json.Marshal(ids)
	return Relationship{Data: data}
}

// Linkage decodes the resource linkage of the relationship.
// present is false if the relationship object carries no "data" member (e.g.
// only links); many is true if the linkage is an array.
func (r Relationship) Linkage() (ids []Identifier, many bool, present bool, err error) {
	data := bytes.TrimSpace(r.Data)
	switch {
	case len(data) == 0:
		return nil, false, false, nil
	case bytes.Equal(data, []byte("null")):
		return nil, false, true, nil
	case data[0] == '[':
		ids = []Identifier{}
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, true, true, fmt.Errorf("decode to-many linkage: %w", err)
		}
		return ids, true, true, nil
	default:
		var id Identifier
		if err := json.Unmarshal(data, &id); err != nil {
			return nil, false, true, fmt.Errorf("decode to-one linkage: %w", err)
		}
		return []Identifier{id}, false, true, nil
	}
}

// --------------------------------------------------------------------------
// API Errors
// --------------------------------------------------------------------------

// APIError is returned by fetchers when the service answers with an error status.
type APIError struct {
	StatusCode int
	Status     string
	Errors     []ErrorObject
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("json:api error: %s", e.Status)
	}
	details := make([]string, 0, len(e.Errors))
	for _, obj := range e.Errors {
		switch {
		case obj.Detail != "":
			details = append(details, obj.Detail)
		case obj.Title != "":
			details = append(details, obj.Title)
		case obj.Code != "":
			details = append(details, obj.Code)
		}
	}
	return fmt.Sprintf("json:api error: %s: %s", e.Status, strings.Join(details, "; "))
}
