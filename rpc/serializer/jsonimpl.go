package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/japi/rpc/common"
)

// NewJSONSerializer creates a new serializer using compact json encoding
func NewJSONSerializer() IDocumentSerializer {
	return &jsonSerializerImpl{}
}

// NewPrettyJSONSerializer creates a new serializer using indented json encoding
func NewPrettyJSONSerializer() IDocumentSerializer {
	return &jsonSerializerImpl{indent: "  "}
}

// jsonSerializerImpl implements the IDocumentSerializer interface using json encoding
type jsonSerializerImpl struct {
	indent string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IDocumentSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(doc *common.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("serialize: nil document")
	}
	if j.indent != "" {
		return json.MarshalIndent(doc, "", j.indent)
	}
	return json.Marshal(doc)
}

func (j jsonSerializerImpl) Deserialize(b []byte, doc *common.Document) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return fmt.Errorf("deserialize: empty document")
	}
	if err := json.Unmarshal(b, doc); err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	return nil
}

func (j jsonSerializerImpl) ContentType() string {
	return MediaType
}
