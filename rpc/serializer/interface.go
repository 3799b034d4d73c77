package serializer

import "github.com/ValentinKolb/japi/rpc/common"

// MediaType is the JSON:API media type used in Accept and Content-Type headers.
const MediaType = "application/vnd.api+json"

// IDocumentSerializer is the interface for all document serializers
type IDocumentSerializer interface {
	// Serialize serializes a Document into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(doc *common.Document) ([]byte, error)
	// Deserialize deserializes a byte array into a Document
	// It takes a byte array and a pointer to a Document as parameters
	// It returns an error if any
	Deserialize(b []byte, doc *common.Document) error
	// ContentType returns the media type of the serialized form
	ContentType() string
}
