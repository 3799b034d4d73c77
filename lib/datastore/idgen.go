package datastore

import (
	"encoding/binary"
	"github.com/google/uuid"
	"strconv"
)

// localIDLength is the length of ids generated by NewLocalID.
const localIDLength = 7

// IDGenerator creates ids for records created without one.
type IDGenerator func() string

// NewLocalID returns a short random base-36 token for locally created records.
// The id space is small (36^7) and ids are not checked for collisions with
// existing records; a collision merges the new record into the existing one.
func NewLocalID() string {
	u := uuid.New()
	id := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	for len(id) < localIDLength {
		id = "0" + id
	}
	return id[:localIDLength]
}
