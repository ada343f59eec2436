package importer

import (
	"io"

	"github.com/goccy/go-json"
)

// DecodeBatch reads a JSON encoded Batch. Provider specific fields belong
// under each record's "extra" object.
func DecodeBatch(r io.Reader) (Batch, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Batch{}, err
	}
	return b, nil
}
