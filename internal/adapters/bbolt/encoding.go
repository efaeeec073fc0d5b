package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// seqKey encodes a record position as a big-endian key so cursor order
// equals insertion order.
func seqKey(i int) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(i))
	return k[:]
}

// encodeRecords marshals each record to JSON, keyed by position.
func encodeRecords[T any](records []T) ([][]byte, error) {
	out := make([][]byte, len(records))
	for i := range records {
		data, err := json.Marshal(&records[i])
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

// decodeRecord unmarshals one stored value. v is only valid inside the
// transaction, and json.Unmarshal copies what it keeps.
func decodeRecord[T any](k, v []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(v, &rec); err != nil {
		return rec, fmt.Errorf("unmarshal record %x: %w", k, err)
	}
	return rec, nil
}
