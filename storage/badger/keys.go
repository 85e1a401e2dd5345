package badger

import (
	"encoding/binary"

	"github.com/poiesic/kbsearch/core"
)

const (
	queryRecordPrefix      = "qryrec"
	queryFingerprintPrefix = "qryfp"
	queryRecordSeq         = "qryseq"
)

// makeQueryRecordKey generates a key for a query record by sequence number.
// Format: prefix:seq
func makeQueryRecordKey(seq uint64) []byte {
	buf := make([]byte, len(queryRecordPrefix)+1+8)
	offset := copy(buf, queryRecordPrefix+":")
	// Write in BigEndian order so lexicographic sort follows insertion order
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// queryRecordKeyPrefix is the prefix shared by all query record keys.
func queryRecordKeyPrefix() []byte {
	return []byte(queryRecordPrefix + ":")
}

// makeQueryFingerprintKey generates a composite key for the fingerprint index.
// Format: prefix:fingerprint:seq
func makeQueryFingerprintKey(fingerprint core.ID, seq uint64) []byte {
	buf := make([]byte, len(queryFingerprintPrefix)+1+16)
	offset := copy(buf, queryFingerprintPrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialQueryFingerprintKey generates a partial key matching every
// occurrence of a fingerprint.
// Format: prefix:fingerprint
func makePartialQueryFingerprintKey(fingerprint core.ID) []byte {
	buf := make([]byte, len(queryFingerprintPrefix)+1+8)
	offset := copy(buf, queryFingerprintPrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	return buf
}

// queryFingerprintKeyPrefix is the prefix shared by all fingerprint index keys.
func queryFingerprintKeyPrefix() []byte {
	return []byte(queryFingerprintPrefix + ":")
}

// splitQueryFingerprintKey extracts the fingerprint and sequence number
// from a fingerprint index key.
func splitQueryFingerprintKey(key []byte) (core.ID, uint64, bool) {
	offset := len(queryFingerprintPrefix) + 1
	if len(key) != offset+16 {
		return 0, 0, false
	}
	fingerprint := binary.BigEndian.Uint64(key[offset:])
	seq := binary.BigEndian.Uint64(key[offset+8:])
	return core.ID(fingerprint), seq, true
}
