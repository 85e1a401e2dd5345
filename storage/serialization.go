// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/kbsearch/core"
)

// QueryRecordMUS is the MUS serializer of core.QueryRecord.
// Timestamps are encoded as Unix microseconds.
var QueryRecordMUS = queryRecordMUS{}

type queryRecordMUS struct{}

func (s queryRecordMUS) Marshal(v core.QueryRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(v.Seq, bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	n += varint.Uint64.Marshal(uint64(v.Fingerprint), bs[n:])
	n += varint.Int.Marshal(v.Results, bs[n:])
	n += ord.String.Marshal(v.Session, bs[n:])
	return n + varint.Int64.Marshal(v.Timestamp.UnixMicro(), bs[n:])
}

func (s queryRecordMUS) Unmarshal(bs []byte) (v core.QueryRecord, n int, err error) {
	var n1 int
	v.Seq, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var fingerprint uint64
	fingerprint, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Fingerprint = core.ID(fingerprint)
	v.Results, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Session, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp = time.UnixMicro(micros).UTC()
	return
}

func (s queryRecordMUS) Size(v core.QueryRecord) (size int) {
	size = varint.Uint64.Size(v.Seq)
	size += ord.String.Size(v.Query)
	size += varint.Uint64.Size(uint64(v.Fingerprint))
	size += varint.Int.Size(v.Results)
	size += ord.String.Size(v.Session)
	return size + varint.Int64.Size(v.Timestamp.UnixMicro())
}

// MarshalSeq serializes a sequence number to bytes.
func MarshalSeq(seq uint64) []byte {
	buf := make([]byte, varint.Uint64.Size(seq))
	varint.Uint64.Marshal(seq, buf)
	return buf
}

// UnmarshalSeq deserializes a sequence number from bytes.
func UnmarshalSeq(data []byte) (uint64, error) {
	seq, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return seq, nil
}

// MarshalQueryRecord serializes a QueryRecord to bytes.
func MarshalQueryRecord(record *core.QueryRecord) []byte {
	buf := make([]byte, QueryRecordMUS.Size(*record))
	QueryRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalQueryRecord deserializes a QueryRecord from bytes.
func UnmarshalQueryRecord(data []byte) (*core.QueryRecord, error) {
	record, n, err := QueryRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &record, nil
}
