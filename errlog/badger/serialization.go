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


package badger

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/graphload/core"
)

// ErrorRecordMUS serializes core.ErrorRecord values.
// RecordedAt is stored with microsecond precision.
var ErrorRecordMUS = errorRecordMUS{}

var _ mus.Serializer[core.ErrorRecord] = ErrorRecordMUS

type errorRecordMUS struct{}

func (errorRecordMUS) Marshal(v core.ErrorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Entity, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += varint.Int.Marshal(len(v.Values), bs[n:])
	for _, s := range v.Values {
		n += ord.String.Marshal(s, bs[n:])
	}
	n += ord.String.Marshal(v.Cause, bs[n:])
	n += varint.Int64.Marshal(v.RecordedAt.UnixMicro(), bs[n:])
	return
}

func (errorRecordMUS) Unmarshal(bs []byte) (v core.ErrorRecord, n int, err error) {
	var n1 int
	v.Entity, n1, err = ord.String.Unmarshal(bs)
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 || count > len(bs)-n {
		err = fmt.Errorf("invalid value count %d", count)
		return
	}
	v.Values = make([]string, count)
	for i := range v.Values {
		v.Values[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Cause, n1, err = ord.String.Unmarshal(bs[n:])
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
	v.RecordedAt = time.UnixMicro(micros).UTC()
	return
}

func (errorRecordMUS) Size(v core.ErrorRecord) (size int) {
	size = ord.String.Size(v.Entity)
	size += ord.String.Size(v.Source)
	size += varint.Int.Size(len(v.Values))
	for _, s := range v.Values {
		size += ord.String.Size(s)
	}
	size += ord.String.Size(v.Cause)
	size += varint.Int64.Size(v.RecordedAt.UnixMicro())
	return
}

func (s errorRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// MarshalErrorRecord serializes an ErrorRecord to bytes.
func MarshalErrorRecord(rec core.ErrorRecord) []byte {
	buf := make([]byte, ErrorRecordMUS.Size(rec))
	ErrorRecordMUS.Marshal(rec, buf)
	return buf
}

// UnmarshalErrorRecord deserializes an ErrorRecord from bytes.
func UnmarshalErrorRecord(data []byte) (core.ErrorRecord, error) {
	rec, _, err := ErrorRecordMUS.Unmarshal(data)
	return rec, err
}

type runMeta struct {
	Label     string
	StartedAt time.Time
}

func marshalRunMeta(m runMeta) []byte {
	micros := m.StartedAt.UnixMicro()
	buf := make([]byte, ord.String.Size(m.Label)+varint.Int64.Size(micros))
	n := ord.String.Marshal(m.Label, buf)
	varint.Int64.Marshal(micros, buf[n:])
	return buf
}

func unmarshalRunMeta(data []byte) (runMeta, error) {
	label, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return runMeta{}, err
	}
	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return runMeta{}, err
	}
	return runMeta{Label: label, StartedAt: time.UnixMicro(micros).UTC()}, nil
}
