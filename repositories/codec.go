package repositories

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in Badger as protobuf wire messages. Field numbers are
// part of the on-disk format and must never be reused.
const (
	userFieldID           protowire.Number = 1
	userFieldHandle       protowire.Number = 2
	userFieldPasswordHash protowire.Number = 3
	userFieldRole         protowire.Number = 4
	userFieldCreatedAt    protowire.Number = 5

	sessionFieldUserID    protowire.Number = 1
	sessionFieldCreatedAt protowire.Number = 2
	sessionFieldExpiresAt protowire.Number = 3

	messageFieldID         protowire.Number = 1
	messageFieldSenderID   protowire.Number = 2
	messageFieldReceiverID protowire.Number = 3
	messageFieldContent    protowire.Number = 4
	messageFieldCreatedAt  protowire.Number = 5
	messageFieldDeletedAt  protowire.Number = 6
)

type recordWriter struct {
	buf []byte
}

func (w *recordWriter) putInt(num protowire.Number, v int64) {
	w.buf = protowire.AppendTag(w.buf, num, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, uint64(v))
}

func (w *recordWriter) putString(num protowire.Number, s string) {
	if s == "" {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, s)
}

func (w *recordWriter) putTime(num protowire.Number, t *time.Time) {
	if t == nil {
		return
	}
	w.putInt(num, t.UnixNano())
}

// field is one decoded value; only varint and length-delimited fields are used.
type field struct {
	num protowire.Number
	i   int64
	s   string
}

func (f field) asTime() *time.Time {
	t := time.Unix(0, f.i).UTC()
	return &t
}

// walkRecord decodes every field of a record, skipping unknown wire types.
func walkRecord(b []byte, visit func(f field)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(n))
			}
			visit(field{num: num, i: int64(v)})
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(n))
			}
			visit(field{num: num, s: v})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
