package styxproto

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// Shorthand for parsing numbers, named the same as this lineage's own
// shorthand (aqwari.net/net/styx/styxproto/pack.go).
var (
	guint16 = binary.LittleEndian.Uint16
	guint32 = binary.LittleEndian.Uint32
	guint64 = binary.LittleEndian.Uint64

	buint16 = binary.LittleEndian.PutUint16
	buint32 = binary.LittleEndian.PutUint32
	buint64 = binary.LittleEndian.PutUint64
)

// A writer accumulates an encoded message body. Unlike the ErrWriter
// used elsewhere in this lineage, it reports size-limit violations as
// typed errors rather than panicking, since those are ordinary,
// expected failures here (SPEC_FULL.md section 7), not programmer
// bugs.
type writer struct {
	buf bytes.Buffer
	err error
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) puint8(v uint8) {
	if w.err != nil {
		return
	}
	w.buf.WriteByte(v)
}

func (w *writer) puint16(v uint16) {
	if w.err != nil {
		return
	}
	var b [2]byte
	buint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) puint32(v uint32) {
	if w.err != nil {
		return
	}
	var b [4]byte
	buint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) puint64(v uint64) {
	if w.err != nil {
		return
	}
	var b [8]byte
	buint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) pqid(q Qid) {
	if w.err != nil {
		return
	}
	w.puint8(uint8(q.Type))
	w.puint32(q.Version)
	w.puint64(q.Path)
}

// pstring writes a u16-length-prefixed string field.
func (w *writer) pstring(s string) {
	if w.err != nil {
		return
	}
	if len(s) > MaxStringLen {
		w.fail(errStringTooLong(len(s)))
		return
	}
	w.puint16(uint16(len(s)))
	w.buf.WriteString(s)
}

// pbytes writes a u32-length-prefixed opaque byte array.
func (w *writer) pbytes(p []byte) {
	if w.err != nil {
		return
	}
	if len(p) > MaxDataLen {
		w.fail(errBytesTooLong(len(p)))
		return
	}
	w.puint32(uint32(len(p)))
	w.buf.Write(p)
}

// pblock writes a u16-length-prefixed opaque byte array: the framing
// used both for an already-self-prefixed Stat embedded in Twstat/Rstat
// ("DoubleTwo" mode) and for any other u16-counted blob.
func (w *writer) pblock(p []byte) {
	if w.err != nil {
		return
	}
	if len(p) > MaxStringLen {
		w.fail(errStringTooLong(len(p)))
		return
	}
	w.puint16(uint16(len(p)))
	w.buf.Write(p)
}

func (w *writer) pstringSeq(ss []string) {
	if w.err != nil {
		return
	}
	if len(ss) > MaxSeqLen {
		w.fail(errSeqTooLong(len(ss)))
		return
	}
	w.puint16(uint16(len(ss)))
	for _, s := range ss {
		w.pstring(s)
	}
}

func (w *writer) pqidSeq(qs []Qid) {
	if w.err != nil {
		return
	}
	if len(qs) > MaxSeqLen {
		w.fail(errSeqTooLong(len(qs)))
		return
	}
	w.puint16(uint16(len(qs)))
	for _, q := range qs {
		w.pqid(q)
	}
}

func (w *writer) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// A reader consumes an encoded message body in order, the dual of
// writer.
type reader struct {
	buf []byte
	pos int
	err error
}

func newReader(b []byte) *reader { return &reader{buf: b} }

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) need(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.fail(errShortBuffer)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) guint8() uint8 {
	b := r.need(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) guint16() uint16 {
	b := r.need(2)
	if b == nil {
		return 0
	}
	return guint16(b)
}

func (r *reader) guint32() uint32 {
	b := r.need(4)
	if b == nil {
		return 0
	}
	return guint32(b)
}

func (r *reader) guint64() uint64 {
	b := r.need(8)
	if b == nil {
		return 0
	}
	return guint64(b)
}

func (r *reader) gqid() Qid {
	var q Qid
	q.Type = QidType(r.guint8())
	q.Version = r.guint32()
	q.Path = r.guint64()
	return q
}

func (r *reader) gstring() string {
	n := r.guint16()
	b := r.need(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.fail(errInvalidUTF8)
		return ""
	}
	return string(b)
}

func (r *reader) gbytes() []byte {
	n := r.guint32()
	b := r.need(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *reader) gblock() []byte {
	n := r.guint16()
	b := r.need(int(n))
	if b == nil {
		return nil
	}
	return b
}

func (r *reader) gstringSeq() []string {
	n := r.guint16()
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = r.gstring()
	}
	return out
}

func (r *reader) gqidSeq() []Qid {
	n := r.guint16()
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]Qid, n)
	for i := range out {
		out[i] = r.gqid()
	}
	return out
}

func (r *reader) done() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.buf) {
		return errTrailingData
	}
	return nil
}
