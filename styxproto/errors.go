package styxproto

import "fmt"

// decodeError is a sentinel string error, the same shape as this
// lineage's parseError (aqwari.net/net/styx/styxproto/errors.go), used
// for malformed-input failures that are always the same regardless of
// call site.
type decodeError string

func (e decodeError) Error() string { return string(e) }

const (
	errShortBuffer  decodeError = "styxproto: buffer too short for message"
	errInvalidUTF8  decodeError = "styxproto: string is not valid UTF-8"
	errShortStat    decodeError = "styxproto: stat record shorter than its header"
	errTrailingData decodeError = "styxproto: trailing bytes after message body"
)

// UnknownTypeError is returned by Decode for a wire type byte outside
// the known message set — including the topenfdU/ropenfdU 9P2000.u
// dialect markers (SPEC_FULL.md section 4.4) this codec never
// produces or accepts. It carries the tag already parsed from the
// frame, so a caller that can't decode the body can still reply with
// an Rerror on the right tag instead of treating the message as a
// fatal framing error.
type UnknownTypeError struct {
	Tag  uint16
	Type Type
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("styxproto: unknown message type %v", e.Type)
}

// sizeError is returned by the sizing pass and by Encode when a value
// does not fit the wire encoding's limits. Overlong values are always a
// hard error in this codec: unlike some implementations in this
// lineage, encode never silently truncates a string, byte array, or
// sequence to fit (SPEC_FULL.md section 7).
type sizeError struct {
	Kind  string
	Limit int
	Got   int
}

func (e *sizeError) Error() string {
	return fmt.Sprintf("styxproto: %s: %d exceeds limit of %d", e.Kind, e.Got, e.Limit)
}

func errStringTooLong(got int) error {
	return &sizeError{Kind: "StringTooLong", Limit: MaxStringLen, Got: got}
}

func errBytesTooLong(got int) error {
	return &sizeError{Kind: "BytesTooLong", Limit: MaxDataLen, Got: got}
}

func errSeqTooLong(got int) error {
	return &sizeError{Kind: "SeqTooLong", Limit: MaxSeqLen, Got: got}
}

// errUnsupportedType builds the error for value kinds the 9P2000 wire
// format has no representation for (floats, chars, options, maps,
// enums). Nothing in this package returns it: the message set is
// closed and fully enumerated in codec.go, so Encode, Size and Decode
// never meet such a kind.
type unsupportedTypeError struct {
	Kind string
}

func (e *unsupportedTypeError) Error() string {
	return fmt.Sprintf("styxproto: unsupported value kind: %s", e.Kind)
}

func errUnsupportedType(kind string) error {
	return &unsupportedTypeError{Kind: kind}
}
