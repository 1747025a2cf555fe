package styxproto

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Decoder reads framed 9P2000 messages from an underlying stream. It
// plays the role of this lineage's own styxproto.Decoder, simplified:
// droyo-styx's Decoder is a zero-copy sliding-window reader built to
// let callers stream a Twrite/Rread body without buffering it whole,
// which this single-client, fully-synchronous server has no need for
// (SPEC_FULL.md section 4.4 reads one full frame before dispatch).
type Decoder struct {
	r     *bufio.Reader
	Msize uint32 // the negotiated maximum frame size; 0 means unbounded
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, MinBufSize)}
}

// ReadFrame reads one frame's type and body. On a clean EOF between
// frames, it returns io.EOF; any other read failure is a transport
// error and should terminate the connection (SPEC_FULL.md section 7).
func (d *Decoder) ReadFrame() (Type, []byte, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(d.r, sizeBuf[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, io.ErrUnexpectedEOF
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size < 5 {
		return 0, nil, errShortBuffer
	}
	if d.Msize != 0 && size > d.Msize {
		return 0, nil, ErrExceedsMsize
	}
	typeBuf := make([]byte, 1)
	if _, err := io.ReadFull(d.r, typeBuf); err != nil {
		return 0, nil, io.ErrUnexpectedEOF
	}
	body := make([]byte, size-5)
	if _, err := io.ReadFull(d.r, body); err != nil {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return Type(typeBuf[0]), body, nil
}

// ErrExceedsMsize is returned when a frame's declared size exceeds the
// negotiated msize; the dispatcher treats this as fatal.
var ErrExceedsMsize = decodeError("styxproto: message exceeds negotiated msize")

// Encoder writes framed 9P2000 messages to an underlying stream.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriterSize(w, MinBufSize)}
}

// WriteMsg encodes m and writes its frame (size, type, body) to the
// underlying stream. The caller must call Flush to guarantee delivery.
func (e *Encoder) WriteMsg(m Msg) error {
	typ, err := TypeOf(m)
	if err != nil {
		return err
	}
	body, err := Encode(m)
	if err != nil {
		return err
	}
	size := uint32(5 + len(body))
	var header [5]byte
	binary.LittleEndian.PutUint32(header[:4], size)
	header[4] = byte(typ)
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}
	_, err = e.w.Write(body)
	return err
}

// Flush flushes any buffered frames to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}
