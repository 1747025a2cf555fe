// Package server implements the single-client, single-session 9P2000
// dispatcher: a read-decode-handle-encode loop grounded on
// droyo-styx's serve.go/handleMessage shape, simplified from that
// file's multi-session, pending-request-tracking Conn down to one
// *session.Session per Conn, since this design serves exactly one
// client at a time (SPEC_FULL.md section 5).
package server

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/styxfs/ninefs/session"
	"github.com/styxfs/ninefs/styxproto"
	"github.com/styxfs/ninefs/tree"
)

type connState int

const (
	stateNew connState = iota
	stateActive
)

// Conn serves 9P2000 requests over a single connection. It takes
// ownership of a *tree.Tree at construction and gives it back from
// Serve once the connection ends, so the listener can hand the same
// tree to the next connection (SPEC_FULL.md section 5,
// "Cross-session resource").
type Conn struct {
	rwc     io.ReadWriteCloser
	dec     *styxproto.Decoder
	enc     *styxproto.Encoder
	state   connState
	tree    *tree.Tree
	sess    *session.Session
	maxSize uint32
	log     *logrus.Entry
}

// NewConn wraps rwc as a 9P2000 connection operating on t. log is
// used for per-request diagnostics; a nil log is replaced with a
// standard logrus entry.
func NewConn(rwc io.ReadWriteCloser, t *tree.Tree, log *logrus.Entry) *Conn {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Conn{
		rwc:     rwc,
		dec:     styxproto.NewDecoder(rwc),
		enc:     styxproto.NewEncoder(rwc),
		tree:    t,
		maxSize: styxproto.DefaultMsize,
		log:     log,
	}
}

// Serve runs the read-handle-write loop until the connection closes
// or a fatal transport/codec error occurs. It always returns the tree
// it was constructed with (or the one its session ended up owning,
// which is the same tree), for the caller to recycle.
//
// A panic anywhere in the request path is recovered here rather than
// left to take down the whole process, matching droyo-styx/serve.go's
// own (c *Conn) serve(): one bad request should end one connection,
// not every connection the daemon is holding open.
func (c *Conn) Serve(ctx context.Context) (tr *tree.Tree, err error) {
	defer c.rwc.Close()
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			c.log.Errorf("panic serving connection: %v\n%s", r, buf)
			tr = c.tree
			err = fmt.Errorf("server: panic serving connection: %v", r)
		}
	}()

	for {
		typ, body, derr := c.dec.ReadFrame()
		if derr != nil {
			if derr == io.EOF {
				return c.tree, nil
			}
			c.log.WithError(derr).Warn("closing connection on framing error")
			return c.tree, derr
		}
		msg, derr := styxproto.Decode(typ, body)
		if derr != nil {
			if ute, ok := derr.(*styxproto.UnknownTypeError); ok {
				c.log.WithField("type", ute.Type).Debug("skipping unknown message type")
				if werr := c.enc.WriteMsg(styxproto.RerrorMsg{Tag: ute.Tag, Ename: "unexpected message type"}); werr != nil {
					return c.tree, werr
				}
				if werr := c.enc.Flush(); werr != nil {
					return c.tree, werr
				}
				continue
			}
			c.log.WithError(derr).Warn("closing connection on malformed message")
			return c.tree, derr
		}

		req := newRequest(ctx, msg)
		if herr := c.handle(req); herr != nil {
			c.log.WithError(errors.Wrap(herr, "handling message")).Warn("closing connection")
			return c.tree, herr
		}
		if ferr := c.enc.Flush(); ferr != nil {
			return c.tree, ferr
		}
	}
}

func (c *Conn) logFields(req request) *logrus.Entry {
	return c.log.WithFields(logrus.Fields{"tag": req.tag, "type": typeName(req.msg)})
}

func typeName(m styxproto.Msg) string {
	typ, err := styxproto.TypeOf(m)
	if err != nil {
		return "unknown"
	}
	return typ.String()
}

// rerror writes an Rerror with the given request's tag and ename. It
// returns only the write error (nil once the Rerror is written), so the
// dispatch loop treats the session error itself as handled and
// non-fatal, per SPEC_FULL.md section 7.
func (c *Conn) rerror(req request, ename string) error {
	return c.enc.WriteMsg(styxproto.RerrorMsg{Tag: req.tag, Ename: ename})
}

func (c *Conn) write(m styxproto.Msg) error {
	return c.enc.WriteMsg(m)
}

// handle dispatches a single decoded message, writing exactly one
// reply (or Rerror) before returning. A non-nil return is a fatal
// transport-level failure (a write error); client-visible protocol
// errors are written as Rerror and handle returns nil.
func (c *Conn) handle(req request) error {
	if tv, ok := req.msg.(styxproto.Tversion); ok {
		return c.handleVersion(req, tv)
	}
	if c.state != stateActive {
		return c.rerror(req, "protocol version not negotiated")
	}

	switch m := req.msg.(type) {
	case styxproto.Tauth:
		return c.rerror(req, "no auth needed")
	case styxproto.Tattach:
		return c.handleAttach(req, m)
	case styxproto.Tflush:
		return c.write(styxproto.Rflush{Tag: req.tag})
	default:
		if c.sess == nil {
			return c.rerror(req, "not attached")
		}
		return c.handleSessionMessage(req, m)
	}
}

func (c *Conn) handleVersion(req request, m styxproto.Tversion) error {
	if c.state != stateNew {
		return c.rerror(req, "late Tversion message")
	}
	if !strings.HasPrefix(m.Version, "9P2000") {
		return c.rerror(req, "unsupported version "+m.Version)
	}
	msize := m.Msize
	if msize > c.maxSize {
		msize = c.maxSize
	}
	c.dec.Msize = msize
	c.state = stateActive
	return c.write(styxproto.Rversion{Tag: req.tag, Msize: msize, Version: "9P2000"})
}

func (c *Conn) handleAttach(req request, m styxproto.Tattach) error {
	if c.sess != nil {
		return c.rerror(req, "already attached")
	}
	if m.Afid != styxproto.NOFID {
		return c.rerror(req, "authentication not required")
	}
	c.sess = session.New(c.tree, m.Uname, m.Fid)
	rootQid, _ := c.tree.Qid(tree.RootPath)
	c.logFields(req).WithField("uname", m.Uname).Debug("attached")
	return c.write(styxproto.Rattach{Tag: req.tag, Qid: rootQid})
}

func (c *Conn) handleSessionMessage(req request, msg styxproto.Msg) error {
	switch m := msg.(type) {
	case styxproto.Twalk:
		qids, err := c.sess.Walk(m.Fid, m.Newfid, m.Wname)
		if err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rwalk{Tag: req.tag, Wqid: qids})
	case styxproto.Topen:
		qid, err := c.sess.Open(m.Fid, m.Mode)
		if err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Ropen{Tag: req.tag, Qid: qid, Iounit: 0})
	case styxproto.Tcreate:
		qid, err := c.sess.Create(m.Fid, m.Name, m.Perm, m.Mode)
		if err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rcreate{Tag: req.tag, Qid: qid, Iounit: 0})
	case styxproto.Tread:
		buf := make([]byte, m.Count)
		n, err := c.sess.Read(m.Fid, m.Offset, buf)
		if err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rread{Tag: req.tag, Data: buf[:n]})
	case styxproto.Twrite:
		n, err := c.sess.Write(m.Fid, m.Offset, m.Data)
		if err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rwrite{Tag: req.tag, Count: uint32(n)})
	case styxproto.Tclunk:
		if err := c.sess.Clunk(m.Fid); err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rclunk{Tag: req.tag})
	case styxproto.Tremove:
		if err := c.sess.Remove(m.Fid); err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rremove{Tag: req.tag})
	case styxproto.Tstat:
		st, err := c.sess.Stat(m.Fid)
		if err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.RstatMsg{Tag: req.tag, Stat: st})
	case styxproto.Twstat:
		if err := c.sess.Wstat(m.Fid, m.Stat); err != nil {
			return c.rerror(req, err.Error())
		}
		return c.write(styxproto.Rwstat{Tag: req.tag})
	default:
		return c.rerror(req, "unexpected message")
	}
}
