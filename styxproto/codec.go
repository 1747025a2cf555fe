package styxproto

import "fmt"

// TypeOf returns the wire type byte for a decoded or about-to-be-encoded
// message value. It is the dual of Decode: Decode(TypeOf(m), body) for
// an encoded body of m recovers an equivalent value.
func TypeOf(m Msg) (Type, error) {
	switch m.(type) {
	case Tversion:
		return msgTversion, nil
	case Rversion:
		return msgRversion, nil
	case Tauth:
		return msgTauth, nil
	case Rauth:
		return msgRauth, nil
	case Tattach:
		return msgTattach, nil
	case Rattach:
		return msgRattach, nil
	case RerrorMsg:
		return msgRerror, nil
	case Tflush:
		return msgTflush, nil
	case Rflush:
		return msgRflush, nil
	case Twalk:
		return msgTwalk, nil
	case Rwalk:
		return msgRwalk, nil
	case Topen:
		return msgTopen, nil
	case Ropen:
		return msgRopen, nil
	case Tcreate:
		return msgTcreate, nil
	case Rcreate:
		return msgRcreate, nil
	case Tread:
		return msgTread, nil
	case Rread:
		return msgRread, nil
	case Twrite:
		return msgTwrite, nil
	case Rwrite:
		return msgRwrite, nil
	case Tclunk:
		return msgTclunk, nil
	case Rclunk:
		return msgRclunk, nil
	case Tremove:
		return msgTremove, nil
	case Rremove:
		return msgRremove, nil
	case Tstat:
		return msgTstat, nil
	case RstatMsg:
		return msgRstat, nil
	case Twstat:
		return msgTwstat, nil
	case Rwstat:
		return msgRwstat, nil
	default:
		return 0, fmt.Errorf("styxproto: unrecognized message value %T", m)
	}
}

// Encode serializes a message to its wire body: the tag followed by
// the message's own fields, in declaration order. It does not include
// the frame envelope (size and type byte); the caller prepends those
// (see SPEC_FULL.md section 4.1).
func Encode(m Msg) ([]byte, error) {
	var w writer
	switch msg := m.(type) {
	case Tversion:
		w.puint16(msg.Tag)
		w.puint32(msg.Msize)
		w.pstring(msg.Version)
	case Rversion:
		w.puint16(msg.Tag)
		w.puint32(msg.Msize)
		w.pstring(msg.Version)
	case Tauth:
		w.puint16(msg.Tag)
		w.puint32(msg.Afid)
		w.pstring(msg.Uname)
		w.pstring(msg.Aname)
	case Rauth:
		w.puint16(msg.Tag)
		w.pqid(msg.Aqid)
	case Tattach:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		w.puint32(msg.Afid)
		w.pstring(msg.Uname)
		w.pstring(msg.Aname)
	case Rattach:
		w.puint16(msg.Tag)
		w.pqid(msg.Qid)
	case RerrorMsg:
		w.puint16(msg.Tag)
		w.pstring(msg.Ename)
	case Tflush:
		w.puint16(msg.Tag)
		w.puint16(msg.Oldtag)
	case Rflush:
		w.puint16(msg.Tag)
	case Twalk:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		w.puint32(msg.Newfid)
		w.pstringSeq(msg.Wname)
	case Rwalk:
		w.puint16(msg.Tag)
		w.pqidSeq(msg.Wqid)
	case Topen:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		w.puint8(uint8(msg.Mode))
	case Ropen:
		w.puint16(msg.Tag)
		w.pqid(msg.Qid)
		w.puint32(msg.Iounit)
	case Tcreate:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		w.pstring(msg.Name)
		w.puint32(uint32(msg.Perm))
		w.puint8(uint8(msg.Mode))
	case Rcreate:
		w.puint16(msg.Tag)
		w.pqid(msg.Qid)
		w.puint32(msg.Iounit)
	case Tread:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		w.puint64(msg.Offset)
		w.puint32(msg.Count)
	case Rread:
		w.puint16(msg.Tag)
		w.pbytes(msg.Data)
	case Twrite:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		w.puint64(msg.Offset)
		w.pbytes(msg.Data)
	case Rwrite:
		w.puint16(msg.Tag)
		w.puint32(msg.Count)
	case Tclunk:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
	case Rclunk:
		w.puint16(msg.Tag)
	case Tremove:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
	case Rremove:
		w.puint16(msg.Tag)
	case Tstat:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
	case RstatMsg:
		w.puint16(msg.Tag)
		stat, err := EncodeStat(msg.Stat)
		if err != nil {
			return nil, err
		}
		w.pblock(stat)
	case Twstat:
		w.puint16(msg.Tag)
		w.puint32(msg.Fid)
		stat, err := EncodeStat(msg.Stat)
		if err != nil {
			return nil, err
		}
		w.pblock(stat)
	case Rwstat:
		w.puint16(msg.Tag)
	default:
		return nil, fmt.Errorf("styxproto: unrecognized message value %T", m)
	}
	return w.bytes()
}

// Size reports the encoded body length of m. It encodes m in full with
// Encode and returns the length of the result, so it allocates the
// encoded form; it is not a separate counting pass. Nothing in this
// module calls it before writing: Encoder.WriteMsg and the server do
// not check outgoing messages against the negotiated msize.
func Size(m Msg) (int, error) {
	b, err := Encode(m)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Decode parses a message body (everything following a frame's size
// and type fields) given the wire type byte that preceded it.
func Decode(t Type, body []byte) (Msg, error) {
	r := newReader(body)
	tag := r.guint16()
	var m Msg
	switch t {
	case msgTversion:
		m = Tversion{Tag: tag, Msize: r.guint32(), Version: r.gstring()}
	case msgRversion:
		m = Rversion{Tag: tag, Msize: r.guint32(), Version: r.gstring()}
	case msgTauth:
		m = Tauth{Tag: tag, Afid: r.guint32(), Uname: r.gstring(), Aname: r.gstring()}
	case msgRauth:
		m = Rauth{Tag: tag, Aqid: r.gqid()}
	case msgTattach:
		m = Tattach{Tag: tag, Fid: r.guint32(), Afid: r.guint32(), Uname: r.gstring(), Aname: r.gstring()}
	case msgRattach:
		m = Rattach{Tag: tag, Qid: r.gqid()}
	case msgRerror:
		m = RerrorMsg{Tag: tag, Ename: r.gstring()}
	case msgTflush:
		m = Tflush{Tag: tag, Oldtag: r.guint16()}
	case msgRflush:
		m = Rflush{Tag: tag}
	case msgTwalk:
		m = Twalk{Tag: tag, Fid: r.guint32(), Newfid: r.guint32(), Wname: r.gstringSeq()}
	case msgRwalk:
		m = Rwalk{Tag: tag, Wqid: r.gqidSeq()}
	case msgTopen:
		m = Topen{Tag: tag, Fid: r.guint32(), Mode: OpenMode(r.guint8())}
	case msgRopen:
		m = Ropen{Tag: tag, Qid: r.gqid(), Iounit: r.guint32()}
	case msgTcreate:
		fid := r.guint32()
		name := r.gstring()
		perm := FileMode(r.guint32())
		mode := OpenMode(r.guint8())
		m = Tcreate{Tag: tag, Fid: fid, Name: name, Perm: perm, Mode: mode}
	case msgRcreate:
		m = Rcreate{Tag: tag, Qid: r.gqid(), Iounit: r.guint32()}
	case msgTread:
		m = Tread{Tag: tag, Fid: r.guint32(), Offset: r.guint64(), Count: r.guint32()}
	case msgRread:
		m = Rread{Tag: tag, Data: r.gbytes()}
	case msgTwrite:
		fid := r.guint32()
		offset := r.guint64()
		data := r.gbytes()
		m = Twrite{Tag: tag, Fid: fid, Offset: offset, Data: data}
	case msgRwrite:
		m = Rwrite{Tag: tag, Count: r.guint32()}
	case msgTclunk:
		m = Tclunk{Tag: tag, Fid: r.guint32()}
	case msgRclunk:
		m = Rclunk{Tag: tag}
	case msgTremove:
		m = Tremove{Tag: tag, Fid: r.guint32()}
	case msgRremove:
		m = Rremove{Tag: tag}
	case msgTstat:
		m = Tstat{Tag: tag, Fid: r.guint32()}
	case msgRstat:
		blk := r.gblock()
		if r.err != nil {
			return nil, r.err
		}
		stat, _, err := DecodeStat(blk)
		if err != nil {
			return nil, err
		}
		m = RstatMsg{Tag: tag, Stat: stat}
	case msgTwstat:
		fid := r.guint32()
		blk := r.gblock()
		if r.err != nil {
			return nil, r.err
		}
		stat, _, err := DecodeStat(blk)
		if err != nil {
			return nil, err
		}
		m = Twstat{Tag: tag, Fid: fid, Stat: stat}
	case msgRwstat:
		m = Rwstat{Tag: tag}
	default:
		return nil, &UnknownTypeError{Tag: tag, Type: t}
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}
