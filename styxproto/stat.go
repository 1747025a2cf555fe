package styxproto

// EncodeStat serializes a Stat in "Two" mode: its own u16 size prefix,
// where size counts everything that follows the size field itself.
//
// There is no constructor for Stat in this lineage's own source that
// this implementation could follow byte-for-byte (droyo-styx's
// request.go and internal/qidpool reference a styxproto.NewStat that
// is not defined anywhere in that package); this encoding is instead
// derived directly from the wire layout description and from the
// "DoubleTwo" embedding confirmed by that lineage's Rstat/Twstat
// encoders, which wrap an already-self-prefixed Stat in one more
// length-prefixed block (see the RstatMsg and Twstat cases of Encode
// in codec.go).
func EncodeStat(s Stat) ([]byte, error) {
	var body writer
	body.puint16(s.Type)
	body.puint32(s.Dev)
	body.pqid(s.Qid)
	body.puint32(uint32(s.Mode))
	body.puint32(s.Atime)
	body.puint32(s.Mtime)
	body.puint64(s.Length)
	body.pstring(s.Name)
	body.pstring(s.Uid)
	body.pstring(s.Gid)
	body.pstring(s.Muid)
	raw, err := body.bytes()
	if err != nil {
		return nil, err
	}

	var out writer
	out.pblock(raw)
	return out.bytes()
}

// DecodeStat parses a "Two" mode Stat (its own u16 size prefix followed
// by that many bytes) from the front of b, and returns the number of
// bytes consumed.
func DecodeStat(b []byte) (Stat, int, error) {
	r := newReader(b)
	raw := r.gblock()
	if r.err != nil {
		return Stat{}, 0, r.err
	}
	consumed := r.pos

	sr := newReader(raw)
	var s Stat
	s.Type = sr.guint16()
	s.Dev = sr.guint32()
	s.Qid = sr.gqid()
	s.Mode = FileMode(sr.guint32())
	s.Atime = sr.guint32()
	s.Mtime = sr.guint32()
	s.Length = sr.guint64()
	s.Name = sr.gstring()
	s.Uid = sr.gstring()
	s.Gid = sr.gstring()
	s.Muid = sr.gstring()
	if err := sr.done(); err != nil {
		return Stat{}, 0, errShortStat
	}
	return s, consumed, nil
}
