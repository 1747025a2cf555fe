package styxproto

// Msg is implemented by every decoded message type. The message type
// byte is not carried on the Go value (it is implicit in which
// concrete type is used, and is supplied separately by Decode's caller
// and consumed separately by Encode's caller) — only the tag, common to
// every message, is exposed here.
type Msg interface {
	GetTag() uint16
}

type Tversion struct {
	Tag     uint16
	Msize   uint32
	Version string
}

func (m Tversion) GetTag() uint16 { return m.Tag }

type Rversion struct {
	Tag     uint16
	Msize   uint32
	Version string
}

func (m Rversion) GetTag() uint16 { return m.Tag }

type Tauth struct {
	Tag   uint16
	Afid  uint32
	Uname string
	Aname string
}

func (m Tauth) GetTag() uint16 { return m.Tag }

type Rauth struct {
	Tag  uint16
	Aqid Qid
}

func (m Rauth) GetTag() uint16 { return m.Tag }

type Tattach struct {
	Tag   uint16
	Fid   uint32
	Afid  uint32
	Uname string
	Aname string
}

func (m Tattach) GetTag() uint16 { return m.Tag }

type Rattach struct {
	Tag uint16
	Qid Qid
}

func (m Rattach) GetTag() uint16 { return m.Tag }

type RerrorMsg struct {
	Tag   uint16
	Ename string
}

func (m RerrorMsg) GetTag() uint16 { return m.Tag }

type Tflush struct {
	Tag    uint16
	Oldtag uint16
}

func (m Tflush) GetTag() uint16 { return m.Tag }

type Rflush struct {
	Tag uint16
}

func (m Rflush) GetTag() uint16 { return m.Tag }

type Twalk struct {
	Tag    uint16
	Fid    uint32
	Newfid uint32
	Wname  []string
}

func (m Twalk) GetTag() uint16 { return m.Tag }

type Rwalk struct {
	Tag  uint16
	Wqid []Qid
}

func (m Rwalk) GetTag() uint16 { return m.Tag }

type Topen struct {
	Tag  uint16
	Fid  uint32
	Mode OpenMode
}

func (m Topen) GetTag() uint16 { return m.Tag }

type Ropen struct {
	Tag    uint16
	Qid    Qid
	Iounit uint32
}

func (m Ropen) GetTag() uint16 { return m.Tag }

type Tcreate struct {
	Tag  uint16
	Fid  uint32
	Name string
	Perm FileMode
	Mode OpenMode
}

func (m Tcreate) GetTag() uint16 { return m.Tag }

type Rcreate struct {
	Tag    uint16
	Qid    Qid
	Iounit uint32
}

func (m Rcreate) GetTag() uint16 { return m.Tag }

type Tread struct {
	Tag    uint16
	Fid    uint32
	Offset uint64
	Count  uint32
}

func (m Tread) GetTag() uint16 { return m.Tag }

type Rread struct {
	Tag  uint16
	Data []byte
}

func (m Rread) GetTag() uint16 { return m.Tag }

type Twrite struct {
	Tag    uint16
	Fid    uint32
	Offset uint64
	Data   []byte
}

func (m Twrite) GetTag() uint16 { return m.Tag }

type Rwrite struct {
	Tag   uint16
	Count uint32
}

func (m Rwrite) GetTag() uint16 { return m.Tag }

type Tclunk struct {
	Tag uint16
	Fid uint32
}

func (m Tclunk) GetTag() uint16 { return m.Tag }

type Rclunk struct {
	Tag uint16
}

func (m Rclunk) GetTag() uint16 { return m.Tag }

type Tremove struct {
	Tag uint16
	Fid uint32
}

func (m Tremove) GetTag() uint16 { return m.Tag }

type Rremove struct {
	Tag uint16
}

func (m Rremove) GetTag() uint16 { return m.Tag }

type Tstat struct {
	Tag uint16
	Fid uint32
}

func (m Tstat) GetTag() uint16 { return m.Tag }

type RstatMsg struct {
	Tag  uint16
	Stat Stat
}

func (m RstatMsg) GetTag() uint16 { return m.Tag }

type Twstat struct {
	Tag  uint16
	Fid  uint32
	Stat Stat
}

func (m Twstat) GetTag() uint16 { return m.Tag }

type Rwstat struct {
	Tag uint16
}

func (m Rwstat) GetTag() uint16 { return m.Tag }
