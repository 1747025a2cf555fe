package styxproto

import "fmt"

// Type is a 9P2000 message type, carried as the single byte immediately
// following a frame's size field.
type Type uint8

// Message type constants, from the 9P2000 Fcall set. Odd-numbered types
// (xxx+1) are replies to the even-numbered request that precedes them.
// These are named with a msg prefix, distinct from the identically
// named message structs in messages.go (Tversion the struct vs.
// msgTversion the wire type byte) the same way this lineage's own
// styxproto package keeps a proto.Tversion message type distinct from
// its numeric message-type constants.
const (
	msgTversion Type = 100 + iota
	msgRversion
	msgTauth
	msgRauth
	msgTattach
	msgRattach
	_ // 106 unused (Terror in some dialects; 9P2000 has no Terror)
	msgRerror
	msgTflush
	msgRflush
	msgTwalk
	msgRwalk
	msgTopen
	msgRopen
	msgTcreate
	msgRcreate
	msgTread
	msgRread
	msgTwrite
	msgRwrite
	msgTclunk
	msgRclunk
	msgTremove
	msgRremove
	msgTstat
	msgRstat
	msgTwstat
	msgRwstat
)

// Dialect message types recognized as names for documentation but never
// produced or accepted by this codec; 9P2000.u and 9P2000.L are out of
// scope (SPEC_FULL.md Non-goals).
const (
	topenfdU Type = 98
	ropenfdU Type = 99
)

func (t Type) String() string {
	switch t {
	case msgTversion:
		return "Tversion"
	case msgRversion:
		return "Rversion"
	case msgTauth:
		return "Tauth"
	case msgRauth:
		return "Rauth"
	case msgTattach:
		return "Tattach"
	case msgRattach:
		return "Rattach"
	case msgRerror:
		return "Rerror"
	case msgTflush:
		return "Tflush"
	case msgRflush:
		return "Rflush"
	case msgTwalk:
		return "Twalk"
	case msgRwalk:
		return "Rwalk"
	case msgTopen:
		return "Topen"
	case msgRopen:
		return "Ropen"
	case msgTcreate:
		return "Tcreate"
	case msgRcreate:
		return "Rcreate"
	case msgTread:
		return "Tread"
	case msgRread:
		return "Rread"
	case msgTwrite:
		return "Twrite"
	case msgRwrite:
		return "Rwrite"
	case msgTclunk:
		return "Tclunk"
	case msgRclunk:
		return "Rclunk"
	case msgTremove:
		return "Tremove"
	case msgRremove:
		return "Rremove"
	case msgTstat:
		return "Tstat"
	case msgRstat:
		return "Rstat"
	case msgTwstat:
		return "Twstat"
	case msgRwstat:
		return "Rwstat"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// NOTAG is the tag used for a Tversion message, since tags are not yet
// meaningful before version negotiation completes.
const NOTAG uint16 = 0xFFFF

// NOFID is the reserved fid value meaning "no fid"; it is used for the
// afid field of a Tattach that declines authentication.
const NOFID uint32 = 0xFFFFFFFF

// QidType is the high byte of a FileMode, carried verbatim in a Qid's
// type field.
type QidType uint8

const (
	QTDIR    QidType = 0x80 // directories
	QTAPPEND QidType = 0x40 // append-only files
	QTEXCL   QidType = 0x20 // exclusive-use files
	QTAUTH   QidType = 0x08 // authentication file
	QTTMP    QidType = 0x04 // non-backed-up file
	QTFILE   QidType = 0x00
)

// Qid is the server's unique identification for a file: two files on the
// same tree are the same file if and only if their Qids are equal.
type Qid struct {
	Type    QidType
	Version uint32
	Path    uint64
}

func (q Qid) String() string {
	return fmt.Sprintf("(%02x %d %d)", uint8(q.Type), q.Version, q.Path)
}

// IsDir reports whether the Qid identifies a directory.
func (q Qid) IsDir() bool { return q.Type&QTDIR != 0 }

// FileMode is a 32-bit permission and type bitfield. The high byte
// mirrors a Qid's type bits; the low 9 bits are POSIX-style
// owner/group/other read/write/execute bits.
type FileMode uint32

const (
	DMDIR    FileMode = 0x80000000
	DMAPPEND FileMode = 0x40000000
	DMEXCL   FileMode = 0x20000000
	DMAUTH   FileMode = 0x08000000
	DMTMP    FileMode = 0x04000000

	DMOWNER_READ  FileMode = 0400
	DMOWNER_WRITE FileMode = 0200
	DMOWNER_EXEC  FileMode = 0100
	DMGROUP_READ  FileMode = 0040
	DMGROUP_WRITE FileMode = 0020
	DMGROUP_EXEC  FileMode = 0010
	DMOTHER_READ  FileMode = 0004
	DMOTHER_WRITE FileMode = 0002
	DMOTHER_EXEC  FileMode = 0001

	DMPERM FileMode = 0777
)

// NoTouch is the sentinel FileMode/uint32 value of all-ones, meaning
// "leave this field unchanged" in a Twstat request.
const NoTouch = 0xFFFFFFFF

// NoTouch64 is NoTouch widened to 64 bits, for the length field.
const NoTouch64 uint64 = 0xFFFFFFFFFFFFFFFF

// QidType derives the Qid type bits carried by a FileMode.
func (m FileMode) QidType() QidType {
	return QidType(m >> 24)
}

// IsDir reports whether the DMDIR bit is set.
func (m FileMode) IsDir() bool { return m&DMDIR != 0 }

// ReadableFor reports whether user uid may read a node with this mode
// and ownership, per SPEC_FULL.md's permission predicates. Group bits
// are recognized but not enforced (a documented simplification).
func (m FileMode) ReadableFor(uid, owner string) bool {
	if m&DMOTHER_READ != 0 {
		return true
	}
	return m&DMOWNER_READ != 0 && uid == owner
}

// WritableFor reports whether user uid may write a node with this mode
// and ownership.
func (m FileMode) WritableFor(uid, owner string) bool {
	if m&DMOTHER_WRITE != 0 {
		return true
	}
	return m&DMOWNER_WRITE != 0 && uid == owner
}

// OpenMode is the 8-bit open-mode byte carried by Topen/Tcreate.
type OpenMode uint8

const (
	OREAD  OpenMode = 0
	OWRITE OpenMode = 1
	ORDWR  OpenMode = 2
	OEXEC  OpenMode = 3

	modeAccessMask OpenMode = 0x03

	OTRUNC OpenMode = 0x10
	OCLOSE OpenMode = 0x40 // remove on clunk; the bit base 9P2000 calls ORCLOSE
)

// IsReadable reports whether the access-kind bits of m permit reading.
func (m OpenMode) IsReadable() bool {
	a := m & modeAccessMask
	return a == OREAD || a == ORDWR
}

// IsWritable reports whether the access-kind bits of m permit writing.
func (m OpenMode) IsWritable() bool {
	a := m & modeAccessMask
	return a == OWRITE || a == ORDWR
}

// IsTrunc reports whether the OTRUNC bit is set.
func (m OpenMode) IsTrunc() bool { return m&OTRUNC != 0 }

// IsClose reports whether the OCLOSE (remove-on-clunk) bit is set.
func (m OpenMode) IsClose() bool { return m&OCLOSE != 0 }

// Stat is the per-node metadata record. It is wire-encoded with its own
// two-byte size prefix ("Two" mode); when embedded in Twstat or Rstat,
// a second two-byte size precedes it ("DoubleTwo" mode). See
// EncodeStat, DecodeStat, and the Rstat/Twstat encodings in codec.go.
type Stat struct {
	Type   uint16
	Dev    uint32
	Qid    Qid
	Mode   FileMode
	Atime  uint32
	Mtime  uint32
	Length uint64
	Name   string
	Uid    string
	Gid    string
	Muid   string
}
