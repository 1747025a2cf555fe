package tree

import "github.com/styxfs/ninefs/styxproto"

// node is a single file or directory in the tree, keyed by its path in
// the owning Tree's node map. Parent and child links are stored as
// path values, not pointers, so the tree can never form a reference
// cycle regardless of how it is mutated (SPEC_FULL.md section 9,
// "Cyclic ownership").
type node struct {
	path    uint64
	name    string
	mode    styxproto.FileMode
	version uint32
	atime   uint32
	mtime   uint32
	uid     string
	gid     string
	muid    string

	parent   uint64
	children map[uint64]struct{}

	// content holds a file's bytes, or — for a directory — the cached
	// serialized listing of its children's Stats. A nil content means
	// "no cached listing, rebuild on next read"; a non-nil, possibly
	// zero-length slice is a valid cache (an empty directory's listing
	// is legitimately zero bytes). Go's nil/non-nil distinction on a
	// slice gives this for free, where a language without that
	// distinction needs a separate validity flag.
	content []byte
}

func (n *node) isDir() bool { return n.mode.IsDir() }

func (n *node) length() uint64 {
	if n.isDir() {
		return 0
	}
	return uint64(len(n.content))
}

func (n *node) qid() styxproto.Qid {
	return styxproto.Qid{
		Type:    n.mode.QidType(),
		Version: n.version,
		Path:    n.path,
	}
}

func (n *node) stat() styxproto.Stat {
	return styxproto.Stat{
		Type:   0,
		Dev:    0,
		Qid:    n.qid(),
		Mode:   n.mode,
		Atime:  n.atime,
		Mtime:  n.mtime,
		Length: n.length(),
		Name:   n.name,
		Uid:    n.uid,
		Gid:    n.gid,
		Muid:   n.muid,
	}
}

func (n *node) readableFor(uid string) bool { return n.mode.ReadableFor(uid, n.uid) }
func (n *node) writableFor(uid string) bool { return n.mode.WritableFor(uid, n.uid) }
