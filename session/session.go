// Package session implements the fid state machine: the mapping from
// a connection's client-chosen fids to tree nodes and per-fid open
// state. It is grounded on this system's Rust ancestor
// (original_source's Session/FileHandle/OpenView) for semantics, and
// on mars9-ramfs's fid.go for the Go shape of a per-handle type with
// Walk/Open/Create/Read/Write/Close methods — simplified down from
// that file's reference-counted, mutex-guarded Fid (built for
// multiple concurrent clients sharing one tree) to a single owner's
// plain map, since this design serves one client at a time
// (SPEC_FULL.md section 5).
package session

import (
	"github.com/styxfs/ninefs/styxproto"
	"github.com/styxfs/ninefs/tree"
)

// OpenView is the open state attached to a fid once Topen or Tcreate
// has succeeded on it.
type OpenView struct {
	Mode       styxproto.OpenMode
	LastOffset uint64
}

// FileHandle binds one client-chosen fid to a node path, with an
// OpenView once opened.
type FileHandle struct {
	Path uint64
	View *OpenView
}

// Session holds one connection's fids, the tree they operate on, and
// the attached user name. A Session is not safe for concurrent use;
// the dispatcher that owns it serializes every call (SPEC_FULL.md
// section 4.4).
type Session struct {
	fids  map[uint32]*FileHandle
	tree  *tree.Tree
	Uname string
}

// New creates a Session bound to t for the attaching user uname, with
// fid rootFid bound to the tree's root.
func New(t *tree.Tree, uname string, rootFid uint32) *Session {
	s := &Session{
		fids:  map[uint32]*FileHandle{},
		tree:  t,
		Uname: uname,
	}
	s.fids[rootFid] = &FileHandle{Path: tree.RootPath}
	return s
}

// Tree returns the session's underlying tree, for the dispatcher to
// hand off to the listener on disconnect.
func (s *Session) Tree() *tree.Tree { return s.tree }

func (s *Session) handle(fid uint32) (*FileHandle, error) {
	h, ok := s.fids[fid]
	if !ok {
		return nil, ErrUnknownFid
	}
	return h, nil
}

// Walk resolves names from fid's current node and, on a full-length
// success (or a zero-length clone), binds newfid to the resulting
// node. A partial walk returns the qid prefix without touching
// newfid's binding — including when newfid == fid, per SPEC_FULL.md
// section 9's resolution of the aliased-walk Open Question.
func (s *Session) Walk(fid, newfid uint32, names []string) ([]styxproto.Qid, error) {
	h, err := s.handle(fid)
	if err != nil {
		return nil, err
	}
	qids := s.tree.WalkFrom(h.Path, names)
	if len(qids) != len(names) {
		return qids, nil
	}
	endPath := h.Path
	if len(names) > 0 {
		endQid := qids[len(qids)-1]
		endPath = endQid.Path
	}
	s.fids[newfid] = &FileHandle{Path: endPath}
	return qids, nil
}

// Open validates and opens fid with mode, requiring it not already be
// open.
func (s *Session) Open(fid uint32, mode styxproto.OpenMode) (styxproto.Qid, error) {
	h, err := s.handle(fid)
	if err != nil {
		return styxproto.Qid{}, err
	}
	if h.View != nil {
		return styxproto.Qid{}, ErrFidAlreadyOpen
	}
	if err := s.tree.Open(h.Path, s.Uname, mode); err != nil {
		return styxproto.Qid{}, err
	}
	h.View = &OpenView{Mode: mode}
	qid, _ := s.tree.Qid(h.Path)
	return qid, nil
}

// Create creates a new node named name under fid's directory, rebinds
// fid to it, and opens it with mode.
func (s *Session) Create(fid uint32, name string, perm styxproto.FileMode, mode styxproto.OpenMode) (styxproto.Qid, error) {
	h, err := s.handle(fid)
	if err != nil {
		return styxproto.Qid{}, err
	}
	if h.View != nil {
		return styxproto.Qid{}, ErrFidAlreadyOpen
	}
	path, err := s.tree.Create(h.Path, s.Uname, name, perm, mode)
	if err != nil {
		return styxproto.Qid{}, err
	}
	h.Path = path
	h.View = &OpenView{Mode: mode}
	qid, _ := s.tree.Qid(path)
	return qid, nil
}

// Read reads up to len(buf) bytes from fid's node at an offset
// policed, for directories, by the handle's last read offset.
func (s *Session) Read(fid uint32, offset uint64, buf []byte) (int, error) {
	h, err := s.handle(fid)
	if err != nil {
		return 0, err
	}
	if h.View == nil {
		return 0, ErrFidNotOpen
	}
	if qid, ok := s.tree.Qid(h.Path); ok && qid.IsDir() {
		if offset != 0 && offset != h.View.LastOffset {
			return 0, ErrBadDirOffset
		}
	}
	n, err := s.tree.Read(h.Path, offset, buf)
	if err != nil {
		return 0, err
	}
	h.View.LastOffset = offset + uint64(n)
	return n, nil
}

// Write writes data at offset into fid's node.
func (s *Session) Write(fid uint32, offset uint64, data []byte) (int, error) {
	h, err := s.handle(fid)
	if err != nil {
		return 0, err
	}
	if h.View == nil {
		return 0, ErrFidNotOpen
	}
	if !h.View.Mode.IsWritable() {
		return 0, ErrFidNotWritable
	}
	return s.tree.Write(h.Path, s.Uname, offset, data)
}

// Clunk releases fid. If it was opened with OCLOSE, the node is also
// removed from the tree; a permission failure on that implicit
// removal is ignored, matching Remove's always-clunk contract
// (SPEC_FULL.md section 4.3).
func (s *Session) Clunk(fid uint32) error {
	h, err := s.handle(fid)
	if err != nil {
		return err
	}
	delete(s.fids, fid)
	if h.View != nil && h.View.Mode.IsClose() {
		_ = s.tree.Remove(h.Path, s.Uname)
	}
	return nil
}

// Remove removes fid's node from the tree and unconditionally clunks
// the fid, even when the tree-level removal is rejected — the client
// still loses the fid, but the permission failure (if any) is what's
// reported back.
func (s *Session) Remove(fid uint32) error {
	h, err := s.handle(fid)
	if err != nil {
		return err
	}
	delete(s.fids, fid)
	return s.tree.Remove(h.Path, s.Uname)
}

// Stat returns the Stat of fid's node.
func (s *Session) Stat(fid uint32) (styxproto.Stat, error) {
	h, err := s.handle(fid)
	if err != nil {
		return styxproto.Stat{}, err
	}
	st, ok := s.tree.Stat(h.Path)
	if !ok {
		return styxproto.Stat{}, tree.ErrNoSuchFile
	}
	return st, nil
}

// Wstat applies newStat to fid's node.
func (s *Session) Wstat(fid uint32, newStat styxproto.Stat) error {
	h, err := s.handle(fid)
	if err != nil {
		return err
	}
	return s.tree.Wstat(h.Path, s.Uname, newStat)
}
