// Package tree implements the in-memory file tree: a path-keyed map of
// nodes with no pointer-based parent/child links, so the structure can
// never form a reference cycle. It is grounded on this system's Rust
// ancestor (original_source/memfs-sync/src/server/mod.rs's FileTree,
// File and Walker) for exact walk/permission semantics, and on
// mars9-ramfs's fs.go/node.go for the numeric path allocator and the
// parent/children shape translated into Go.
package tree

import (
	"sort"

	"github.com/styxfs/ninefs/styxproto"
)

// RootPath is the path of the tree's root directory. It never changes
// and is never removable.
const RootPath uint64 = 0

// Tree is an in-memory 9P file tree rooted at RootPath. A Tree is not
// safe for concurrent use; SPEC_FULL.md section 5 scopes this server
// to a single client with a fully serialized dispatcher, so the tree
// itself carries no locking.
type Tree struct {
	nodes    map[uint64]*node
	lastPath uint64
	clock    Clock
}

// New builds a Tree containing only its root directory, owned by uid.
func New(uid string, clock Clock) *Tree {
	if clock == nil {
		clock = SystemClock
	}
	now := uint32(clock.Now().Unix())
	root := &node{
		path:     RootPath,
		name:     "/",
		mode:     styxproto.DMDIR | 0775,
		atime:    now,
		mtime:    now,
		uid:      uid,
		gid:      "none",
		muid:     uid,
		parent:   RootPath,
		children: map[uint64]struct{}{},
	}
	t := &Tree{
		nodes:    map[uint64]*node{RootPath: root},
		lastPath: RootPath,
		clock:    clock,
	}
	return t
}

func (t *Tree) node(path uint64) (*node, bool) {
	n, ok := t.nodes[path]
	return n, ok
}

func (t *Tree) findChild(parent *node, name string) (*node, bool) {
	for p := range parent.children {
		if c, ok := t.nodes[p]; ok && c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (t *Tree) allocPath() (uint64, error) {
	next := t.lastPath + 1
	if next == RootPath {
		return 0, ErrMaxPathReached
	}
	t.lastPath = next
	return next, nil
}

func (t *Tree) now() uint32 { return uint32(t.clock.Now().Unix()) }

// setMuid stamps n's last-writer field directly, bypassing Wstat's
// validated-field path. Open/Write/Create are the only callers; this
// keeps the two ways a node's muid can change syntactically separate,
// so a future change to Wstat's field handling cannot accidentally
// start accepting a client-supplied muid (SPEC_FULL.md section 9).
func (t *Tree) setMuid(n *node, user string) {
	n.muid = user
	n.mtime = t.now()
}

// Qid returns the Qid of the node at path.
func (t *Tree) Qid(path uint64) (styxproto.Qid, bool) {
	n, ok := t.node(path)
	if !ok {
		return styxproto.Qid{}, false
	}
	return n.qid(), true
}

// Stat returns the Stat of the node at path.
func (t *Tree) Stat(path uint64) (styxproto.Stat, bool) {
	n, ok := t.node(path)
	if !ok {
		return styxproto.Stat{}, false
	}
	return n.stat(), true
}

// WalkFrom walks names in sequence starting at path, stopping at the
// first name that does not resolve (not found, or an intermediate
// step lands on a non-directory). It returns the Qids of every step
// that succeeded, which may be fewer than len(names); the caller
// decides whether a short walk is an error (SPEC_FULL.md section 4.2).
func (t *Tree) WalkFrom(path uint64, names []string) []styxproto.Qid {
	qids := make([]styxproto.Qid, 0, len(names))
	cur, ok := t.node(path)
	if !ok {
		return qids
	}
	for _, name := range names {
		if !cur.isDir() {
			break
		}
		if name == ".." {
			parent, ok := t.node(cur.parent)
			if !ok {
				break
			}
			cur = parent
			qids = append(qids, cur.qid())
			continue
		}
		child, ok := t.findChild(cur, name)
		if !ok {
			break
		}
		cur = child
		qids = append(qids, cur.qid())
	}
	return qids
}

// Open validates that user may open the node at path with mode,
// applying truncation if requested. It does not track per-fid open
// state; that is session's job (SPEC_FULL.md section 4.3).
func (t *Tree) Open(path uint64, user string, mode styxproto.OpenMode) error {
	n, ok := t.node(path)
	if !ok {
		return ErrNoSuchFile
	}
	if n.isDir() {
		if mode.IsWritable() {
			return ErrWriteOnDir
		}
		if mode.IsTrunc() {
			return ErrTruncateOnDir
		}
		if mode.IsClose() {
			return ErrCloseOnDir
		}
		if mode.IsReadable() && !n.readableFor(user) {
			return ErrPermission
		}
		return nil
	}
	if mode.IsReadable() && !n.readableFor(user) {
		return ErrPermission
	}
	if mode.IsWritable() && !n.writableFor(user) {
		return ErrPermission
	}
	if mode.IsTrunc() {
		if !n.writableFor(user) {
			return ErrPermission
		}
		n.content = []byte{}
		t.setMuid(n, user)
		n.version++
		if parent, ok := t.node(n.parent); ok {
			parent.content = nil
		}
	}
	return nil
}

// Create adds a new child named name under parentPath, owned by user
// with the given permission bits, and returns its path. perm's DMDIR
// bit decides whether the new node is a directory.
func (t *Tree) Create(parentPath uint64, user, name string, perm styxproto.FileMode, mode styxproto.OpenMode) (uint64, error) {
	parent, ok := t.node(parentPath)
	if !ok {
		return 0, ErrNoSuchFile
	}
	if !parent.isDir() {
		return 0, ErrNotDir
	}
	if !parent.writableFor(user) {
		return 0, ErrPermission
	}
	if len(name) > styxproto.MaxFilenameLen {
		return 0, ErrNameTooLong
	}
	if _, exists := t.findChild(parent, name); exists {
		return 0, ErrNameExists
	}
	path, err := t.allocPath()
	if err != nil {
		return 0, err
	}
	now := t.now()
	child := &node{
		path:     path,
		name:     name,
		mode:     perm,
		atime:    now,
		mtime:    now,
		uid:      user,
		gid:      parent.gid,
		parent:   parentPath,
		children: map[uint64]struct{}{},
	}
	if !child.isDir() {
		child.content = []byte{}
	}
	t.setMuid(child, user)
	t.nodes[path] = child
	parent.children[path] = struct{}{}
	parent.content = nil
	return path, nil
}

// Read copies up to len(buf) bytes starting at offset from the node
// at path into buf, and returns the number of bytes copied. Reading a
// directory returns its child Stats concatenated in the standalone
// ("Two") encoding, rebuilding the cache if it is stale.
func (t *Tree) Read(path uint64, offset uint64, buf []byte) (int, error) {
	n, ok := t.node(path)
	if !ok {
		return 0, ErrNoSuchFile
	}
	n.atime = t.now()
	if n.isDir() {
		if n.content == nil {
			listing, err := t.buildListing(n)
			if err != nil {
				return 0, err
			}
			n.content = listing
		}
		return copyAt(n.content, offset, buf), nil
	}
	return copyAt(n.content, offset, buf), nil
}

func copyAt(content []byte, offset uint64, buf []byte) int {
	if offset >= uint64(len(content)) {
		return 0
	}
	return copy(buf, content[offset:])
}

func (t *Tree) buildListing(dir *node) ([]byte, error) {
	paths := make([]uint64, 0, len(dir.children))
	for p := range dir.children {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	listing := make([]byte, 0, len(paths)*64)
	for _, p := range paths {
		child, ok := t.nodes[p]
		if !ok {
			continue
		}
		encoded, err := styxproto.EncodeStat(child.stat())
		if err != nil {
			return nil, err
		}
		listing = append(listing, encoded...)
	}
	return listing, nil
}

// maxFileSize bounds how large Write will grow a file's content, so a
// client-supplied offset can never overflow the needed-length
// arithmetic below or force an absurd allocation.
const maxFileSize = 1 << 34 // 16 GiB

// Write writes data at offset into the file at path, growing it if
// necessary, and returns the number of bytes written.
func (t *Tree) Write(path uint64, user string, offset uint64, data []byte) (int, error) {
	n, ok := t.node(path)
	if !ok {
		return 0, ErrNoSuchFile
	}
	if n.isDir() {
		return 0, ErrWriteOnDir
	}
	if !n.writableFor(user) {
		return 0, ErrPermission
	}
	if offset > maxFileSize || uint64(len(data)) > maxFileSize-offset {
		return 0, ErrOffsetTooLarge
	}
	needed := offset + uint64(len(data))
	if needed > uint64(len(n.content)) {
		grown := make([]byte, needed)
		copy(grown, n.content)
		n.content = grown
	}
	copy(n.content[offset:], data)
	t.setMuid(n, user)
	n.version++
	if parent, ok := t.node(n.parent); ok {
		parent.content = nil
	}
	return len(data), nil
}

// noTouchU16/U32/U64 report whether a Twstat field carries the "don't
// touch" sentinel, per the Plan 9 wstat(5) convention droyo-styx's own
// wstat.go quotes in its doc comment.
func noTouchU16(v uint16) bool { return v == 0xFFFF }
func noTouchU32(v uint32) bool { return v == styxproto.NoTouch }
func noTouchU64(v uint64) bool { return v == styxproto.NoTouch64 }
func noTouchStr(s string) bool { return s == "" }
func noTouchQid(q styxproto.Qid) bool {
	return uint8(q.Type) == 0xFF && q.Version == styxproto.NoTouch && q.Path == styxproto.NoTouch64
}

// Wstat applies newStat's "don't touch"-filtered fields to the node at
// path, validating every field against a scratch copy before
// committing any of them — an all-or-nothing update (SPEC_FULL.md
// section 9, resolving its five Open Questions).
func (t *Tree) Wstat(path uint64, user string, newStat styxproto.Stat) error {
	n, ok := t.node(path)
	if !ok {
		return ErrNoSuchFile
	}

	// Fields that may never change: an explicit, differing value is
	// rejected; the sentinel or the current value is a silent no-op.
	if !noTouchU16(newStat.Type) && newStat.Type != 0 {
		return ErrCannotChange
	}
	if !noTouchU32(newStat.Dev) && newStat.Dev != 0 {
		return ErrCannotChange
	}
	if !noTouchQid(newStat.Qid) && newStat.Qid != n.qid() {
		return ErrCannotChange
	}
	if !noTouchU32(newStat.Atime) && newStat.Atime != n.atime {
		return ErrCannotChange
	}
	if !noTouchStr(newStat.Uid) && newStat.Uid != n.uid {
		return ErrCannotChange
	}
	if !noTouchStr(newStat.Muid) && newStat.Muid != n.muid {
		return ErrCannotChange
	}

	scratch := *n
	changed := false
	var resizedContent []byte
	lengthChanged := false

	if !noTouchU32(uint32(newStat.Mode)) {
		if n.uid != user {
			return ErrPermission
		}
		if newStat.Mode.IsDir() != n.isDir() {
			return ErrCannotFlipDir
		}
		scratch.mode = newStat.Mode
		changed = true
	}

	if !noTouchU32(newStat.Mtime) {
		if !n.writableFor(user) {
			return ErrPermission
		}
		scratch.mtime = newStat.Mtime
		changed = true
	}

	if !noTouchU64(newStat.Length) {
		if n.isDir() {
			if newStat.Length != 0 {
				return ErrCannotSetLen
			}
		} else {
			if !n.writableFor(user) {
				return ErrPermission
			}
			resizedContent = resizeBytes(n.content, newStat.Length)
			lengthChanged = true
			changed = true
		}
	}

	if !noTouchStr(newStat.Name) && newStat.Name != n.name {
		parent, ok := t.node(n.parent)
		if !ok {
			return ErrNoSuchFile
		}
		if _, exists := t.findChild(parent, newStat.Name); exists {
			return ErrNameExists
		}
		if len(newStat.Name) > styxproto.MaxFilenameLen {
			return ErrNameTooLong
		}
		scratch.name = newStat.Name
		changed = true
	}

	if !noTouchStr(newStat.Gid) && newStat.Gid != n.gid {
		return ErrGidNotMember
	}

	if !changed {
		return nil
	}

	*n = scratch
	if lengthChanged {
		n.content = resizedContent
	}
	n.version++
	if parent, ok := t.node(n.parent); ok {
		parent.content = nil
	}
	return nil
}

func resizeBytes(content []byte, length uint64) []byte {
	out := make([]byte, length)
	copy(out, content)
	return out
}

// Remove deletes the node at path, whose parent directory must be
// writable by user and which, if a directory, must be empty (SPEC_FULL.md
// section 9 resolves the Open Question of whether Tremove checks
// permission: it does, against the parent, matching mars9-ramfs's own
// unlink convention).
func (t *Tree) Remove(path uint64, user string) error {
	if path == RootPath {
		return ErrPermission
	}
	n, ok := t.node(path)
	if !ok {
		return ErrNoSuchFile
	}
	parent, ok := t.node(n.parent)
	if !ok {
		return ErrNoSuchFile
	}
	if !parent.writableFor(user) {
		return ErrPermission
	}
	if n.isDir() && len(n.children) > 0 {
		return ErrDirNotEmpty
	}
	delete(parent.children, path)
	delete(t.nodes, path)
	parent.content = nil
	return nil
}
