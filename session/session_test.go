package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styxfs/ninefs/styxproto"
	"github.com/styxfs/ninefs/tree"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestSession(uname string) *Session {
	t := tree.New(uname, fixedClock{t: time.Unix(1_700_000_000, 0)})
	return New(t, uname, 0)
}

func TestWalkCloneOnEmptyNames(t *testing.T) {
	s := newTestSession("glenda")
	qids, err := s.Walk(0, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, qids)

	h, err := s.handle(1)
	require.NoError(t, err)
	assert.Equal(t, tree.RootPath, h.Path)
}

func TestWalkPartialDoesNotBindNewfid(t *testing.T) {
	s := newTestSession("glenda")
	_, err := s.Walk(0, 1, []string{"missing"})
	require.NoError(t, err)

	_, err = s.handle(1)
	assert.Equal(t, ErrUnknownFid, err)
}

func TestWalkSelfAliasOnlyRebindsOnFullSuccess(t *testing.T) {
	s := newTestSession("glenda")
	qid, err := s.Create(0, "adir", styxproto.DMDIR|0755, 0)
	require.NoError(t, err)
	_ = qid

	// fid 0 now points at "adir" via Create's rebind; walk ".." with
	// fid==newfid partially failing must not disturb fid 0's binding.
	_, err = s.Walk(0, 0, []string{"..", "nonexistent"})
	require.NoError(t, err)
	h, _ := s.handle(0)
	assert.NotEqual(t, tree.RootPath, h.Path, "partial self-aliased walk must leave original binding untouched")
}

func TestOpenRequiresUnopenedFid(t *testing.T) {
	s := newTestSession("glenda")
	_, err := s.Open(0, styxproto.OREAD)
	require.NoError(t, err)

	_, err = s.Open(0, styxproto.OREAD)
	assert.Equal(t, ErrFidAlreadyOpen, err)
}

func TestReadRequiresOpenFid(t *testing.T) {
	s := newTestSession("glenda")
	buf := make([]byte, 16)
	_, err := s.Read(0, 0, buf)
	assert.Equal(t, ErrFidNotOpen, err)
}

func TestDirectoryReadOffsetPolicing(t *testing.T) {
	s := newTestSession("glenda")

	// Create a file via a clone of the root fid, leaving fid 0 itself
	// unopened and still bound to root.
	_, err := s.Walk(0, 2, nil)
	require.NoError(t, err)
	_, err = s.Create(2, "f", 0644, 0)
	require.NoError(t, err)

	_, err = s.Open(0, styxproto.OREAD)
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := s.Read(0, 0, buf)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	// A read at a stale nonzero offset not equal to last_offset fails.
	_, err = s.Read(0, 1, buf)
	assert.Equal(t, ErrBadDirOffset, err)

	// Resuming from the correct last_offset is fine.
	_, err = s.Read(0, uint64(n), buf)
	assert.NoError(t, err)
}

func TestWriteRequiresWritableOpen(t *testing.T) {
	s := newTestSession("glenda")
	_, err := s.Create(0, "f", 0644, 0)
	require.NoError(t, err)
	// Create leaves fid 0 open with mode 0 (OREAD).
	_, err = s.Write(0, 0, []byte("x"))
	assert.Equal(t, ErrFidNotWritable, err)
}

func TestClunkWithCloseRemovesNode(t *testing.T) {
	s := newTestSession("glenda")
	_, err := s.Create(0, "f", 0644, styxproto.OWRITE|styxproto.OCLOSE)
	require.NoError(t, err)

	require.NoError(t, s.Clunk(0))

	_, err = s.handle(0)
	assert.Equal(t, ErrUnknownFid, err)
	assert.Empty(t, s.tree.WalkFrom(tree.RootPath, []string{"f"}), "clunking an OCLOSE fid must remove its node")
}

func TestRemoveAlwaysClunksEvenOnPermissionFailure(t *testing.T) {
	s := newTestSession("glenda")
	_, err := s.Walk(0, 1, nil)
	require.NoError(t, err)
	dirQid, err := s.Create(1, "locked", styxproto.DMDIR|0755, 0)
	require.NoError(t, err)
	_ = dirQid

	_, err = s.Walk(0, 2, []string{"locked"})
	require.NoError(t, err)
	_, err = s.Create(2, "f", 0644, 0)
	require.NoError(t, err)

	otherSession := &Session{fids: map[uint32]*FileHandle{3: {Path: func() uint64 {
		h, _ := s.handle(2)
		return h.Path
	}()}}, tree: s.tree, Uname: "someoneelse"}

	err = otherSession.Remove(3)
	assert.Equal(t, tree.ErrPermission, err)

	_, err = otherSession.handle(3)
	assert.Equal(t, ErrUnknownFid, err, "remove must clunk the fid even when the tree removal is rejected")
}
