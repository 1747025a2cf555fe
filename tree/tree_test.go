package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styxfs/ninefs/styxproto"
)

// stepClock advances by one second on every call, so successive
// stamps are distinguishable without depending on wall-clock time.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestTree(uid string) *Tree {
	return New(uid, &stepClock{t: time.Unix(1_700_000_000, 0)})
}

func TestRootQidAndStat(t *testing.T) {
	tr := newTestTree("glenda")
	qid, ok := tr.Qid(RootPath)
	require.True(t, ok)
	assert.True(t, qid.IsDir())

	st, ok := tr.Stat(RootPath)
	require.True(t, ok)
	assert.Equal(t, "/", st.Name)
	assert.Equal(t, "glenda", st.Uid)
}

func TestCreateAndWalk(t *testing.T) {
	tr := newTestTree("glenda")
	dirPath, err := tr.Create(RootPath, "glenda", "adir", styxproto.DMDIR|0755, 0)
	require.NoError(t, err)

	filePath, err := tr.Create(dirPath, "glenda", "afile", 0644, 0)
	require.NoError(t, err)

	qids := tr.WalkFrom(RootPath, []string{"adir", "afile"})
	require.Len(t, qids, 2)
	dirQid, _ := tr.Qid(dirPath)
	fileQid, _ := tr.Qid(filePath)
	assert.Equal(t, dirQid, qids[0])
	assert.Equal(t, fileQid, qids[1])
}

func TestWalkStopsOnMissingName(t *testing.T) {
	tr := newTestTree("glenda")
	qids := tr.WalkFrom(RootPath, []string{"nope", "whatever"})
	assert.Empty(t, qids)
}

func TestWalkStopsOnNonDirectory(t *testing.T) {
	tr := newTestTree("glenda")
	filePath, err := tr.Create(RootPath, "glenda", "afile", 0644, 0)
	require.NoError(t, err)

	qids := tr.WalkFrom(RootPath, []string{"afile", "further"})
	require.Len(t, qids, 1)
	fileQid, _ := tr.Qid(filePath)
	assert.Equal(t, fileQid, qids[0])
}

func TestWalkDotDotStopsAtRoot(t *testing.T) {
	tr := newTestTree("glenda")
	qids := tr.WalkFrom(RootPath, []string{"..", ".."})
	require.Len(t, qids, 2)
	rootQid, _ := tr.Qid(RootPath)
	assert.Equal(t, rootQid, qids[0])
	assert.Equal(t, rootQid, qids[1])
}

func TestCreateDuplicateNameFails(t *testing.T) {
	tr := newTestTree("glenda")
	_, err := tr.Create(RootPath, "glenda", "afile", 0644, 0)
	require.NoError(t, err)
	_, err = tr.Create(RootPath, "glenda", "afile", 0644, 0)
	assert.Equal(t, ErrNameExists, err)
}

func TestCreateRequiresParentWritePermission(t *testing.T) {
	tr := newTestTree("glenda")
	_, err := tr.Create(RootPath, "glenda", "locked", styxproto.DMDIR|0700, 0)
	require.NoError(t, err)
	locked, _ := tr.findChildPath(RootPath, "locked")

	_, err = tr.Create(locked, "anyone", "x", 0644, 0)
	assert.Equal(t, ErrPermission, err)
}

func TestOpenDirectoryRejectsWriteAndTrunc(t *testing.T) {
	tr := newTestTree("glenda")
	assert.Equal(t, ErrWriteOnDir, tr.Open(RootPath, "glenda", styxproto.OWRITE))
	assert.Equal(t, ErrTruncateOnDir, tr.Open(RootPath, "glenda", styxproto.OREAD|styxproto.OTRUNC))
	assert.Equal(t, ErrCloseOnDir, tr.Open(RootPath, "glenda", styxproto.OREAD|styxproto.OCLOSE))
}

func TestOpenTruncResetsContentAndMuid(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "f", 0666, 0)
	require.NoError(t, err)
	_, err = tr.Write(fp, "glenda", 0, []byte("hello"))
	require.NoError(t, err)

	require.NoError(t, tr.Open(fp, "anon", styxproto.OWRITE|styxproto.OTRUNC))

	buf := make([]byte, 16)
	n, err := tr.Read(fp, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	st, _ := tr.Stat(fp)
	assert.Equal(t, "anon", st.Muid)
}

func TestWriteGrowsFileAndReadReturnsIt(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "f", 0666, 0)
	require.NoError(t, err)

	n, err := tr.Write(fp, "glenda", 0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = tr.Write(fp, "glenda", 5, []byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	buf := make([]byte, 32)
	got, err := tr.Read(fp, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf[:got]))
}

func TestWriteRejectsOnDirectory(t *testing.T) {
	tr := newTestTree("glenda")
	_, err := tr.Write(RootPath, "glenda", 0, []byte("x"))
	assert.Equal(t, ErrWriteOnDir, err)
}

func TestWriteRejectsOffsetThatWouldOverflow(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "f", 0666, 0)
	require.NoError(t, err)

	_, err = tr.Write(fp, "glenda", ^uint64(0)-1, []byte("hi"))
	assert.Equal(t, ErrOffsetTooLarge, err)

	_, err = tr.Write(fp, "glenda", maxFileSize+1, nil)
	assert.Equal(t, ErrOffsetTooLarge, err)
}

func TestDirectoryReadResumeAtEndReturnsZero(t *testing.T) {
	tr := newTestTree("glenda")
	_, err := tr.Create(RootPath, "glenda", "a", 0644, 0)
	require.NoError(t, err)
	_, err = tr.Create(RootPath, "glenda", "b", 0644, 0)
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n1, err := tr.Read(RootPath, 0, buf)
	require.NoError(t, err)
	assert.Greater(t, n1, 0)

	// A read resuming from the exact previous offset should return 0
	// once the full listing has already been delivered.
	n2, err := tr.Read(RootPath, uint64(n1), buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n2)
}

func TestDirectoryListingCacheInvalidatesOnCreate(t *testing.T) {
	tr := newTestTree("glenda")
	buf := make([]byte, 4096)
	n0, err := tr.Read(RootPath, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n0)

	_, err = tr.Create(RootPath, "glenda", "a", 0644, 0)
	require.NoError(t, err)

	n1, err := tr.Read(RootPath, 0, buf)
	require.NoError(t, err)
	assert.Greater(t, n1, 0)
}

func TestWstatRenameAtomicity(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "old", 0644, 0)
	require.NoError(t, err)
	_, err = tr.Create(RootPath, "glenda", "taken", 0644, 0)
	require.NoError(t, err)

	bad := styxproto.Stat{
		Type: 0xFFFF, Dev: styxproto.NoTouch,
		Qid:    styxproto.Qid{Type: 0xFF, Version: styxproto.NoTouch, Path: styxproto.NoTouch64},
		Mode:   styxproto.FileMode(styxproto.NoTouch),
		Atime:  styxproto.NoTouch,
		Mtime:  styxproto.NoTouch,
		Length: styxproto.NoTouch64,
		Name:   "taken",
	}
	err = tr.Wstat(fp, "glenda", bad)
	assert.Equal(t, ErrNameExists, err)

	st, _ := tr.Stat(fp)
	assert.Equal(t, "old", st.Name, "rejected wstat must not rename the file")
}

func TestWstatModeRequiresOwnership(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "f", 0644, 0)
	require.NoError(t, err)

	newStat := noTouchStatWith(func(s *styxproto.Stat) { s.Mode = 0600 })
	err = tr.Wstat(fp, "someoneelse", newStat)
	assert.Equal(t, ErrPermission, err)
}

func TestWstatRejectsGidChange(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "f", 0644, 0)
	require.NoError(t, err)

	newStat := noTouchStatWith(func(s *styxproto.Stat) { s.Gid = "somegroup" })
	err = tr.Wstat(fp, "glenda", newStat)
	assert.Equal(t, ErrGidNotMember, err)
}

func TestWstatCannotFlipDirBit(t *testing.T) {
	tr := newTestTree("glenda")
	fp, err := tr.Create(RootPath, "glenda", "f", 0644, 0)
	require.NoError(t, err)

	newStat := noTouchStatWith(func(s *styxproto.Stat) { s.Mode = styxproto.DMDIR | 0755 })
	err = tr.Wstat(fp, "glenda", newStat)
	assert.Equal(t, ErrCannotFlipDir, err)
}

func TestRemoveRequiresParentWritePermission(t *testing.T) {
	tr := newTestTree("glenda")
	dirPath, err := tr.Create(RootPath, "glenda", "locked", styxproto.DMDIR|0755, 0)
	require.NoError(t, err)
	fp, err := tr.Create(dirPath, "glenda", "f", 0644, 0)
	require.NoError(t, err)

	err = tr.Remove(fp, "anyone")
	assert.Equal(t, ErrPermission, err)

	err = tr.Remove(fp, "glenda")
	assert.NoError(t, err)
}

func TestRemoveNonEmptyDirectoryFails(t *testing.T) {
	tr := newTestTree("glenda")
	dirPath, err := tr.Create(RootPath, "glenda", "adir", styxproto.DMDIR|0755, 0)
	require.NoError(t, err)
	_, err = tr.Create(dirPath, "glenda", "f", 0644, 0)
	require.NoError(t, err)

	err = tr.Remove(dirPath, "glenda")
	assert.Equal(t, ErrDirNotEmpty, err)
}

func TestRemoveCannotDeleteRoot(t *testing.T) {
	tr := newTestTree("glenda")
	assert.Equal(t, ErrPermission, tr.Remove(RootPath, "glenda"))
}

// noTouchStatWith returns a Stat with every field set to its "don't
// touch" sentinel, then applies fn to override specific fields.
func noTouchStatWith(fn func(*styxproto.Stat)) styxproto.Stat {
	s := styxproto.Stat{
		Type:   0xFFFF,
		Dev:    styxproto.NoTouch,
		Qid:    styxproto.Qid{Type: 0xFF, Version: styxproto.NoTouch, Path: styxproto.NoTouch64},
		Mode:   styxproto.FileMode(styxproto.NoTouch),
		Atime:  styxproto.NoTouch,
		Mtime:  styxproto.NoTouch,
		Length: styxproto.NoTouch64,
	}
	fn(&s)
	return s
}

// findChildPath is a test helper exposing the tree's internal name
// lookup without a full Walk.
func (t *Tree) findChildPath(parentPath uint64, name string) (uint64, bool) {
	parent, ok := t.node(parentPath)
	if !ok {
		return 0, false
	}
	child, ok := t.findChild(parent, name)
	if !ok {
		return 0, false
	}
	return child.path, true
}
