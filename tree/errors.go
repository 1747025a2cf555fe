package tree

// Error is a tree-level error whose message is suitable to send to a
// 9P client verbatim as an Rerror ename: short, lowercase, no internal
// detail. This mirrors the taxonomy in SPEC_FULL.md section 7 — these
// are the "session errors (non-fatal)" kind, never fatal to the
// connection.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoSuchFile     Error = "no such file or directory"
	ErrNotDir         Error = "not a directory"
	ErrIsDir          Error = "is a directory"
	ErrPermission     Error = "permission denied"
	ErrNameExists     Error = "file already exists"
	ErrDirNotEmpty    Error = "directory not empty"
	ErrCannotChange   Error = "wstat: cannot change field"
	ErrCannotFlipDir  Error = "wstat: cannot change directory bit"
	ErrCannotSetLen   Error = "wstat: cannot set length of a directory"
	ErrGidNotMember   Error = "wstat: not a member of the requested group"
	ErrTruncateOnDir  Error = "cannot truncate a directory"
	ErrWriteOnDir     Error = "cannot write to a directory"
	ErrCloseOnDir     Error = "cannot remove-on-clunk a directory"
	ErrMaxPathReached Error = "no more paths available"
	ErrNameTooLong    Error = "name too long"
	ErrOffsetTooLarge Error = "offset too large"
)
