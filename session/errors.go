package session

// Error is a session-level error whose message is short enough to
// send verbatim as an Rerror ename, the same convention tree.Error
// follows.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnknownFid     Error = "unknown fid"
	ErrFidAlreadyOpen Error = "fid already open"
	ErrFidNotOpen     Error = "fid not open"
	ErrFidNotWritable Error = "fid not opened for writing"
	ErrBadDirOffset   Error = "invalid directory read offset"
)
