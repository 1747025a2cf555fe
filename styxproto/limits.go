package styxproto

// Size limits on variable-length fields, carried over from this
// lineage's wire limits (aqwari.net/net/styx/styxproto/limits.go),
// independent of any particular server's semantics.
const (
	// MaxStringLen is the largest a u16-length-prefixed string may be.
	MaxStringLen = 1<<16 - 1

	// MaxSeqLen is the largest a u16-count-prefixed sequence may be.
	MaxSeqLen = 1<<16 - 1

	// MaxDataLen is the largest a u32-length-prefixed opaque byte
	// array may be within a single message, reserving room for the
	// frame envelope (size[4] type[1]) and the message's own tag[2]
	// and count[4] fields.
	MaxDataLen = 1<<32 - 1 - 11

	// MaxFilenameLen is the longest file name tree.Create and
	// tree.Wstat accept. Encode and Decode do not check it.
	MaxFilenameLen = 512

	// MaxUidLen is the customary bound on uid/gid/muid, which are
	// typically much shorter than filenames. Nothing checks it.
	MaxUidLen = 45

	// MaxWElem is the 9P2000 limit on path elements in one Twalk. Encode
	// and Decode do not enforce it; they accept up to MaxSeqLen.
	MaxWElem = 16

	// MaxVersionLen is the customary bound on the version string of
	// Tversion/Rversion. Nothing checks it.
	MaxVersionLen = 20

	// MinBufSize is large enough to hold the body of the largest Twalk
	// that respects MaxWElem and MaxFilenameLen (tag, fid, newfid,
	// nwname and the names), not counting the size[4] type[1] envelope.
	MinBufSize = MaxWElem*(MaxFilenameLen+2) + 12

	// DefaultMsize is used when a server has no other configured
	// maximum message size.
	DefaultMsize = 1 << 20
)
