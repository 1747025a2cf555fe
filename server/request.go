package server

import (
	"golang.org/x/net/context"

	"github.com/styxfs/ninefs/styxproto"
)

// request wraps one decoded client message with its request-scoped
// context, the way droyo-styx's own reqInfo pairs a styxproto.Msg with
// a context.Context and tag/fid. Cancellation is not wired to
// anything yet (this dispatcher is fully synchronous, so a request
// never outlives the call that serves it), but the field is carried
// through the same way so a future Tflush implementation has
// something to cancel.
type request struct {
	context.Context
	tag uint16
	msg styxproto.Msg
}

func newRequest(ctx context.Context, m styxproto.Msg) request {
	return request{Context: ctx, tag: tagOf(m), msg: m}
}

// tagOf extracts the tag carried by any decoded message.
func tagOf(m styxproto.Msg) uint16 { return m.GetTag() }
