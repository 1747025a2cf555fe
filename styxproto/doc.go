// Package styxproto implements the wire encoding of the 9P2000 distributed
// file protocol: the message set, Qid and Stat encodings, and the sizing
// pass used to validate messages against a negotiated msize.
//
// Encode and Decode work on message bodies only; the size[4] type[1]
// envelope that wraps every message on the wire is read and written
// separately, by Decoder.ReadFrame and Encoder.WriteMsg in framing.go,
// which hand Decode the type byte and the remaining body bytes. This
// mirrors the split between transport and message codec used
// throughout this lineage of 9P servers.
package styxproto
