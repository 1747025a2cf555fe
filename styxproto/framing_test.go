package styxproto

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	msgs := []Msg{
		Tversion{Tag: NOTAG, Msize: 8192, Version: "9P2000"},
		Tattach{Tag: 0, Fid: 0, Afid: NOFID, Uname: "glenda", Aname: ""},
		Tclunk{Tag: 1, Fid: 0},
	}
	for _, m := range msgs {
		require.NoError(t, enc.WriteMsg(m))
	}
	require.NoError(t, enc.Flush())

	dec := NewDecoder(&buf)
	for _, want := range msgs {
		typ, body, err := dec.ReadFrame()
		require.NoError(t, err)
		got, err := Decode(typ, body)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, _, err := dec.ReadFrame()
	require.Equal(t, io.EOF, err)
}

func TestFrameExceedsMsize(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteMsg(Rread{Tag: 1, Data: make([]byte, 1000)}))
	require.NoError(t, enc.Flush())

	dec := NewDecoder(&buf)
	dec.Msize = 64
	_, _, err := dec.ReadFrame()
	require.Equal(t, ErrExceedsMsize, err)
}
