package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adamnew123456/jobmon/pkg/wire"
)

func TestRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	req := wire.Request{Command: wire.CmdStart, Job: "web"}
	require.NoError(t, enc.Encode(req))

	dec := wire.NewDecoder(&buf)
	var got wire.Request
	require.NoError(t, dec.Decode(&got))
	require.Equal(t, req, got)
}

func TestResponseRoundTripWithListPayload(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	resp := wire.Response{OK: true, Payload: []wire.JobStatus{{Name: "web", Status: "RUNNING"}}}
	require.NoError(t, enc.Encode(resp))

	dec := wire.NewDecoder(&buf)
	var got wire.Response
	require.NoError(t, dec.Decode(&got))
	require.True(t, got.OK)
}

func TestDecodeReturnsEOFOnEmptyStream(t *testing.T) {
	dec := wire.NewDecoder(bytes.NewReader(nil))
	var req wire.Request
	err := dec.Decode(&req)
	require.ErrorIs(t, err, io.EOF)
}

func TestMultipleMessagesOnOneStream(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	require.NoError(t, enc.Encode(wire.Event{Job: "a", Status: "RUNNING"}))
	require.NoError(t, enc.Encode(wire.Event{Job: "a", Status: "STOPPED"}))

	dec := wire.NewDecoder(&buf)
	var first, second wire.Event
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	require.Equal(t, "RUNNING", first.Status)
	require.Equal(t, "STOPPED", second.Status)
}
