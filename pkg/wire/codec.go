package wire

import (
	"bufio"
	"encoding/json"
	"io"
)

// Decoder reads newline-delimited JSON messages off r. bufio.Scanner's
// default token size is plenty for the small messages this protocol
// uses; jobmon never ships arbitrarily large payloads over this socket.
type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// Decode reads the next line and unmarshals it into v. It returns
// io.EOF once the underlying reader is exhausted.
func (d *Decoder) Decode(v interface{}) error {
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	return json.Unmarshal(d.scanner.Bytes(), v)
}

// Encoder writes one JSON value per line to w.
type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

func (e *Encoder) Encode(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}
