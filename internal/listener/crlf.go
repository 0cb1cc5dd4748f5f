package listener

import (
	"bytes"
	"io"
)

// lineConn normalizes line endings across transports. Telnet clients send
// \r\n and expect it back; an SSH channel without a PTY sends a bare \r.
// Everything above the listener layer works in plain \n.
type lineConn struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineConn{rw: rw}
}

func (c *lineConn) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n > 0 {
		data := bytes.ReplaceAll(p[:n], []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)
	}
	return n, err
}

func (c *lineConn) Write(p []byte) (int, error) {
	_, err := c.rw.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	// Report the caller's length; the expansion is invisible above this layer.
	return len(p), err
}
