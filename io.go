package citescoop

import (
	"encoding/binary"
	"encoding/json"
	"io"
)

// A MessageWriter writes length-prefixed messages.
//
// Framed streams have the following format:
//    uint32 size of the next message, network byte order
//    message body
type MessageWriter struct {
	w io.Writer
}

// NewMessageWriter gets a writer framing messages onto w.
func NewMessageWriter(w io.Writer) *MessageWriter {
	return &MessageWriter{w: w}
}

// WriteMessage frames one message.  It returns the size of the
// serialised body, not counting the four prefix bytes.
func (mw *MessageWriter) WriteMessage(m interface{}) (uint32, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return 0, err
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := mw.w.Write(prefix[:]); err != nil {
		return 0, err
	}
	if _, err := mw.w.Write(body); err != nil {
		return 0, err
	}
	return uint32(len(body)), nil
}

// A MessageReader reads streams produced by MessageWriter.
type MessageReader struct {
	r io.Reader
}

// NewMessageReader gets a reader consuming framed messages from r.
func NewMessageReader(r io.Reader) *MessageReader {
	return &MessageReader{r: r}
}

// ReadMessage reads the next message into m.  It returns io.EOF at a
// clean end of stream.
func (mr *MessageReader) ReadMessage(m interface{}) error {
	var prefix [4]byte
	if _, err := io.ReadFull(mr.r, prefix[:]); err != nil {
		return err
	}

	body := make([]byte, binary.BigEndian.Uint32(prefix[:]))
	if _, err := io.ReadFull(mr.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return json.Unmarshal(body, m)
}
