// Package frontmatter reads and writes the YAML header of Jekyll posts.
//
// A header is a block that opens with a "---" line at the very top of the file
// and closes at the next "---" line. Everything after the closing marker is the
// body and is carried through Render untouched.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
)

const delimiter = "---"

var (
	// ErrNoFrontMatter means the file does not start with a "---" line.
	ErrNoFrontMatter = errors.New("frontmatter: missing opening --- delimiter")
	// ErrUnterminated means the opening marker has no closing "---" line.
	ErrUnterminated = errors.New("frontmatter: missing closing --- delimiter")
	// ErrMalformed means the header is not a YAML mapping.
	ErrMalformed = errors.New("frontmatter: header is not a key/value mapping")
)

// Document is a post split into its raw header and body.
type Document struct {
	// Header is the raw YAML between the two marker lines.
	Header []byte
	// Body is every byte after the closing marker, starting with the
	// marker's own line ending.
	Body []byte
}

// Split locates the header of data. The opening marker must be the first line;
// trailing spaces and a carriage return on marker lines are tolerated.
func Split(data []byte) (Document, error) {
	first, rest, ok := cutLine(data)
	if !ok && len(first) == 0 {
		return Document{}, ErrNoFrontMatter
	}
	if !isMarker(first) {
		return Document{}, ErrNoFrontMatter
	}
	if !ok {
		return Document{}, ErrUnterminated
	}

	headerStart := len(data) - len(rest)
	offset := headerStart
	for len(rest) > 0 {
		line, next, _ := cutLine(rest)
		if isMarker(line) {
			// Body starts right after the three dashes so that the closing
			// line's own terminator stays with the body.
			markerEnd := offset + bytes.Index(line, []byte(delimiter)) + len(delimiter)
			return Document{
				Header: data[headerStart:offset],
				Body:   data[markerEnd:],
			}, nil
		}
		offset += len(rest) - len(next)
		rest = next
	}
	return Document{}, ErrUnterminated
}

// Render returns the full file contents for meta followed by the original body.
func (d Document) Render(meta *Metadata) ([]byte, error) {
	header, err := meta.Marshal()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(header) + len(d.Body) + 8)
	buf.WriteString(delimiter + "\n")
	buf.Write(header)
	buf.WriteString(delimiter)
	buf.Write(d.Body)
	return buf.Bytes(), nil
}

// Parse splits data and decodes its header.
func Parse(data []byte) (*Metadata, Document, error) {
	doc, err := Split(data)
	if err != nil {
		return nil, Document{}, err
	}
	meta, err := Decode(doc.Header)
	if err != nil {
		return nil, doc, fmt.Errorf("decode header: %w", err)
	}
	return meta, doc, nil
}

// cutLine returns the first line of b without its terminator, the remainder
// after the terminator, and whether a terminator was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

func isMarker(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delimiter
}
