// Package framing turns an arbitrarily chunked byte stream into complete
// newline-terminated lines.
//
// A Framer scans for every terminator in its buffer on each Feed and
// returns all complete lines found, keeping only the trailing partial line.
// Splitting the same bytes at different chunk boundaries therefore always
// yields the same line sequence, including which oversize lines are dropped.
package framing

import "bytes"

// DefaultMaxLineBytes bounds a single buffered line.
const DefaultMaxLineBytes = 1024 * 1024 // 1MB

// Framer accumulates bytes and emits complete lines in arrival order.
// It owns no protocol knowledge. A Framer is not safe for concurrent use.
type Framer struct {
	buf     []byte
	maxLine int
	dropped int
	// discarding is set while skipping the rest of an oversize line.
	discarding bool
}

// New creates a framer. maxLine <= 0 selects DefaultMaxLineBytes.
func New(maxLine int) *Framer {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	return &Framer{maxLine: maxLine}
}

// Feed appends chunk and returns every line completed by it. A trailing
// carriage return is stripped from each line.
func (f *Framer) Feed(chunk []byte) []string {
	var lines []string

	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			f.appendPartial(chunk)

			return lines
		}

		switch {
		case f.discarding:
			f.discarding = false
		case len(f.buf)+i > f.maxLine:
			f.dropped++
		default:
			f.buf = append(f.buf, chunk[:i]...)
			lines = append(lines, string(bytes.TrimSuffix(f.buf, []byte{'\r'})))
		}
		f.buf = f.buf[:0]
		chunk = chunk[i+1:]
	}

	return lines
}

func (f *Framer) appendPartial(chunk []byte) {
	if f.discarding {
		return
	}
	if len(f.buf)+len(chunk) > f.maxLine {
		f.buf = f.buf[:0]
		f.dropped++
		f.discarding = true

		return
	}
	f.buf = append(f.buf, chunk...)
}

// Limit returns the longest line, in bytes, the framer will emit.
func (f *Framer) Limit() int {
	return f.maxLine
}

// Pending returns the number of buffered bytes not yet part of a line.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Dropped returns how many oversize lines were discarded.
func (f *Framer) Dropped() int {
	return f.dropped
}

// Flush returns the buffered partial line, if any, and clears it. It is
// meant for end of stream, where the last line may lack a terminator.
func (f *Framer) Flush() (string, bool) {
	if len(f.buf) == 0 || f.discarding {
		f.Reset()

		return "", false
	}
	line := string(bytes.TrimSuffix(f.buf, []byte{'\r'}))
	f.buf = f.buf[:0]

	return line, true
}

// Reset discards all buffered state.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.discarding = false
}
