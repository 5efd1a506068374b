package stream

import "strings"

// docBuffer accumulates payload lines into candidate JSON documents.
//
// Chunk serializers differ: some emit one flat document per line, others
// pretty-print a document across several lines. Instead of assuming a fixed
// layout, the buffer runs an incremental structural scan over the appended
// text (string- and escape-aware) and emits the accumulated buffer exactly
// when nesting depth returns to zero after at least one structural byte.
type docBuffer struct {
	buf strings.Builder

	depth    int
	started  bool
	inString bool
	escaped  bool
}

// Accept appends one payload line and reports whether it completed a
// document. The returned text includes the trailing line separator; the
// buffer and scanner state are reset on emission.
func (b *docBuffer) Accept(line string) (string, bool) {
	b.scan(line)
	b.buf.WriteString(line)
	b.buf.WriteByte('\n')

	if b.depth < 0 {
		// Stray closer: flush so one bad line cannot poison the rest of the
		// stream. The flushed text fails decode downstream and is dropped.
		doc := b.buf.String()
		b.reset()
		return doc, true
	}
	if b.started && b.depth == 0 {
		doc := b.buf.String()
		b.reset()
		return doc, true
	}
	return "", false
}

// Pending reports whether the buffer holds a partial document.
func (b *docBuffer) Pending() bool { return b.buf.Len() > 0 }

func (b *docBuffer) reset() {
	b.buf.Reset()
	b.depth = 0
	b.started = false
	b.inString = false
	b.escaped = false
}

func (b *docBuffer) scan(line string) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if b.inString {
			switch {
			case b.escaped:
				b.escaped = false
			case c == '\\':
				b.escaped = true
			case c == '"':
				b.inString = false
			}
			continue
		}
		switch c {
		case '"':
			b.inString = true
			b.started = true
		case '{', '[':
			b.depth++
			b.started = true
		case '}', ']':
			b.depth--
		case ' ', '\t', '\r':
		default:
			b.started = true
		}
	}
	// A string never spans lines in this protocol; content newlines arrive
	// escaped. Treat the line boundary as terminating any open string.
	b.inString = false
	b.escaped = false
}
