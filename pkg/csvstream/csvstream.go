// Package csvstream implements an incremental, permissive CSV tokenizer.
//
// A [Parser] accepts text in arbitrary chunks and yields complete rows as
// soon as their terminating line break has been seen. Parser state (the
// partial row, the quoting flag and whether the previous character closed a
// quoted region) survives between calls, so feeding a document in one chunk
// or split at any byte boundary produces the same rows.
//
// Parsing never fails. Unbalanced quotes simply leave the rest of the input
// inside the current field.
//
// # Line Breaks
//
// Both '\r' and '\n' end a row. A row consisting of a single empty field is
// never emitted, which absorbs the second half of a "\r\n" pair and drops
// blank lines.
package csvstream

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
	"unicode/utf8"
)

// DefaultSeparator is the field separator used when none is configured.
const DefaultSeparator = ','

// Option configures a [Parser].
type Option func(*Parser)

// WithSeparator sets the field separator.
func WithSeparator(sep rune) Option {
	return func(p *Parser) { p.sep = sep }
}

// Parser is a stateful CSV tokenizer. The zero value is not usable; create
// parsers with [New]. A Parser is not safe for concurrent use.
type Parser struct {
	sep rune

	row       []string
	field     strings.Builder
	quoted    bool
	afterQuot bool // previous char closed a quoted region
	ready     [][]string
}

// New returns a parser with an empty partial row.
func New(opts ...Option) *Parser {
	p := &Parser{sep: DefaultSeparator}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Accept consumes chunk and returns the rows it completed.
//
// The chunk is tokenized in full before the sequence is returned, so the
// parser is consistent after every call even if the caller stops iterating
// early. Rows the caller does not consume are discarded.
func (p *Parser) Accept(chunk string) iter.Seq[[]string] {
	for _, c := range chunk {
		p.step(c)
	}
	return p.drain()
}

// Finish flushes the trailing row, if it is non-empty, and resets the
// parser.
func (p *Parser) Finish() iter.Seq[[]string] {
	p.endRow()
	p.quoted = false
	p.afterQuot = false
	return p.drain()
}

func (p *Parser) step(c rune) {
	if p.quoted {
		if c == '"' {
			p.quoted = false
			p.afterQuot = true
			return
		}
		p.field.WriteRune(c)
		return
	}

	wasQuote := p.afterQuot
	p.afterQuot = false

	switch c {
	case '"':
		p.quoted = true
		if wasQuote {
			p.field.WriteByte('"')
		}
	case p.sep:
		p.row = append(p.row, p.field.String())
		p.field.Reset()
	case '\r', '\n':
		p.endRow()
	default:
		p.field.WriteRune(c)
	}
}

// endRow queues the partial row unless it is a single empty field.
func (p *Parser) endRow() {
	row := append(p.row, p.field.String())
	p.row = nil
	p.field.Reset()
	if len(row) == 1 && row[0] == "" {
		return
	}
	p.ready = append(p.ready, row)
}

func (p *Parser) drain() iter.Seq[[]string] {
	rows := p.ready
	p.ready = nil
	return func(yield func([]string) bool) {
		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}

// chunkSize is the read size used by [ReadAll].
const chunkSize = 4096

// ReadAll reads r to EOF and returns every row.
func ReadAll(r io.Reader, opts ...Option) ([][]string, error) {
	var rows [][]string
	err := each(r, opts, func(row []string) bool {
		rows = append(rows, row)
		return true
	})
	return rows, err
}

func each(r io.Reader, opts []Option, yield func([]string) bool) error {
	p := New(opts...)
	chunks := NewChunkReader(r, chunkSize)
	for {
		chunk, err := chunks.Next()
		for row := range p.Accept(chunk) {
			if !yield(row) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	for row := range p.Finish() {
		if !yield(row) {
			return nil
		}
	}
	return nil
}

// ChunkReader splits a byte stream into UTF-8 text chunks without cutting a
// multi-byte character in half. Invalid bytes decode to U+FFFD.
type ChunkReader struct {
	r   *bufio.Reader
	buf []byte
}

// NewChunkReader returns a reader producing chunks of roughly size bytes.
func NewChunkReader(r io.Reader, size int) *ChunkReader {
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	return &ChunkReader{r: bufio.NewReaderSize(r, size), buf: make([]byte, 0, size)}
}

// Next returns the next chunk. It returns io.EOF, possibly together with a
// final non-empty chunk, once the stream is exhausted.
func (c *ChunkReader) Next() (string, error) {
	c.buf = c.buf[:0]
	for len(c.buf) <= cap(c.buf)-utf8.UTFMax {
		r, _, err := c.r.ReadRune()
		if err != nil {
			return string(c.buf), err
		}
		c.buf = utf8.AppendRune(c.buf, r)
	}
	return string(c.buf), nil
}
