package stream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/renatogalera/chatstream/pkg/chat"
)

// ErrStreamClosed is returned by Recv after Close.
var ErrStreamClosed = errors.New("stream: closed")

// scanner limits; individual SSE lines can be large.
const (
	scanBufSize = 64 * 1024
	scanBufMax  = 1024 * 1024
)

// Stream is a lazy, forward-only sequence of StreamingView snapshots read
// from one streaming response body. It is finite: Recv returns io.EOF after
// the termination sentinel or transport end-of-stream, and the context error
// once the context is cancelled. The body is released on every exit path.
type Stream struct {
	ctx     context.Context
	body    io.ReadCloser
	scanner *bufio.Scanner
	logger  zerolog.Logger

	buf docBuffer
	agg *Aggregator

	meta chat.Metadata

	done     bool
	closed   bool
	released bool
}

// Option configures a Stream.
type Option func(*Stream)

// WithLogger sets the logger used for dropped-unit diagnostics. The default
// is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Stream) { s.logger = logger }
}

// New builds a stream over a response body. Metadata extracted from header is
// attached to every decoded chunk; seed is the empty completion shape the
// aggregation folds into. The caller must Close the stream (Recv-ing until
// io.EOF also releases the body).
func New(ctx context.Context, body io.ReadCloser, header http.Header, seed chat.ChatCompletion, opts ...Option) *Stream {
	s := &Stream{
		ctx:    ctx,
		body:   body,
		logger: zerolog.Nop(),
		agg:    NewAggregator(seed),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.meta = chat.MetadataFromHeaders(header, s.logger)
	s.scanner = bufio.NewScanner(body)
	s.scanner.Buffer(make([]byte, 0, scanBufSize), scanBufMax)
	return s
}

// Recv returns the next view. Malformed documents are dropped and the stream
// continues; only end-of-stream (io.EOF), cancellation, and transport read
// errors terminate the sequence.
func (s *Stream) Recv() (StreamingView, error) {
	if s.closed {
		return StreamingView{}, ErrStreamClosed
	}
	if s.done {
		return StreamingView{}, io.EOF
	}
	for {
		if err := s.ctx.Err(); err != nil {
			s.finish()
			return StreamingView{}, err
		}
		if !s.scanner.Scan() {
			err := s.scanner.Err()
			s.finish()
			if err != nil {
				// A cancelled request context surfaces as a body read error;
				// report it as the context error.
				if ctxErr := s.ctx.Err(); ctxErr != nil {
					return StreamingView{}, ctxErr
				}
				return StreamingView{}, err
			}
			return StreamingView{}, io.EOF
		}

		payload, kind := DecodeFrame(s.scanner.Text())
		switch kind {
		case FrameSkip:
			continue
		case FrameDone:
			// Sentinel ends the stream immediately; any partially
			// accumulated buffer content is discarded without error.
			s.finish()
			return StreamingView{}, io.EOF
		}

		doc, complete := s.buf.Accept(payload)
		if !complete {
			continue
		}
		chunk, err := DecodeChunk([]byte(doc))
		if err != nil {
			s.logger.Debug().Err(err).Msg("Dropping malformed chunk")
			continue
		}
		chunk.SetMetadata(s.meta)
		view, ok := s.agg.Fold(chunk)
		if !ok {
			continue
		}
		return view, nil
	}
}

// Completion returns the composed completion accumulated so far. After the
// stream has ended it is the finalized result.
func (s *Stream) Completion() chat.ChatCompletion {
	c := s.agg.Completion()
	c.SetMetadata(s.meta)
	return c
}

// Metadata returns the response-header metadata for this stream.
func (s *Stream) Metadata() chat.Metadata { return s.meta }

// Close releases the underlying body. It is idempotent and safe to call at
// any point.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.done {
		s.done = true
		s.agg.Finalize()
	}
	return s.release()
}

// finish performs the final content build and releases the body, keeping the
// stream readable for ErrStreamClosed/io.EOF bookkeeping.
func (s *Stream) finish() {
	if s.done {
		return
	}
	s.done = true
	s.agg.Finalize()
	if err := s.release(); err != nil {
		s.logger.Debug().Err(err).Msg("Closing response body")
	}
}

func (s *Stream) release() error {
	if s.released {
		return nil
	}
	s.released = true
	return s.body.Close()
}

// Drain consumes the remaining views and returns the finalized completion.
// It closes the stream in all cases.
func Drain(s *Stream) (chat.ChatCompletion, error) {
	defer s.Close()
	for {
		_, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.Completion(), nil
			}
			return s.Completion(), err
		}
	}
}
