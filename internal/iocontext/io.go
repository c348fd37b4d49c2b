// Package iocontext carries the command's I/O streams in a context so that
// commands and the request dispatcher write to injectable writers.
package iocontext

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer // stdout
	ErrOut io.Writer // stderr
	In     io.Reader // stdin
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

// Buffered returns IO backed by in-memory buffers, reading stdin from in.
func Buffered(in string) (*IO, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &IO{Out: out, ErrOut: errOut, In: strings.NewReader(in)}, out, errOut
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
// Nil fields fall back to their standard stream.
func GetIO(ctx context.Context) *IO {
	streams, ok := ctx.Value(ioKey{}).(*IO)
	if !ok || streams == nil {
		return DefaultIO()
	}
	if streams.Out != nil && streams.ErrOut != nil && streams.In != nil {
		return streams
	}
	filled := *streams
	if filled.Out == nil {
		filled.Out = os.Stdout
	}
	if filled.ErrOut == nil {
		filled.ErrOut = os.Stderr
	}
	if filled.In == nil {
		filled.In = os.Stdin
	}
	return &filled
}

// StdinIsPiped reports whether stdin is a pipe or file rather than a terminal.
func (s *IO) StdinIsPiped() bool {
	f, ok := s.In.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
