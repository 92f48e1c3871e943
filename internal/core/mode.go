// Package core is the orchestration layer.  It composes the state
// machine, transports and sessions into complete operational modes and
// provides a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	state  →  transport  →  session  →  core  →  cmd (CLI)
package core

import (
	"context"
	"io"
	"os"
)

// Mode represents a complete operational mode of connstate (replaying
// a script, or driving a live link).  Each mode owns its Connection
// from creation to teardown.
type Mode interface {
	Run(ctx context.Context) error
}

// stdio holds the I/O pair a mode reads commands from and prints
// notices to.  Nil fields default to os.Stdin / os.Stdout; tests
// override them for deterministic I/O.
type stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
}

func (s stdio) stdin() io.Reader {
	if s.Stdin != nil {
		return s.Stdin
	}
	return os.Stdin
}

func (s stdio) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}
