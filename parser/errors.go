// Package parser pulls one message (an event body plus its attachment
// groups) at a time off an incoming byte stream and hands it to a Processor
// such as keri.Kevery. It is the thinnest layer in this kernel: it owns no
// state besides its own input buffer.
package parser

import "errors"

var (
	// ErrUnexpectedGroup is returned when a counter group appears that this
	// parser has no attachment-collection behavior for.
	ErrUnexpectedGroup = errors.New("parser: unsupported attachment group code")
)
