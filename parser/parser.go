package parser

import (
	"errors"
	"strings"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/keri-community/keri-go/serder"
)

// Result classifies what one Step call accomplished.
type Result int

const (
	// NeedMore reports that the buffer does not yet hold a complete
	// message; the driver should Feed more bytes and Step again.
	NeedMore Result = iota
	// Yielded reports that Step produced a Message.
	Yielded
	// Resynced reports that Step discarded undecodable bytes and moved the
	// cursor to the next plausible message boundary.
	Resynced
)

// Parser pulls messages (an event body plus attachments) one at a time off
// a growable byte buffer. It never reads from a transport itself: the
// driver owns the buffer and calls Feed. Parsing is modeled as an explicit
// state machine (NeedMore/Yielded/Resynced) rather than a cooperative
// coroutine, so a driver can suspend and resume a Parser across I/O waits
// without a dedicated goroutine per connection.
type Parser struct {
	buf []byte
	log logger.Logger
}

// Option configures a Parser at construction.
type Option func(*Parser)

// WithLogger injects a structured logger; Parser falls back to
// logger.Sugar.WithServiceName("keri.parser") when none is given.
func WithLogger(log logger.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// New builds a Parser with an empty buffer.
func New(opts ...Option) *Parser {
	p := &Parser{log: logger.Sugar.WithServiceName("keri.parser")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Feed appends newly-arrived bytes to the buffer.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Buffered reports how many bytes are waiting to be parsed.
func (p *Parser) Buffered() int { return len(p.buf) }

// Step attempts to decode exactly one message from the front of the
// buffer. On Resynced, err describes what went wrong and the cursor has
// already moved past the undecodable bytes; the driver should keep
// stepping.
func (p *Parser) Step() (Message, Result, error) {
	if len(p.buf) < serder.VersionStringLen {
		return Message{}, NeedMore, nil
	}

	pv, _, err := serder.SniffVersionString(p.buf)
	if err != nil {
		if errors.Is(err, serder.ErrShortVersionString) {
			return Message{}, NeedMore, nil
		}
		if p.resync() == 0 {
			return Message{}, NeedMore, nil
		}
		return Message{}, Resynced, err
	}
	if len(p.buf) < pv.Size {
		return Message{}, NeedMore, nil
	}

	s, err := serder.FromRaw(p.buf)
	if err != nil {
		p.buf = p.buf[1:]
		p.resync()
		return Message{}, Resynced, err
	}

	rest := p.buf[pv.Size:]
	msg, consumed, err := decodeAttachments(rest, s)
	if err != nil {
		p.buf = rest[consumed:]
		p.resync()
		return Message{}, Resynced, err
	}

	p.buf = rest[consumed:]
	return msg, Yielded, nil
}

// resync scans past the first byte of the buffer for the next occurrence of
// the protocol tag, then backs up to the nearest byte that can begin an
// event body in one of the supported kinds (the version string sits a few
// framing bytes into every serialization, so the tag itself is never the
// message boundary). It returns the number of bytes dropped; 0 means no
// plausible boundary was found in the buffer yet, which the caller treats
// the same as NeedMore.
func (p *Parser) resync() int {
	if len(p.buf) == 0 {
		return 0
	}
	rest := p.buf[1:]
	idx := strings.Index(string(rest), "KERI")
	if idx < 0 {
		keep := len(p.buf)
		if keep > 3 {
			keep = 3 // might be a split "KERI" tag; keep enough to recognize it on the next Feed
		}
		dropped := len(p.buf) - keep
		p.buf = p.buf[len(p.buf)-keep:]
		return dropped
	}
	start := idx
	for back := 1; back <= serder.MaxVSOffset && idx-back >= 0; back++ {
		if plausibleBodyStart(rest[idx-back]) {
			start = idx - back
			break
		}
	}
	p.buf = rest[start:]
	return start + 1
}

// plausibleBodyStart reports whether b can begin a serialized event body:
// a JSON object brace, a CBOR definite-length map header, or a MessagePack
// map header. This is a heuristic; a spurious match just costs one more
// resync round.
func plausibleBodyStart(b byte) bool {
	switch {
	case b == '{':
		return true
	case b >= 0xA0 && b <= 0xBA: // CBOR major type 5 map headers
		return true
	case b >= 0x80 && b <= 0x8F: // MessagePack fixmap
		return true
	case b == 0xDE || b == 0xDF: // MessagePack map16/map32
		return true
	}
	return false
}

// Run drains every fully-available message in the buffer through proc,
// stopping as soon as Step reports NeedMore. It returns one note per
// resynchronization encountered, for the driver to turn into cues. Turning
// notes into cues is Kevery's concern; this package only reports what it
// had to skip.
func (p *Parser) Run(proc Processor) []string {
	var notes []string
	for {
		msg, res, err := p.Step()
		switch res {
		case NeedMore:
			return notes
		case Resynced:
			notes = append(notes, err.Error())
		case Yielded:
			if perr := proc.Process(msg.Serder, msg.Sigs, msg.Receipts); perr != nil {
				p.log.Infof("parser: processor rejected message: %v", perr)
			}
		}
	}
}
