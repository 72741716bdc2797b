// Package transport implements tallow's transport facade: a single
// PeerChannel abstraction over DirectQUIC, RelayQUIC, and ProxiedTcpTls,
// plus the connection-strategy fallback ladder that picks between them.
package transport

import (
	"io"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/wire"
)

// PeerChannel is the uniform interface every transport variant
// implements. Message framing (length prefix + tagged union) is identical
// across variants; only the underlying byte transport differs.
type PeerChannel interface {
	SendMessage(msg wire.Message) error
	ReceiveMessage() (wire.Message, error)
	Close() error
	Description() string
}

// framedChannel wraps a raw io.ReadWriteCloser with the wire codec,
// shared by every concrete transport so framing logic lives in one place.
type framedChannel struct {
	rw          io.ReadWriteCloser
	dec         *wire.Decoder
	readBuf     []byte
	description string
}

func newFramedChannel(rw io.ReadWriteCloser, description string) *framedChannel {
	return &framedChannel{
		rw:          rw,
		dec:         wire.NewDecoder(),
		readBuf:     make([]byte, 32*1024),
		description: description,
	}
}

func (f *framedChannel) SendMessage(msg wire.Message) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	if _, err := f.rw.Write(frame); err != nil {
		return errs.Wrap(errs.TransportFailure, "write frame", err)
	}
	return nil
}

func (f *framedChannel) ReceiveMessage() (wire.Message, error) {
	for {
		msg, err := f.dec.Next()
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
		n, err := f.rw.Read(f.readBuf)
		if n > 0 {
			f.dec.Push(f.readBuf[:n])
		}
		if err != nil {
			return nil, errs.Wrap(errs.TransportFailure, "read frame", err)
		}
	}
}

func (f *framedChannel) Close() error {
	return f.rw.Close()
}

func (f *framedChannel) Description() string {
	return f.description
}
