// Package cachebus broadcasts plan-cache invalidation events between
// QueryEngine instances sharing a catalog (e.g. multiple processes
// serving the same record types against the same storage): when one
// process's catalog changes in a way that invalidates cached plans (an
// index added or dropped), it publishes an Invalidate message and every
// other subscribed engine drops its affected cache entries.
package cachebus

import (
	"encoding/json"
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	_ "go.nanomsg.org/mangos/v3/transport/tcp"
)

// Invalidate names the record type whose indexes changed; receivers
// should drop every plan-cache entry keyed under that type.
type Invalidate struct {
	RecordType string `json:"recordType"`
}

// Publisher broadcasts invalidation events over a mangos PUB socket.
type Publisher struct {
	sock mangos.Socket
}

// NewPublisher binds a PUB socket at addr (e.g. "tcp://0.0.0.0:40899").
func NewPublisher(addr string) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("cachebus: new pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("cachebus: listen %s: %w", addr, err)
	}
	return &Publisher{sock: sock}, nil
}

// Publish broadcasts an invalidation for recordType to every subscriber.
func (p *Publisher) Publish(recordType string) error {
	data, err := json.Marshal(Invalidate{RecordType: recordType})
	if err != nil {
		return fmt.Errorf("cachebus: marshal: %w", err)
	}
	return p.sock.Send(data)
}

// Close releases the publisher's socket.
func (p *Publisher) Close() error { return p.sock.Close() }

// Subscriber receives invalidation events over a mangos SUB socket and
// invokes onInvalidate for each one.
type Subscriber struct {
	sock mangos.Socket
}

// NewSubscriber dials addr and subscribes to every topic.
func NewSubscriber(addr string) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("cachebus: new sub socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("cachebus: dial %s: %w", addr, err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte("")); err != nil {
		sock.Close()
		return nil, fmt.Errorf("cachebus: subscribe: %w", err)
	}
	return &Subscriber{sock: sock}, nil
}

// Run blocks, invoking onInvalidate for every received message, until
// the socket is closed.
func (s *Subscriber) Run(onInvalidate func(Invalidate)) error {
	for {
		msg, err := s.sock.Recv()
		if err != nil {
			if err == mangos.ErrClosed {
				return nil
			}
			return fmt.Errorf("cachebus: recv: %w", err)
		}
		var inv Invalidate
		if err := json.Unmarshal(msg, &inv); err != nil {
			continue
		}
		onInvalidate(inv)
	}
}

// Close releases the subscriber's socket.
func (s *Subscriber) Close() error { return s.sock.Close() }
