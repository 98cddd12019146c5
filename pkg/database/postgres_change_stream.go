package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

type pgChangeStream struct {
	lock    sync.Mutex
	conn    *pgxpool.Conn
	channel string
	closed  bool
}

// Next waits for the next notification on our channel.
//
// A payload that isn't an event returns an ErrInvalidArg error; the stream is still usable.
func (p *pgChangeStream) Next(ctx context.Context) (*structs.Event, error) {
	p.lock.Lock()
	closed := p.closed
	p.lock.Unlock()
	if closed {
		return nil, nil
	}

	notification, err := p.conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return nil, err
	}

	evt := &structs.Event{}
	err = json.Unmarshal([]byte(notification.Payload), evt)
	if err != nil {
		return nil, fmt.Errorf("%w malformed event on channel %s: %v", errors.ErrInvalidArg, p.channel, err)
	}
	return evt, nil
}

func (p *pgChangeStream) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	// the connection returns to the pool, so stop it receiving our notifications
	_, err := p.conn.Exec(context.Background(), "UNLISTEN *")
	p.conn.Release()
	return err
}
