package paychan

import (
	"context"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan/errors"
)

// Mailbox carries encoded vouchers from a sender to a recipient. It stands
// in for any transport between the two parties, the channel controller
// never uses it.
type Mailbox struct {
	once   sync.Once
	queue  chan []byte
	closed chan struct{}
}

// NewMailbox returns a mailbox that buffers up to size vouchers.
func NewMailbox(size int) *Mailbox {
	return &Mailbox{
		queue:  make(chan []byte, size),
		closed: make(chan struct{}),
	}
}

// Send delivers a voucher. It blocks while the mailbox is full.
func (m *Mailbox) Send(ctx context.Context, v *AuthorizedAmount) error {
	raw, err := proto.Marshal(v)
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "marshal voucher: %s", err)
	}
	select {
	case <-m.closed:
		return errors.Wrap(errors.ErrState, "mailbox closed")
	default:
	}
	select {
	case m.queue <- raw:
		return nil
	case <-m.closed:
		return errors.Wrap(errors.ErrState, "mailbox closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next voucher. It blocks until one is available, the
// mailbox is closed or the context is done.
func (m *Mailbox) Receive(ctx context.Context) (*AuthorizedAmount, error) {
	select {
	case raw := <-m.queue:
		var v AuthorizedAmount
		if err := proto.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrapf(errors.ErrModel, "unmarshal voucher: %s", err)
		}
		return &v, nil
	case <-m.closed:
		return nil, errors.Wrap(errors.ErrState, "mailbox closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the mailbox. Pending vouchers may be dropped.
func (m *Mailbox) Close() {
	m.once.Do(func() { close(m.closed) })
}
