package paychan

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/weavetest"
	"github.com/iov-one/unichan/weavetest/assert"
)

func TestMailboxDelivery(t *testing.T) {
	key := weavetest.NewKey()
	id := weavetest.SequenceID(1)
	mailbox := NewMailbox(3)
	defer mailbox.Close()

	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		v, err := Authorize(key, id, big.NewInt(i))
		assert.Nil(t, err)
		assert.Nil(t, mailbox.Send(ctx, v))
	}

	for i := int64(1); i <= 3; i++ {
		v, err := mailbox.Receive(ctx)
		assert.Nil(t, err)
		assert.AmountEqual(t, i, v.PaymentAmount())
		assert.Nil(t, v.Verify(key.Address()))
	}
}

func TestMailboxConcurrentSenders(t *testing.T) {
	key := weavetest.NewKey()
	id := weavetest.SequenceID(1)
	mailbox := NewMailbox(0)
	defer mailbox.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const senders = 10
	errc := make(chan error, senders)
	for i := 0; i < senders; i++ {
		go func(amount int64) {
			v, err := Authorize(key, id, big.NewInt(amount))
			if err != nil {
				errc <- err
				return
			}
			errc <- mailbox.Send(ctx, v)
		}(int64(i + 1))
	}

	var total int64
	for i := 0; i < senders; i++ {
		v, err := mailbox.Receive(ctx)
		assert.Nil(t, err)
		total += v.PaymentAmount().Int64()
	}
	for i := 0; i < senders; i++ {
		assert.Nil(t, <-errc)
	}
	assert.Equal(t, int64(55), total)
}

func TestMailboxCancellation(t *testing.T) {
	mailbox := NewMailbox(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := mailbox.Receive(ctx); err != context.DeadlineExceeded {
		t.Fatalf("want deadline error, got %v", err)
	}

	v, err := Authorize(weavetest.NewKey(), weavetest.SequenceID(1), big.NewInt(1))
	assert.Nil(t, err)
	assert.Nil(t, mailbox.Send(context.Background(), v))

	full, cancelFull := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelFull()
	if err := mailbox.Send(full, v); err != context.DeadlineExceeded {
		t.Fatalf("want deadline error, got %v", err)
	}

	mailbox.Close()
	mailbox.Close()
	err = mailbox.Send(context.Background(), v)
	assert.IsErr(t, errors.ErrState, err)
}
