package paychan

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/weavetest"
	"github.com/iov-one/unichan/weavetest/assert"
	"github.com/iov-one/unichan/x/cash"
)

func TestChannelSurvivesRestart(t *testing.T) {
	db, reopen, cleanup := weavetest.CommitKVStore(t)
	defer cleanup()

	var (
		bank      = cash.NewController()
		auth      = unichan.CtxAuth{Key: "paychan"}
		clk       = weavetest.NewClock()
		sender    = weavetest.NewKey()
		recipient = weavetest.NewKey()
	)

	assert.Nil(t, bank.IssueCoins(db, sender.Address(), big.NewInt(50)))
	ctrl := NewController(db, auth, bank, WithClock(clk))

	msg, err := NewCreateMsg(recipient.Address(), 3600, big.NewInt(20), "rent")
	assert.Nil(t, err)
	id, err := ctrl.Create(auth.SetSigners(context.Background(), sender.Address()), msg)
	assert.Nil(t, err)

	committed, err := db.Commit()
	assert.Nil(t, err)
	db.Close()

	db = reopen()
	defer db.Close()
	assert.Equal(t, committed, db.LatestVersion())

	ctrl = NewController(db, auth, bank, WithClock(clk))
	held, err := ctrl.HeldBalance(id)
	assert.Nil(t, err)
	assert.AmountEqual(t, 20, held)

	v, err := Authorize(sender, id, big.NewInt(7))
	assert.Nil(t, err)
	weavetest.Advance(clk, time.Minute)
	assert.Nil(t, ctrl.Close(auth.SetSigners(context.Background(), recipient.Address()), v.CloseMsg()))

	_, err = db.Commit()
	assert.Nil(t, err)

	got, err := bank.Balance(db, recipient.Address())
	assert.Nil(t, err)
	assert.AmountEqual(t, 7, got)
	got, err = bank.Balance(db, sender.Address())
	assert.Nil(t, err)
	assert.AmountEqual(t, 43, got)
}
