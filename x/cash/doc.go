/*
Package cash is the ledger holding the native currency balance of every
account.

There is no logic in the coins, except that the balance of any account may
not go below zero and may not exceed 256 bits. Thus, this implementation is
referred to as cash. Simple and safe.

Payment channels keep the deposit of each channel in a separate escrow
account, so the ledger is the only custody of funds.
*/
package cash
