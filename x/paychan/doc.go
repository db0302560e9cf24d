/*
Package paychan implements a unidirectional payment channel.

A sender locks a deposit in an escrow account that belongs to the channel.
Off the chain the sender hands out signed vouchers, each authorizing an
increasing cumulative amount to a fixed recipient. The recipient can close
the channel at any time using the best voucher it holds: the authorized
amount is paid to the recipient and the remainder returns to the sender. If
the recipient never closes the channel, anyone can release the whole deposit
back to the sender once the channel expired.

Vouchers sign the channel escrow address together with the cumulative
amount, so a voucher cannot be replayed on another channel. The signed bytes
follow the personal message convention

	keccak256("\x19Ethereum Signed Message:\n32" || keccak256(address || uint256(amount)))

and signatures are secp256k1 (r, s, v) triples from which the signer
address is recovered.

Except creation and final closing, all payment channel operations are made
off the chain and therefore are very fast and cheap to execute.

*/
package paychan
