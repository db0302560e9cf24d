/*
Package crypto implements the keys and recoverable signatures used to
authorize channel payments.

Keys are secp256k1. An account address is the last 20 bytes of the
keccak256 hash of the uncompressed public key, without its 0x04 tag.
Signatures are (r, s, v) triples from which the signing public key can be
recovered given the signed digest. Every signature carries the scheme it
was produced with and recovery is dispatched on that tag explicitly.
*/
package crypto
