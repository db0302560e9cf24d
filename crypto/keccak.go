package crypto

import "golang.org/x/crypto/sha3"

// HashSize is the length of a keccak256 digest.
const HashSize = 32

// Keccak256 returns the legacy keccak256 digest of all given chunks
// concatenated.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}
