package intern

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// StructuralHash folds a sequence of strings into a fixed-size digest
// usable as a map key. It underlies the intern keys for OrderingList and
// the PropertyFilterList memo: two structurally identical sequences of
// (property path, direction) or (property, operator, value) tokens hash
// identically regardless of where in the program they were built, so
// unrelated callers still land on the same interned instance.
type StructuralHash [32]byte

// HashTokens hashes an ordered list of tokens. Callers are responsible for
// choosing tokens that fully determine structural identity — e.g. for an
// OrderingList, "<typeName>\x00<prop>\x00<direction>" per entry.
func HashTokens(tokens ...string) StructuralHash {
	h, _ := blake2b.New256(nil)
	var lenBuf [8]byte
	for _, tok := range tokens {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(tok)))
		h.Write(lenBuf[:])
		h.Write([]byte(tok))
	}
	var out StructuralHash
	copy(out[:], h.Sum(nil))
	return out
}
