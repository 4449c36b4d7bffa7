package ident

import (
	"crypto/sha256"

	"golang.org/x/text/unicode/norm"
)

// DomainPointer separates pointer names from blob content so a pointer
// slot can never collide with the id of a stored blob by accident.
const DomainPointer = "pend/pointer/v1"

// Sum returns the ContentID of data.
func Sum(data []byte) ContentID {
	h := sha256.New()
	h.Write(data)
	return FromHash(h)
}

// PointerFor derives a well-known pointer identifier from a human name.
// Format: SHA256(domain + 0x00 + NFC(name)). Names are NFC normalized so
// that composed and decomposed spellings select the same slot.
func PointerFor(name string) ContentID {
	h := sha256.New()
	h.Write([]byte(DomainPointer))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(name)))
	return FromHash(h)
}
