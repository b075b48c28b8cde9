package sched

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// identTag discriminates the identity union.
type identTag uint8

const (
	identNone identTag = iota
	identStatic
	identHashed
	identNumeric
)

// Ident names a scheduled item for replacement and cancellation. It is a
// tagged union over three naming schemes; idents match only when both the
// scheme and the value are equal. The zero Ident is anonymous: anonymous
// items are never matched, so they neither replace one another nor cancel.
type Ident struct {
	tag identTag
	str string
	num uint64
}

// StaticName identifies an item by a string compared by content. Intended
// for compile-time constant names.
func StaticName(name string) Ident {
	return Ident{tag: identStatic, str: name}
}

// HashedName identifies an item by the 64-bit hash of a dynamically built
// string. The string itself is not retained; a hashed name never matches a
// static name, even for equal source strings.
func HashedName(name string) Ident {
	return Ident{tag: identHashed, num: xxhash.Sum64String(name)}
}

// NumericID identifies an item by a raw numeric id.
func NumericID(id uint64) Ident {
	return Ident{tag: identNumeric, num: id}
}

// equal reports whether two idents carry the same scheme and value.
func (id Ident) equal(other Ident) bool {
	if id.tag != other.tag {
		return false
	}
	switch id.tag {
	case identStatic:
		return id.str == other.str
	case identHashed, identNumeric:
		return id.num == other.num
	default:
		return false
	}
}

// String renders the ident for diagnostics.
func (id Ident) String() string {
	switch id.tag {
	case identStatic:
		return id.str
	case identHashed:
		return fmt.Sprintf("hash:%016x", id.num)
	case identNumeric:
		return fmt.Sprintf("id:%d", id.num)
	default:
		return "anonymous"
	}
}
