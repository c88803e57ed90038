package statemachine

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/tickfsm/hashing"
)

// Kind tags an identifier family. Two identifiers can only be the same when
// they belong to the same family, so enum values of different enum types never
// collide even when their integer values do.
type Kind uint32

const (
	// KindNone is the kind of the zero Identifier.
	KindNone Kind = iota
	// KindName is the kind of string-backed identifiers created by Named.
	KindName

	firstCustomKind
)

var (
	nextKind   atomic.Uint32 //nolint:gochecknoglobals
	kindLabels sync.Map      //nolint:gochecknoglobals
)

// NewKind allocates a fresh identifier family. Call it once per enum type,
// typically in a package-level var.
func NewKind(label string) Kind {
	kind := firstCustomKind + Kind(nextKind.Add(1)-1)
	kindLabels.Store(kind, label)

	return kind
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindName:
		return "name"
	}

	if label, ok := kindLabels.Load(k); ok {
		s, _ := label.(string)

		return s
	}

	return "kind(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// Enumeration is satisfied by integer enum types with a String method.
type Enumeration interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32
	fmt.Stringer
}

// Identifier is a comparable tag attached to a state or a transition.
// The zero value means "no identifier".
type Identifier struct {
	kind Kind
	id   int64
	name string
}

// Named returns a string-backed identifier. Its numeric id is the xxh3 hash of
// name, so two Named identifiers are the same iff their names hash equally.
func Named(name string) Identifier {
	return Identifier{
		kind: KindName,
		id:   int64(hashing.Sum64(name)), //nolint:gosec // bit pattern reuse is intended
		name: name,
	}
}

// Enum returns an enum-backed identifier in the given family.
func Enum[T Enumeration](kind Kind, value T) Identifier {
	return Identifier{
		kind: kind,
		id:   int64(value),
		name: value.String(),
	}
}

// Kind returns the identifier family.
func (i Identifier) Kind() Kind {
	return i.kind
}

// ID returns the numeric id within the family.
func (i Identifier) ID() int64 {
	return i.id
}

// Name returns the human-readable name.
func (i Identifier) Name() string {
	return i.name
}

// IsZero reports whether the identifier is unset.
func (i Identifier) IsZero() bool {
	return i.kind == KindNone
}

// Same reports whether both identifiers are set and share kind and id.
// Display names are not compared.
func (i Identifier) Same(other Identifier) bool {
	if i.IsZero() || other.IsZero() {
		return false
	}

	return i.kind == other.kind && i.id == other.id
}

func (i Identifier) String() string {
	if i.IsZero() {
		return "<none>"
	}

	return i.name
}
