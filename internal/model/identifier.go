package model

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IdentifierKind tags which lookup regime an identifier belongs to.
type IdentifierKind int

const (
	IdentifierInvalid IdentifierKind = iota
	IdentifierNative
	IdentifierLegacy
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentifierNative:
		return "native"
	case IdentifierLegacy:
		return "legacy"
	default:
		return "invalid"
	}
}

// Identifier is a caller-supplied product identifier after parsing.
//
// Native is set for store-generated keys. HasLegacy/Legacy are set whenever
// the raw value is a base-10 integer, so a resolver can fall back to the
// legacy numeric id after a native miss.
type Identifier struct {
	Raw       string
	Kind      IdentifierKind
	Native    uuid.UUID
	Legacy    int64
	HasLegacy bool
}

// ParseIdentifier classifies raw as a native key, a legacy numeric id, or neither.
func ParseIdentifier(raw string) Identifier {
	raw = strings.TrimSpace(raw)
	id := Identifier{Raw: raw}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		id.Legacy = n
		id.HasLegacy = true
		id.Kind = IdentifierLegacy
	}

	// uuid.Parse also accepts urn: and braced forms; only the canonical
	// 36-char and 32-char hex shapes are treated as native keys.
	if len(raw) == 36 || len(raw) == 32 {
		if u, err := uuid.Parse(raw); err == nil {
			id.Native = u
			id.Kind = IdentifierNative
		}
	}

	return id
}
