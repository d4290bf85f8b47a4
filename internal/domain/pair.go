package domain

import (
	"strings"

	"github.com/google/uuid"
)

// PairKey is the order-independent key of an unordered user pair. Both
// connections and chats carry it under a UNIQUE constraint.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if strings.Compare(as, bs) > 0 {
		as, bs = bs, as
	}
	return as + ":" + bs
}
