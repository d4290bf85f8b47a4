package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	if PairKey(a, b) != PairKey(b, a) {
		t.Errorf("PairKey(a, b) = %q, PairKey(b, a) = %q", PairKey(a, b), PairKey(b, a))
	}
	if PairKey(a, b) == PairKey(a, uuid.New()) {
		t.Error("distinct pairs produced the same key")
	}
}
