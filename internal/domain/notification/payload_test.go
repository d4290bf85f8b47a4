package notification

import (
	"errors"
	"strings"
	"testing"

	"circles/internal/domain/prompt"

	"github.com/google/uuid"
)

func TestEncodeUsesWireFieldNames(t *testing.T) {
	data, version, err := Encode(MemberJoined{
		GroupID:    uuid.New(),
		GroupName:  "Hikers",
		MemberID:   uuid.New(),
		MemberName: "Ana",
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	for _, field := range []string{`"groupId"`, `"groupName":"Hikers"`, `"memberId"`, `"memberName":"Ana"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("payload %s missing %s", data, field)
		}
	}
}

func TestDecodeReturnsTypedVariant(t *testing.T) {
	from := uuid.New()
	data, version, err := Encode(FriendRequestDeclined{FromUserID: from, FromName: "Bo"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	p, err := Decode(TypeFriendRequestDeclined, version, data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := p.(FriendRequestDeclined)
	if !ok {
		t.Fatalf("Decode returned %T, want FriendRequestDeclined", p)
	}
	if got.FromUserID != from || got.FromName != "Bo" {
		t.Errorf("payload = %+v", got)
	}
}

func TestDecodeAcceptsOlderPromptPayloads(t *testing.T) {
	p, err := Decode(TypeVotingOpen, 1, []byte(`{}`))
	if err != nil {
		t.Fatalf("Decode v1: %v", err)
	}
	if v, ok := p.(VotingOpen); !ok || v.PromptID != uuid.Nil {
		t.Errorf("Decode v1 = %#v", p)
	}
}

func TestDecodeRejectsUnknownTypeAndFutureVersion(t *testing.T) {
	if _, err := Decode("poke", 1, []byte(`{}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type: err = %v, want ErrUnknownType", err)
	}
	if _, err := Decode(TypeGroupDeleted, 9, []byte(`{}`)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("future version: err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestEveryTypeHasAVariant(t *testing.T) {
	for typ := range schemaVersions {
		p, err := Decode(typ, SchemaVersion(typ), nil)
		if err != nil {
			t.Errorf("Decode(%s): %v", typ, err)
			continue
		}
		if p.Type() != typ {
			t.Errorf("Decode(%s) returned a %s payload", typ, p.Type())
		}
	}
}

func TestForDispatch(t *testing.T) {
	id := uuid.New()
	p, err := ForDispatch(prompt.DispatchClosingSoon, id)
	if err != nil {
		t.Fatalf("ForDispatch: %v", err)
	}
	if got, ok := p.(PromptClosingSoon); !ok || got.PromptID != id {
		t.Errorf("ForDispatch = %#v", p)
	}
}
