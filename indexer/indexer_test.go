package indexer

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tolelom/curvemarket/events"
	"github.com/tolelom/curvemarket/internal/testutil"
)

func TestCreatorIndexFollowsMintEvents(t *testing.T) {
	emitter := events.NewEmitter(zerolog.Nop())
	idx := New(testutil.NewMemDB(), emitter)

	emitter.Emit(events.Event{
		Type: events.EventTokenMinted,
		Data: map[string]any{"token_id": uint64(0), "creator": "aa"},
	})
	emitter.Emit(events.Event{
		Type: events.EventTokenMinted,
		Data: map[string]any{"token_id": uint64(1), "creator": "bb"},
	})
	emitter.Emit(events.Event{
		Type: events.EventTokenMinted,
		Data: map[string]any{"token_id": uint64(2), "creator": "aa"},
	})
	// Duplicate delivery must not duplicate the entry.
	emitter.Emit(events.Event{
		Type: events.EventTokenMinted,
		Data: map[string]any{"token_id": uint64(2), "creator": "aa"},
	})

	ids, err := idx.GetTokensByCreator("aa")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []uint64{0, 2}) {
		t.Errorf("aa tokens: %v", ids)
	}

	ids, err = idx.GetTokensByCreator("bb")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []uint64{1}) {
		t.Errorf("bb tokens: %v", ids)
	}
}

func TestUnknownCreatorHasNoTokens(t *testing.T) {
	idx := New(testutil.NewMemDB(), events.NewEmitter(zerolog.Nop()))

	ids, err := idx.GetTokensByCreator("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no tokens, got %v", ids)
	}
}

func TestMalformedEventIsIgnored(t *testing.T) {
	emitter := events.NewEmitter(zerolog.Nop())
	idx := New(testutil.NewMemDB(), emitter)

	// Missing creator and a token_id of the wrong dynamic type.
	emitter.Emit(events.Event{Type: events.EventTokenMinted, Data: map[string]any{"token_id": uint64(5)}})
	emitter.Emit(events.Event{Type: events.EventTokenMinted, Data: map[string]any{"token_id": "5", "creator": "aa"}})

	ids, err := idx.GetTokensByCreator("aa")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("malformed events must not index anything, got %v", ids)
	}
}
