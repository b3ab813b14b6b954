// Package indexer maintains secondary indexes over committed operations so
// clients can query tokens by creator without scanning full state.
package indexer

import (
	"encoding/json"
	"errors"

	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/events"
	"github.com/tolelom/curvemarket/storage"
)

const prefixCreatorTokens = "idx:creator:token:"

// Indexer subscribes to market events and updates secondary lookup tables.
type Indexer struct {
	db storage.DB
}

// New creates an Indexer backed by db and subscribes to relevant events.
func New(db storage.DB, emitter *events.Emitter) *Indexer {
	idx := &Indexer{db: db}
	emitter.Subscribe(events.EventTokenMinted, idx.onTokenMinted)
	return idx
}

// GetTokensByCreator returns all token ids minted by the given pubkey.
func (idx *Indexer) GetTokensByCreator(creator string) ([]uint64, error) {
	return idx.getList(prefixCreatorTokens + creator)
}

// ---- event handlers ----

func (idx *Indexer) onTokenMinted(ev events.Event) {
	creator, _ := ev.Data["creator"].(string)
	id, ok := ev.Data["token_id"].(uint64)
	if creator == "" || !ok {
		return
	}
	_ = idx.addToList(prefixCreatorTokens+creator, id)
}

// ---- list storage ----

func (idx *Indexer) getList(key string) ([]uint64, error) {
	data, err := idx.db.Get([]byte(key))
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []uint64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (idx *Indexer) addToList(key string, id uint64) error {
	ids, err := idx.getList(key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return idx.db.Set([]byte(key), data)
}
