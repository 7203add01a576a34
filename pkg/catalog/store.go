package catalog

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	json "github.com/goccy/go-json"
)

// ErrGameNotFound is returned by Store.Get for an unknown app id.
var ErrGameNotFound = errors.New("game not found")

var gamePrefix = []byte("game/")

// Store persists games keyed by app id.
type Store struct {
	db *pebble.DB
}

// OpenStore opens or creates a store in dir.
func OpenStore(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening catalog store: %w", err)
	}
	return &Store{db: db}, nil
}

func gameKey(appID string) []byte {
	return append(append([]byte(nil), gamePrefix...), appID...)
}

// Put stores g, replacing any game with the same app id.
func (s *Store) Put(g Game) error {
	if g.AppID == "" {
		return errors.New("game has no app id")
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding game %s: %w", g.AppID, err)
	}
	if err := s.db.Set(gameKey(g.AppID), data, pebble.NoSync); err != nil {
		return fmt.Errorf("saving game %s: %w", g.AppID, err)
	}
	return nil
}

// SaveAll stores games in one batch.
func (s *Store) SaveAll(games []Game) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, g := range games {
		if g.AppID == "" {
			continue
		}
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encoding game %s: %w", g.AppID, err)
		}
		if err := batch.Set(gameKey(g.AppID), data, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// Get returns the game stored under appID.
func (s *Store) Get(appID string) (Game, error) {
	data, closer, err := s.db.Get(gameKey(appID))
	if errors.Is(err, pebble.ErrNotFound) {
		return Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, appID)
	}
	if err != nil {
		return Game{}, err
	}
	defer closer.Close()

	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return Game{}, fmt.Errorf("decoding game %s: %w", appID, err)
	}
	return g, nil
}

// List returns every stored game ordered by app id.
func (s *Store) List() ([]Game, error) {
	upper := append([]byte(nil), gamePrefix...)
	upper[len(upper)-1]++
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: gamePrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	games := make([]Game, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		var g Game
		if err := json.Unmarshal(iter.Value(), &g); err != nil {
			return nil, fmt.Errorf("decoding game %s: %w", iter.Key()[len(gamePrefix):], err)
		}
		games = append(games, g)
	}
	return games, iter.Error()
}

// Delete removes the game stored under appID.
func (s *Store) Delete(appID string) error {
	return s.db.Delete(gameKey(appID), pebble.NoSync)
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}
