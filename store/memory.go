package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// MemoryStore is an in-process adapter used by tests and local tooling. It
// keeps documents as JSON so filter matching and decoding behave exactly like
// the SQLite adapter.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[string]*memoryCollection
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{colls: map[string]*memoryCollection{}}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.colls[name]; ok {
		return c
	}
	c := &memoryCollection{name: name, docs: map[string]map[string]interface{}{}}
	s.colls[name] = c
	return c
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

type memoryCollection struct {
	name string

	mu   sync.RWMutex
	ids  []string // insertion order
	docs map[string]map[string]interface{}
}

// jsonValue round-trips v through encoding/json so all values use JSON's type
// system (numbers become float64) and compare cleanly with stored documents.
func jsonValue(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *memoryCollection) matches(doc map[string]interface{}, filter Filter) (bool, error) {
	for k, v := range filter {
		want, err := jsonValue(v)
		if err != nil {
			return false, err
		}
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	id, _ := m["_id"].(string)
	if id == "" {
		return fmt.Errorf("document for %s is missing an _id", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		c.ids = append(c.ids, id)
	}
	c.docs[id] = m
	return nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.ids {
		ok, err := c.matches(c.docs[id], filter)
		if err != nil {
			return err
		}
		if ok {
			raw, err := json.Marshal(c.docs[id])
			if err != nil {
				return err
			}
			return json.Unmarshal(raw, out)
		}
	}
	return ErrNoDocuments
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter, out interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var docs []json.RawMessage
	for _, id := range c.ids {
		ok, err := c.matches(c.docs[id], filter)
		if err != nil {
			return err
		}
		if ok {
			raw, err := json.Marshal(c.docs[id])
			if err != nil {
				return err
			}
			docs = append(docs, raw)
		}
	}
	return decodeList(docs, out)
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter Filter, set map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.ids {
		ok, err := c.matches(c.docs[id], filter)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for k, v := range set {
			val, err := jsonValue(v)
			if err != nil {
				return 0, err
			}
			c.docs[id][k] = val
		}
		return 1, nil
	}
	return 0, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, id := range c.ids {
		ok, err := c.matches(c.docs[id], filter)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		delete(c.docs, id)
		c.ids = append(c.ids[:i], c.ids[i+1:]...)
		return 1, nil
	}
	return 0, nil
}

func (c *memoryCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, id := range c.ids {
		ok, err := c.matches(c.docs[id], filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}
