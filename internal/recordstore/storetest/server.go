// Package storetest provides an in-memory implementation of the record
// store REST dialect for tests and local development. It mirrors the
// behaviour the client depends on: per-collection mappings from
// generated key to record, JSON null for paths that were never written,
// POST responses carrying the generated key, and shallow field merges
// on PATCH.
package storetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store is an in-memory record store speaking the same REST dialect as
// the remote one.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]json.RawMessage),
	}
}

// Router returns a gin router serving the store.
func (s *Store) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/:collection", s.listCollection)
	r.POST("/:collection", s.createRecord)
	r.GET("/:collection/:key", s.getRecord)
	r.PUT("/:collection/:key", s.replaceRecord)
	r.PATCH("/:collection/:key", s.patchRecord)
	r.DELETE("/:collection/:key", s.deleteRecord)
	return r
}

// NewServer starts an httptest server around a fresh store. The caller
// must Close the returned server.
func NewServer() (*Store, *httptest.Server) {
	store := New()
	return store, httptest.NewServer(store.Router())
}

// Seed inserts a record under a fixed key and returns that key.
func (s *Store) Seed(collection, key string, record any) string {
	data, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][key] = data
	return key
}

// Count returns the number of records in a collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Record unmarshals the record at key into v and reports whether the
// key exists.
func (s *Store) Record(collection, key string, v any) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		panic(err)
	}
	return true
}

func (s *Store) listCollection(c *gin.Context) {
	collection, ok := pathName(c, "collection")
	if !ok {
		return
	}

	s.mu.RLock()
	records := s.collections[collection]
	s.mu.RUnlock()

	// Absent collections answer null, like the real store.
	if len(records) == 0 {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Store) createRecord(c *gin.Context) {
	collection, ok := pathName(c, "collection")
	if !ok {
		return
	}

	record, ok := readRecord(c)
	if !ok {
		return
	}

	key := uuid.NewString()

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][key] = record
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"name": key})
}

func (s *Store) getRecord(c *gin.Context) {
	collection, key, ok := recordPath(c)
	if !ok {
		return
	}

	s.mu.RLock()
	record, exists := s.collections[collection][key]
	s.mu.RUnlock()

	if !exists {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	c.Data(http.StatusOK, "application/json", record)
}

func (s *Store) replaceRecord(c *gin.Context) {
	collection, key, ok := recordPath(c)
	if !ok {
		return
	}

	record, ok := readRecord(c)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][key] = record
	s.mu.Unlock()

	c.Data(http.StatusOK, "application/json", record)
}

func (s *Store) patchRecord(c *gin.Context) {
	collection, key, ok := recordPath(c)
	if !ok {
		return
	}

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]json.RawMessage)
	if data, ok := s.collections[collection][key]; ok {
		if err := json.Unmarshal(data, &existing); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stored record is not an object"})
			return
		}
	}
	for name, value := range fields {
		existing[name] = value
	}

	merged, err := json.Marshal(existing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][key] = merged
	c.Data(http.StatusOK, "application/json", merged)
}

func (s *Store) deleteRecord(c *gin.Context) {
	collection, key, ok := recordPath(c)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.collections[collection], key)
	s.mu.Unlock()

	c.Data(http.StatusOK, "application/json", []byte("null"))
}

// pathName extracts a path segment and strips the dialect's mandatory
// ".json" suffix.
func pathName(c *gin.Context, param string) (string, bool) {
	name := strings.TrimSuffix(c.Param(param), ".json")
	if name == "" || name == c.Param(param) {
		c.JSON(http.StatusNotFound, gin.H{"error": "path must end in .json"})
		return "", false
	}
	return name, true
}

func recordPath(c *gin.Context) (collection, key string, ok bool) {
	collection = c.Param("collection")
	key, ok = pathName(c, "key")
	if !ok {
		return "", "", false
	}
	return collection, key, true
}

func readRecord(c *gin.Context) (json.RawMessage, bool) {
	var record json.RawMessage
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return nil, false
	}
	return record, true
}
