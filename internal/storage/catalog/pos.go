package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/pkg/logger"
)

var ErrItemNotFound = errors.New("pos item not found")

// POSStore owns the mutable point-of-sale catalog. All access goes
// through the store; writes are serialized by the mutex and persisted
// with a temp-file + rename so readers never observe a partial file.
type POSStore struct {
	path string

	mu      sync.RWMutex
	catalog models.POSCatalog
	version uint64
}

func LoadPOS(path string) (*POSStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pos dataset: %w", err)
	}

	var catalog models.POSCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse pos dataset: %w", err)
	}

	items := 0
	for _, g := range catalog.Groups {
		for _, l := range g.Locations {
			items += len(l.Items)
		}
	}

	logger.Info("POS catalog loaded",
		zap.String("path", path),
		zap.Int("groups", len(catalog.Groups)),
		zap.Int("items", items),
	)

	return &POSStore{path: path, catalog: catalog}, nil
}

// NewPOSStore builds a store around an in-memory catalog (tests). A
// non-empty path enables persistence.
func NewPOSStore(catalog models.POSCatalog, path string) *POSStore {
	return &POSStore{path: path, catalog: catalog}
}

// Snapshot returns a deep copy of the catalog for lock-free traversal.
func (s *POSStore) Snapshot() models.POSCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := models.POSCatalog{Groups: make([]models.POSGroup, len(s.catalog.Groups))}
	for i, g := range s.catalog.Groups {
		cg := models.POSGroup{Name: g.Name, Locations: make([]models.POSLocation, len(g.Locations))}
		for j, l := range g.Locations {
			cl := models.POSLocation{Name: l.Name, Items: make([]models.POSItem, len(l.Items))}
			copy(cl.Items, l.Items)
			cg.Locations[j] = cl
		}
		out.Groups[i] = cg
	}
	return out
}

// Version increases by one on every successful update.
func (s *POSStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// FindItem resolves an item by exact case-insensitive (group, location,
// item) names and returns a snapshot of it.
func (s *POSStore) FindItem(group, location, item string) (models.ItemResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it := s.findLocked(group, location, item)
	if it == nil {
		return models.ItemResult{}, false
	}
	return models.ItemResult{ID: it.ID, Name: it.Name, Price: it.Price, Discount: it.Discount}, true
}

// UpdateItemPrice replaces the item's price and persists the whole
// catalog atomically. Returns the previous price and the updated item.
func (s *POSStore) UpdateItemPrice(group, location, item string, price float64) (float64, models.ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(group, location, item)
	if it == nil {
		return 0, models.ItemResult{}, ErrItemNotFound
	}

	oldPrice := it.Price
	it.Price = price

	if err := s.persistLocked(); err != nil {
		// Roll back the in-memory change so memory and disk never diverge.
		it.Price = oldPrice
		return 0, models.ItemResult{}, fmt.Errorf("failed to persist pos catalog: %w", err)
	}

	s.version++

	logger.Info("POS item price updated",
		zap.String("group", group),
		zap.String("location", location),
		zap.String("item", it.Name),
		zap.Float64("old_price", oldPrice),
		zap.Float64("new_price", price),
	)

	return oldPrice, models.ItemResult{ID: it.ID, Name: it.Name, Price: it.Price, Discount: it.Discount}, nil
}

func (s *POSStore) findLocked(group, location, item string) *models.POSItem {
	for i := range s.catalog.Groups {
		g := &s.catalog.Groups[i]
		if !strings.EqualFold(g.Name, group) {
			continue
		}
		for j := range g.Locations {
			l := &g.Locations[j]
			if !strings.EqualFold(l.Name, location) {
				continue
			}
			for k := range l.Items {
				if strings.EqualFold(l.Items[k].Name, item) {
					return &l.Items[k]
				}
			}
		}
	}
	return nil
}

func (s *POSStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pos catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".pos-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace pos catalog file: %w", err)
	}

	return nil
}
