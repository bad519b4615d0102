package pos

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/extract"
	"github.com/portalgenie/backend/internal/metrics"
	"github.com/portalgenie/backend/internal/storage/catalog"
	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/pkg/logger"
)

// Result statuses. Resolution and lookup failures are reported as
// statuses, never as errors: a malformed query is not a server fault.
const (
	StatusOK               = "ok"
	StatusNotFound         = "not_found"
	StatusCannotResolve    = "cannot_resolve"
	StatusPersistenceError = "persistence_error"
)

const (
	ActionRead   = "read"
	ActionUpdate = "update"
)

// Result is the outcome of a POS read or update.
type Result struct {
	Status  string             `json:"status"`
	Action  string             `json:"action"`
	Message string             `json:"message"`
	Item    *models.ItemResult `json:"item,omitempty"`
}

// Service answers POS read and update queries against the catalog store.
type Service struct {
	store *catalog.POSStore
}

func NewService(store *catalog.POSStore) *Service {
	return &Service{store: store}
}

// Read resolves group, location and item from the query and returns the
// matching item. No mutation.
func (s *Service) Read(query string) *Result {
	entities := extract.ExtractEntities(query, s.store.Snapshot())

	if missing := missingEntities(entities, false); len(missing) > 0 {
		return &Result{
			Status:  StatusCannotResolve,
			Action:  ActionRead,
			Message: fmt.Sprintf("Could not identify %s in the query.", strings.Join(missing, ", ")),
		}
	}

	item, ok := s.store.FindItem(entities.Group, entities.Location, entities.Item)
	if !ok {
		return &Result{
			Status:  StatusNotFound,
			Action:  ActionRead,
			Message: fmt.Sprintf("Item %q not found at %s / %s.", entities.Item, entities.Group, entities.Location),
		}
	}

	return &Result{
		Status:  StatusOK,
		Action:  ActionRead,
		Message: fmt.Sprintf("%s costs %.2f (discount %.2f).", item.Name, item.Price, item.Discount),
		Item:    &item,
	}
}

// Update replaces the resolved item's price with the extracted value and
// persists the catalog. Partial resolution never partially applies: the
// catalog is untouched unless every entity and the value resolved.
func (s *Service) Update(query string) *Result {
	entities := extract.ExtractEntities(query, s.store.Snapshot())

	if missing := missingEntities(entities, true); len(missing) > 0 {
		return &Result{
			Status:  StatusCannotResolve,
			Action:  ActionUpdate,
			Message: fmt.Sprintf("Could not identify %s in the query.", strings.Join(missing, ", ")),
		}
	}

	oldPrice, item, err := s.store.UpdateItemPrice(entities.Group, entities.Location, entities.Item, *entities.Value)
	if err != nil {
		if err == catalog.ErrItemNotFound {
			metrics.POSUpdates.WithLabelValues(StatusNotFound).Inc()
			return &Result{
				Status:  StatusNotFound,
				Action:  ActionUpdate,
				Message: fmt.Sprintf("Item %q not found at %s / %s.", entities.Item, entities.Group, entities.Location),
			}
		}

		logger.Error("POS catalog persistence failed", zap.Error(err))
		metrics.POSUpdates.WithLabelValues(StatusPersistenceError).Inc()
		return &Result{
			Status:  StatusPersistenceError,
			Action:  ActionUpdate,
			Message: "Failed to save the catalog update. The price was not changed.",
		}
	}

	metrics.POSUpdates.WithLabelValues(StatusOK).Inc()
	return &Result{
		Status:  StatusOK,
		Action:  ActionUpdate,
		Message: fmt.Sprintf("Updated %s price from %.2f to %.2f.", item.Name, oldPrice, item.Price),
		Item:    &item,
	}
}

func missingEntities(e extract.Entities, needValue bool) []string {
	var missing []string
	if e.Group == "" {
		missing = append(missing, "group")
	}
	if e.Location == "" {
		missing = append(missing, "location")
	}
	if e.Item == "" {
		missing = append(missing, "item")
	}
	if needValue && e.Value == nil {
		missing = append(missing, "value")
	}
	return missing
}
