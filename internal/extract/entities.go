package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/portalgenie/backend/internal/storage/models"
)

// Entities are the structured references resolved from a POS query.
// Empty fields (nil Value) mean the entity could not be resolved.
type Entities struct {
	Group    string
	Location string
	Item     string
	Value    *float64
}

var valuePattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ExtractEntities resolves group, location and item names by
// case-insensitive containment in the query. When several names match,
// the longest one wins, so "Cheeseburger" is never shadowed by "Burger";
// equal lengths keep catalog order. The value is the first whole token
// that parses as an integer or a decimal with up to two digits.
func ExtractEntities(query string, catalog models.POSCatalog) Entities {
	lowerQuery := strings.ToLower(query)

	var e Entities
	for _, g := range catalog.Groups {
		if contained(lowerQuery, g.Name) && len(g.Name) > len(e.Group) {
			e.Group = g.Name
		}
		for _, l := range g.Locations {
			if contained(lowerQuery, l.Name) && len(l.Name) > len(e.Location) {
				e.Location = l.Name
			}
			for _, it := range l.Items {
				if contained(lowerQuery, it.Name) && len(it.Name) > len(e.Item) {
					e.Item = it.Name
				}
			}
		}
	}

	for _, token := range strings.Fields(query) {
		token = strings.Trim(token, ".,;:!?$")
		if !valuePattern.MatchString(token) {
			continue
		}
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			e.Value = &v
			break
		}
	}

	return e
}

func contained(lowerQuery, name string) bool {
	return name != "" && strings.Contains(lowerQuery, strings.ToLower(name))
}
