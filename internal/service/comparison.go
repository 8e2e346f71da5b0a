package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

// ComparisonLimit is the most listings a comparison can hold.
const ComparisonLimit = 3

// ComparisonSet keeps the caller's picks in selection order. The zero value
// is ready to use. It is not safe for concurrent use.
type ComparisonSet struct {
	ids []uuid.UUID
}

func NewComparisonSet(ids ...uuid.UUID) (*ComparisonSet, error) {
	set := &ComparisonSet{}
	for _, id := range ids {
		if err := set.Select(id); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Select adds id. Selecting an id that is already present is a no-op; a
// fourth distinct id is refused and leaves the set unchanged.
func (c *ComparisonSet) Select(id uuid.UUID) error {
	if c.Contains(id) {
		return nil
	}
	if len(c.ids) >= ComparisonLimit {
		return fmt.Errorf("%w: at most %d listings can be compared", domain.ErrComparisonLimitReached, ComparisonLimit)
	}
	c.ids = append(c.ids, id)
	return nil
}

func (c *ComparisonSet) Deselect(id uuid.UUID) bool {
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle reports whether id is selected afterwards.
func (c *ComparisonSet) Toggle(id uuid.UUID) (bool, error) {
	if c.Deselect(id) {
		return false, nil
	}
	if err := c.Select(id); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ComparisonSet) Contains(id uuid.UUID) bool {
	for _, existing := range c.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (c *ComparisonSet) IDs() []uuid.UUID {
	return append([]uuid.UUID(nil), c.ids...)
}

func (c *ComparisonSet) Len() int {
	return len(c.ids)
}

func (c *ComparisonSet) Clear() {
	c.ids = nil
}
