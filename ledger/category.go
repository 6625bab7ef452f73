package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category classifies income, expense and owners-equity transactions.
// Categories form a tree via ParentID; expense transactions are recorded
// against a leaf (subcategory) whose parent the caller selects.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	ParentID  uuid.UUID `json:"parent_id,omitzero"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsSubcategory reports whether the category has a parent.
func (c *Category) IsSubcategory() bool {
	return c.ParentID != uuid.Nil
}

// Team groups transactions for attribution. Required for income and
// expense transactions, optional for owners-equity and transfers.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategory adds a category. A parented category inherits nothing
// from its parent except tree position; the parent must exist, carry the
// same kind, and the new node must not become its own ancestor.
func (s *Service) CreateCategory(ctx context.Context, name string, kind Kind, parentID uuid.UUID) (*Category, error) {
	category := &Category{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		ParentID:  parentID,
		Active:    true,
		CreatedAt: s.now(),
	}

	err := s.update(ctx, func(tx Tx) error {
		if parentID != uuid.Nil {
			if err := checkCategoryAncestry(tx, category); err != nil {
				return err
			}
		}
		return tx.PutCategory(category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// checkCategoryAncestry walks the parent chain and rejects kind
// mismatches and cycles.
func checkCategoryAncestry(tx Tx, category *Category) error {
	seen := map[uuid.UUID]bool{category.ID: true}
	parentID := category.ParentID
	for parentID != uuid.Nil {
		if seen[parentID] {
			return &CategoryCycleError{CategoryID: category.ID}
		}
		seen[parentID] = true

		parent, err := tx.Category(parentID)
		if err != nil {
			return err
		}
		if parent.Kind != category.Kind {
			return &CategoryMismatchError{CategoryID: parent.ID, CategoryKind: parent.Kind, Kind: category.Kind}
		}
		parentID = parent.ParentID
	}
	return nil
}

// GetCategory returns a category by ID.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	var category *Category
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		category, err = tx.Category(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Categories returns all categories sorted by kind then name.
func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		categories, err = tx.Categories()
		return err
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes a category. Refused while transactions
// reference it or while it has child categories.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, func(tx Tx) error {
		category, err := tx.Category(id)
		if err != nil {
			return err
		}

		referencing, err := tx.Transactions(TransactionFilter{CategoryID: id, Limit: 1})
		if err != nil {
			return err
		}
		if len(referencing) > 0 {
			return &ReferentialIntegrityError{Entity: "category", Key: category.Name}
		}

		children, err := tx.Categories()
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.ParentID == id {
				return &ReferentialIntegrityError{Entity: "category", Key: category.Name}
			}
		}

		return tx.DeleteCategory(id)
	})
}

// CreateTeam adds a team.
func (s *Service) CreateTeam(ctx context.Context, name string) (*Team, error) {
	team := &Team{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: s.now(),
	}
	err := s.update(ctx, func(tx Tx) error {
		return tx.PutTeam(team)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Teams returns all teams sorted by name.
func (s *Service) Teams(ctx context.Context) ([]*Team, error) {
	var teams []*Team
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		teams, err = tx.Teams()
		return err
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}
