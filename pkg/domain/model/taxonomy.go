package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

// Taxonomy is the closed set of categories and requester roles in use
type Taxonomy struct {
	Categories []types.Category
	Roles      []types.Role
}

// DefaultTaxonomy returns the categories and roles used when no
// configuration file overrides them.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Categories: []types.Category{"Βεβαιώσεις", "Εγγραφές", "Γενικά"},
		Roles:      []types.Role{"Φοιτητής", "Άλλο"},
	}
}

func (t *Taxonomy) HasCategory(c types.Category) bool {
	return t != nil && slices.Contains(t.Categories, c)
}

func (t *Taxonomy) HasRole(r types.Role) bool {
	return t != nil && slices.Contains(t.Roles, r)
}

// Validate requires at least one category and one role, with no duplicates
func (t *Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return goerr.New("at least one category is required")
	}
	if len(t.Roles) == 0 {
		return goerr.New("at least one role is required")
	}

	seenCategories := make(map[types.Category]bool, len(t.Categories))
	for _, c := range t.Categories {
		if c == "" {
			return goerr.New("category must not be empty")
		}
		if seenCategories[c] {
			return goerr.New("duplicate category", goerr.V(CategoryKey, c))
		}
		seenCategories[c] = true
	}

	seenRoles := make(map[types.Role]bool, len(t.Roles))
	for _, r := range t.Roles {
		if r == "" {
			return goerr.New("role must not be empty")
		}
		if seenRoles[r] {
			return goerr.New("duplicate role", goerr.V(RoleKey, r))
		}
		seenRoles[r] = true
	}

	return nil
}
