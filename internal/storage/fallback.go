package storage

import (
	"strings"

	"github.com/homescout/homescout/internal/models"
)

// Predicate is the relational rendering of a SearchQuery: a WHERE fragment
// with positional args, a fixed sort, and skip/take pagination.
type Predicate struct {
	Where   string
	Args    []interface{}
	OrderBy string
	Limit   int
	Offset  int
}

// BuildFallbackPredicate translates a normalized SearchQuery into relational
// predicates. The filter set mirrors the index path clause for clause so the
// two execution paths cannot silently diverge; the differences that remain
// are inherent to not having a ranked index: text matching is unscored
// substring containment, and the sort is fixed to created-date descending
// regardless of the requested sort mode.
func BuildFallbackPredicate(q *models.SearchQuery) Predicate {
	clauses := []string{"l.status = ?"}
	args := []interface{}{models.StatusActive}

	if term := strings.TrimSpace(q.Term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		clauses = append(clauses, "(lower(l.title) LIKE ? OR lower(l.description) LIKE ? OR lower(l.city) LIKE ?)")
		args = append(args, like, like, like)
	}

	if q.OwnerID != nil {
		clauses = append(clauses, "l.owner_id = ?")
		args = append(args, *q.OwnerID)
	}
	if q.City != nil {
		clauses = append(clauses, "l.city = ?")
		args = append(args, *q.City)
	}
	if q.PropertyType != nil {
		clauses = append(clauses, "l.property_type = ?")
		args = append(args, *q.PropertyType)
	}
	if q.ListingType != nil {
		clauses = append(clauses, "l.listing_type = ?")
		args = append(args, *q.ListingType)
	}
	if q.BuildingClass != nil {
		clauses = append(clauses, "l.building_class = ?")
		args = append(args, *q.BuildingClass)
	}
	if q.MinPrice != nil {
		clauses = append(clauses, "l.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, "l.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.MinArea != nil {
		clauses = append(clauses, "l.area >= ?")
		args = append(args, *q.MinArea)
	}
	if q.MaxArea != nil {
		clauses = append(clauses, "l.area <= ?")
		args = append(args, *q.MaxArea)
	}
	if q.Bedrooms != nil {
		clauses = append(clauses, "l.bedrooms = ?")
		args = append(args, *q.Bedrooms)
	}
	if q.Bathrooms != nil {
		clauses = append(clauses, "l.bathrooms = ?")
		args = append(args, *q.Bathrooms)
	}

	return Predicate{
		Where:   strings.Join(clauses, " AND "),
		Args:    args,
		OrderBy: "l.created_at DESC",
		Limit:   q.Size,
		Offset:  q.Offset(),
	}
}
