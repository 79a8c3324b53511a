package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"slug":       true,
	"price":      true,
	"in_stock":   true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"role":       true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"total":           true,
	"number_of_items": true,
	"is_paid":         true,
}

func orderClause(field, dir string) string {
	return field + " " + dir
}

var (
	likeEscaper     = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	jsonPunctuation = strings.NewReplacer(`"`, " ", `\`, " ", ",", " ", "[", " ", "]", " ")
)

// containsPattern builds a LIKE pattern matching term anywhere. Use it with
// ESCAPE '!' so wildcards in term match literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
