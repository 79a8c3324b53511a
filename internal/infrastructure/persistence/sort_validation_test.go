package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder(" asc "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("; DROP TABLE products"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "price", ValidateSortField("price", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password_hash", UserSortFields, "created_at"))
	assert.Equal(t, "total", ValidateSortField(" total ", OrderSortFields, "created_at"))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%tee%", containsPattern("tee"))
	assert.Equal(t, "%100!%%", containsPattern("100%"))
	assert.Equal(t, "%a!_b%", containsPattern("a_b"))
	assert.Equal(t, "%wow!!%", containsPattern("wow!"))
}
