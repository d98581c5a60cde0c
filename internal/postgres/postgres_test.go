package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestViolatedConstraint(t *testing.T) {
	itemFK := &pgconn.PgError{Code: "23503", ConstraintName: "dish_optional_elements_item_id_fkey"}
	dishFK := &pgconn.PgError{Code: "23503", ConstraintName: "dish_optional_elements_dish_id_fkey"}

	assert.Equal(t, "dish_optional_elements_item_id_fkey", violatedConstraint(itemFK))
	assert.Equal(t, "dish_optional_elements_dish_id_fkey", violatedConstraint(fmt.Errorf("insert: %w", dishFK)))
	assert.Empty(t, violatedConstraint(errors.New("not a pg error")))
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}
