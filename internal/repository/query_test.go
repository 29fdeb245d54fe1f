package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("status=$%d", "Open")
	w.search("  Refund ", "subject", "ticket_number")
	w.search("   ", "ignored")
	w.add("move_to_backlog=$%d", true)

	assert.Equal(t,
		" WHERE status=$1 AND (LOWER(subject) LIKE $2 OR LOWER(ticket_number) LIKE $2) AND move_to_backlog=$3",
		w.String())
	assert.Equal(t, []any{"Open", "%refund%", true}, w.args)
}

func TestPageClause(t *testing.T) {
	assert.Equal(t, "LIMIT 50 OFFSET 0", Page{}.clause())
	assert.Equal(t, "LIMIT 10 OFFSET 20", Page{Limit: 10, Offset: 20}.clause())
	assert.Equal(t, "LIMIT 500 OFFSET 0", Page{Limit: 10000, Offset: -3}.clause())
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: ticketNumberConstraint})
	assert.True(t, isUniqueViolation(err, ticketNumberConstraint))
	assert.True(t, isUniqueViolation(err, ""))
	assert.False(t, isUniqueViolation(err, "profiles_email_key"))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(fmt.Errorf("boom"), ""))
}
