// Package repository implements MySQL persistence for the catalog, seat
// inventory, bookings, reporting and accounts.  Sentinel errors below let
// higher layers map failures to HTTP responses without inspecting SQL.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a looked-up row does not exist, or when a
// seat id does not belong to the requested theater.
var ErrNotFound = errors.New("not found")

// ErrSeatUnavailable is returned when at least one seat of a hold request
// is already booked or held.  No seat of the batch is modified.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrConflict is returned when an insert violates a unique constraint, such
// as a duplicate genre name.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062 // unique key violation
	mysqlNoReferencedRow = 1452 // foreign key target missing
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlErrNumber(err) == mysqlDuplicateEntry }

func isForeignKeyMiss(err error) bool { return mysqlErrNumber(err) == mysqlNoReferencedRow }

// inClause returns "?,?,?" for n placeholders and the ids as driver args.
func inClause(ids []uint64) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}
	return strings.Join(ph, ","), args
}

// UniqueIDs drops zero and repeated ids while keeping the first-seen order.
func UniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
