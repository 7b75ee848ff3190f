package store

import "errors"

// Low-level database operation errors. These are returned (or wrapped) by the
// collection store when a SQL-level operation fails before any replication
// logic can be applied. Except for ErrUnsupportedFieldValue, the HTTP layer
// maps them to 5xx responses: nothing was committed, so a client retry is
// always safe.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination fails.
	ErrScanningRow = errors.New("failed to scan document row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan document rows")

	// ErrUnsupportedFieldValue is returned when a push row carries a value
	// the column cannot store without changing its type, e.g. a number for a
	// text field. A client-input error: the HTTP layer maps it to 400, and
	// it is raised before the write transaction opens so no partial work
	// happens.
	ErrUnsupportedFieldValue = errors.New("unsupported value type for field")
)
