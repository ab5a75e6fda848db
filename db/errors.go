package db

import "errors"

var (
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")
	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrNilIdSequence         = errors.New("nil id sequence supplied")
	ErrIdSequenceExhausted   = errors.New("no book ids left to assign")
)
