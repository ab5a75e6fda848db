package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bookshelf/db/internal/adapters"
	"bookshelf/models"
)

const (
	DefaultTableName = "books"
	dialectPostgres  = "postgres"
	dialectSQLite    = "sqlite3"
	colId            = "id"
	colTitle         = "title"
	colAuthor        = "author"
	colPublishedYear = "publication_year"
	opSave           = "save"
	opFindAll        = "find_all"
	opFindById       = "find_by_id"
	opDeleteById     = "delete_by_id"
	opEnsureSchema   = "ensure_schema"
)

var schemaDDL = map[string]string{
	dialectPostgres: "CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, title TEXT, author TEXT, publication_year INTEGER)",
	dialectSQLite:   "CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, author TEXT, publication_year INTEGER)",
}

// SQLLibraryManager stores books in a relational table. Queries are built with goqu for the
// connection's dialect and run through an adapter, so pgx, database/sql and sqlx handles all work.
type SQLLibraryManager struct {
	db        adapters.DBAdapter
	dialect   goqu.DialectWrapper
	dialectID string
	tableName string
	logger    Logger
}

// Option defines a functional option for configuring a SQLLibraryManager.
type Option func(*SQLLibraryManager) error

// WithTableName sets the table the books live in.
func WithTableName(tableName string) Option {
	return func(library *SQLLibraryManager) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		library.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the SQLLibraryManager.
func WithLogger(logger Logger) Option {
	return func(library *SQLLibraryManager) error {
		library.logger = logger
		return nil
	}
}

// NewPostgresLibraryFromPGXPool creates a postgres-backed library on a pgx pool.
func NewPostgresLibraryFromPGXPool(pool *pgxpool.Pool, options ...Option) (*SQLLibraryManager, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSQLLibrary(adapters.NewPGXAdapter(pool), dialectPostgres, options)
}

// NewPostgresLibraryFromSQLDB creates a postgres-backed library on a lib/pq sql.DB.
func NewPostgresLibraryFromSQLDB(db *sql.DB, options ...Option) (*SQLLibraryManager, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSQLLibrary(adapters.NewSQLAdapter(db), dialectPostgres, options)
}

// NewPostgresLibraryFromSQLX creates a postgres-backed library on a sqlx.DB.
func NewPostgresLibraryFromSQLX(db *sqlx.DB, options ...Option) (*SQLLibraryManager, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSQLLibrary(adapters.NewSQLXAdapter(db), dialectPostgres, options)
}

// NewSQLiteLibrary creates a library on a sqlite3 sql.DB.
func NewSQLiteLibrary(db *sql.DB, options ...Option) (*SQLLibraryManager, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSQLLibrary(adapters.NewSQLAdapter(db), dialectSQLite, options)
}

func newSQLLibrary(db adapters.DBAdapter, dialectID string, options []Option) (*SQLLibraryManager, error) {
	library := &SQLLibraryManager{
		db:        db,
		dialect:   goqu.Dialect(dialectID),
		dialectID: dialectID,
		tableName: DefaultTableName,
	}

	for _, option := range options {
		if err := option(library); err != nil {
			return nil, err
		}
	}

	return library, nil
}

// EnsureSchema creates the books table if it does not exist yet.
func (library *SQLLibraryManager) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(schemaDDL[library.dialectID], pq.QuoteIdentifier(library.tableName))

	if _, err := library.exec(ctx, opEnsureSchema, ddl); err != nil {
		return err
	}

	library.logInfo(logMsgSchemaReady, logAttrTable, library.tableName)

	return nil
}

func (library *SQLLibraryManager) Save(ctx context.Context, book *models.Book) (*models.Book, error) {
	id, ok := book.Id()
	if !ok {
		return library.insert(ctx, book)
	}

	query, _, err := library.dialect.
		Update(library.tableName).
		Set(bookRecord(book)).
		Where(goqu.C(colId).Eq(int64(id))).
		ToSQL()
	if err != nil {
		return nil, library.buildFailed(opSave, err)
	}

	result, err := library.exec(ctx, opSave, query)
	if err != nil {
		return nil, err
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSave, err)
	}

	// No row has that id: store the book as new under a generated id, never the caller's.
	if updated == 0 {
		return library.insert(ctx, book)
	}

	return book.WithID(id), nil
}

func (library *SQLLibraryManager) FindAll(ctx context.Context) ([]*models.Book, error) {
	query, _, err := library.dialect.
		From(library.tableName).
		Select(colId, colTitle, colAuthor, colPublishedYear).
		Order(goqu.C(colId).Asc()).
		ToSQL()
	if err != nil {
		return nil, library.buildFailed(opFindAll, err)
	}

	return library.queryBooks(ctx, opFindAll, query)
}

func (library *SQLLibraryManager) FindById(ctx context.Context, id models.Id) (*models.Book, error) {
	query, _, err := library.dialect.
		From(library.tableName).
		Select(colId, colTitle, colAuthor, colPublishedYear).
		Where(goqu.C(colId).Eq(int64(id))).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, library.buildFailed(opFindById, err)
	}

	books, err := library.queryBooks(ctx, opFindById, query)
	if err != nil {
		return nil, err
	}

	if len(books) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrBookNotFound, id)
	}

	return books[0], nil
}

func (library *SQLLibraryManager) DeleteById(ctx context.Context, id models.Id) error {
	query, _, err := library.dialect.
		Delete(library.tableName).
		Where(goqu.C(colId).Eq(int64(id))).
		ToSQL()
	if err != nil {
		return library.buildFailed(opDeleteById, err)
	}

	_, err = library.exec(ctx, opDeleteById, query)

	return err
}

func (library *SQLLibraryManager) insert(ctx context.Context, book *models.Book) (*models.Book, error) {
	insert := library.dialect.Insert(library.tableName).Rows(bookRecord(book))

	if library.dialectID != dialectPostgres {
		query, _, err := insert.ToSQL()
		if err != nil {
			return nil, library.buildFailed(opSave, err)
		}

		result, err := library.exec(ctx, opSave, query)
		if err != nil {
			return nil, err
		}

		lastId, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opSave, err)
		}

		return book.WithID(models.Id(lastId)), nil
	}

	query, _, err := insert.Returning(colId).ToSQL()
	if err != nil {
		return nil, library.buildFailed(opSave, err)
	}

	rows, err := library.query(ctx, opSave, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var newId int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", opSave, err)
		}
		return nil, fmt.Errorf("%s: insert returned no id", opSave)
	}

	if err := rows.Scan(&newId); err != nil {
		library.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return nil, fmt.Errorf("%s: %w", opSave, err)
	}

	return book.WithID(models.Id(newId)), nil
}

func (library *SQLLibraryManager) queryBooks(ctx context.Context, operation, query string) ([]*models.Book, error) {
	rows, err := library.query(ctx, operation, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]*models.Book, 0)
	for rows.Next() {
		var (
			id     int64
			title  sql.NullString
			author sql.NullString
			year   sql.NullInt64
		)

		if err := rows.Scan(&id, &title, &author, &year); err != nil {
			library.logError(logMsgScanRowFailed, logAttrOperation, operation, logAttrError, err.Error())
			return nil, fmt.Errorf("%s: %w", operation, err)
		}

		book := models.Book{ID: &id}
		if title.Valid {
			book.Title = &title.String
		}
		if author.Valid {
			book.Author = &author.String
		}
		if year.Valid {
			publicationYear := int(year.Int64)
			book.PublicationYear = &publicationYear
		}

		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return books, nil
}

func (library *SQLLibraryManager) query(ctx context.Context, operation, query string) (adapters.DBRows, error) {
	library.logDebug(logMsgSQLExecuted, logAttrOperation, operation, logAttrQuery, query)

	rows, err := library.db.Query(ctx, query)
	if err != nil {
		library.logError(logMsgDBQueryFailed, logAttrOperation, operation, logAttrError, err.Error())
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return rows, nil
}

func (library *SQLLibraryManager) exec(ctx context.Context, operation, query string) (adapters.DBResult, error) {
	library.logDebug(logMsgSQLExecuted, logAttrOperation, operation, logAttrQuery, query)

	result, err := library.db.Exec(ctx, query)
	if err != nil {
		library.logError(logMsgDBExecFailed, logAttrOperation, operation, logAttrError, err.Error())
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return result, nil
}

func (library *SQLLibraryManager) buildFailed(operation string, err error) error {
	library.logError(logMsgBuildQueryFailed, logAttrOperation, operation, logAttrError, err.Error())
	return fmt.Errorf("%s: %w", operation, err)
}

func (library *SQLLibraryManager) logDebug(msg string, args ...any) {
	if library.logger != nil {
		library.logger.Debug(msg, args...)
	}
}

func (library *SQLLibraryManager) logInfo(msg string, args ...any) {
	if library.logger != nil {
		library.logger.Info(msg, args...)
	}
}

func (library *SQLLibraryManager) logError(msg string, args ...any) {
	if library.logger != nil {
		library.logger.Error(msg, args...)
	}
}

func bookRecord(book *models.Book) goqu.Record {
	return goqu.Record{
		colTitle:         nullable(book.Title),
		colAuthor:        nullable(book.Author),
		colPublishedYear: nullable(book.PublicationYear),
	}
}

func nullable[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}
