// Package adapters lets the SQL library manager run on pgx.Pool, sql.DB or sqlx.DB.
//
// Every adapter exposes the same DBAdapter interface, so the library manager only builds
// SQL strings and never touches driver-specific types.
package adapters
