// Package sqlite stores saved workflow documents in a SQLite database, one row
// per workflow with the document kept as a JSON blob.
package sqlite
