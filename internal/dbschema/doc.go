// Package dbschema owns the persisted index database and the consent gate
// around its schema version.
//
// The schema is defined by embedded, lexically ordered migration files; a
// one-row schema_version table records how many of them the database has
// applied. A fresh database is created at the current version. An existing
// database that is behind only advances after the operator consents to the
// pending migrations' reasons; refusal leaves the schema and data unchanged. The
// drop-and-rebuild reset path bypasses the gate entirely because the explicit
// reset action is the consent.
package dbschema
