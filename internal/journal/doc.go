// Package journal records vyshim invocations in a SQLite database.
//
// Each invocation appends one Entry (invocation id, descriptor, status byte,
// outcome, exit code) just before the process exits or hands off to a node
// script. vyshimctl reads and prunes the journal. The schema is embedded and
// versioned; a mismatch is reported rather than migrated, so operators clear
// the database after upgrades that change it.
package journal
