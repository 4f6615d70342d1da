package store

import (
	"fmt"
	"regexp"
)

// prefixRe validates the table-name prefix supplied to Open/Migrate.
var prefixRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidatePrefix rejects a prefix containing anything other than
// letters, digits, and underscores, since it is interpolated directly
// into CREATE TABLE statements.
func ValidatePrefix(prefix string) error {
	if !prefixRe.MatchString(prefix) {
		return fmt.Errorf("invalid table prefix %q: must match [A-Za-z0-9_]+", prefix)
	}
	return nil
}

// schemaSQL returns the eight-table CREATE TABLE layout for the given
// validated prefix: commands, subcommands, flags, positional_args,
// flag_choices, arg_choices, subcommand_aliases, flag_relationships.
func schemaSQL(prefix string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]scommands (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL UNIQUE,
    description TEXT,
    version TEXT,
    source TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 0,
    schema_version TEXT
);

CREATE TABLE IF NOT EXISTS %[1]ssubcommands (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id INTEGER NOT NULL REFERENCES %[1]scommands(id) ON DELETE CASCADE,
    parent_subcommand_id INTEGER REFERENCES %[1]ssubcommands(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT
);

CREATE TABLE IF NOT EXISTS %[1]sflags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id INTEGER REFERENCES %[1]scommands(id) ON DELETE CASCADE,
    subcommand_id INTEGER REFERENCES %[1]ssubcommands(id) ON DELETE CASCADE,
    short TEXT,
    long TEXT,
    value_kind TEXT NOT NULL,
    takes_value INTEGER NOT NULL DEFAULT 0,
    multiple INTEGER NOT NULL DEFAULT 0,
    description TEXT
);

CREATE TABLE IF NOT EXISTS %[1]spositional_args (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id INTEGER REFERENCES %[1]scommands(id) ON DELETE CASCADE,
    subcommand_id INTEGER REFERENCES %[1]ssubcommands(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value_kind TEXT NOT NULL,
    required INTEGER NOT NULL DEFAULT 0,
    multiple INTEGER NOT NULL DEFAULT 0,
    description TEXT,
    CHECK ((command_id IS NOT NULL) != (subcommand_id IS NOT NULL))
);

CREATE TABLE IF NOT EXISTS %[1]sflag_choices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flag_id INTEGER NOT NULL REFERENCES %[1]sflags(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS %[1]sarg_choices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    positional_arg_id INTEGER NOT NULL REFERENCES %[1]spositional_args(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS %[1]ssubcommand_aliases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subcommand_id INTEGER NOT NULL REFERENCES %[1]ssubcommands(id) ON DELETE CASCADE,
    alias TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS %[1]sflag_relationships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flag_id INTEGER NOT NULL REFERENCES %[1]sflags(id) ON DELETE CASCADE,
    related_flag_key TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('conflicts_with', 'requires'))
);

CREATE INDEX IF NOT EXISTS idx_%[1]ssubcommands_command ON %[1]ssubcommands(command_id);
CREATE INDEX IF NOT EXISTS idx_%[1]sflags_command ON %[1]sflags(command_id);
CREATE INDEX IF NOT EXISTS idx_%[1]sflags_subcommand ON %[1]sflags(subcommand_id);
`, prefix)
}

// initSchema creates the prefixed tables and indexes if they don't
// exist.
func (s *Store) initSchema() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	_, err := s.db.Exec(schemaSQL(s.prefix))
	return err
}

// dropSchemaSQL returns the DROP TABLE statements for migrate-down.
func dropSchemaSQL(prefix string) string {
	tables := []string{
		"flag_relationships", "subcommand_aliases", "arg_choices",
		"flag_choices", "positional_args", "flags", "subcommands", "commands",
	}
	out := ""
	for _, t := range tables {
		out += fmt.Sprintf("DROP TABLE IF EXISTS %s%s;\n", prefix, t)
	}
	return out
}
