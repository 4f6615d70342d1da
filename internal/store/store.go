// Package store persists command schemas into a prefixed eight-table
// SQLite layout, the external collaborator contract of spec.md §6.
package store

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/anthropics/cmdschema/internal/schema"
)

// Store manages a prefixed SQLite database holding extracted command
// schemas.
type Store struct {
	db     *sql.DB
	dbPath string
	prefix string
}

// Open opens or creates the schema database at dbPath using prefix for
// every table name. prefix must match [A-Za-z0-9_]+.
func Open(dbPath, prefix string) (*Store, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath, prefix: prefix}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// MigrateDown drops all prefixed tables.
func (s *Store) MigrateDown() error {
	_, err := s.db.Exec(dropSchemaSQL(s.prefix))
	return err
}

// MigrateUp (re)creates the prefixed tables. Open already runs this once;
// it is exposed so refresh can recreate tables after MigrateDown.
func (s *Store) MigrateUp() error {
	return s.initSchema()
}

// Status reports per-table row counts for the prefixed schema.
type Status struct {
	Commands          int64
	Subcommands       int64
	Flags             int64
	PositionalArgs    int64
	SubcommandAliases int64
}

// MigrateStatus returns row counts across the prefixed tables.
func (s *Store) MigrateStatus() (Status, error) {
	var st Status
	rows := []struct {
		table string
		dest  *int64
	}{
		{"commands", &st.Commands},
		{"subcommands", &st.Subcommands},
		{"flags", &st.Flags},
		{"positional_args", &st.PositionalArgs},
		{"subcommand_aliases", &st.SubcommandAliases},
	}
	for _, r := range rows {
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.prefix, r.table)
		if err := s.db.QueryRow(q).Scan(r.dest); err != nil {
			return Status{}, fmt.Errorf("count %s: %w", r.table, err)
		}
	}
	return st, nil
}

// SaveCommand persists one CommandSchema, replacing any prior row with
// the same command name.
func (s *Store) SaveCommand(sch schema.CommandSchema) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %scommands WHERE command = ?", s.prefix), sch.Command); err != nil {
		return fmt.Errorf("delete existing command: %w", err)
	}

	res, err := tx.Exec(
		fmt.Sprintf("INSERT INTO %scommands (command, description, version, source, confidence, schema_version) VALUES (?, ?, ?, ?, ?, ?)", s.prefix),
		sch.Command, sch.Description, sch.Version, string(sch.Source), sch.Confidence, sch.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("insert command: %w", err)
	}
	commandID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, f := range sch.GlobalFlags {
		if err := s.insertFlag(tx, &commandID, nil, f); err != nil {
			return err
		}
	}
	for _, a := range sch.Positional {
		if err := s.insertArg(tx, &commandID, nil, a); err != nil {
			return err
		}
	}
	for _, sub := range sch.Subcommands {
		if err := s.insertSubcommand(tx, commandID, nil, sub); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) insertSubcommand(tx *sql.Tx, commandID int64, parentSubcommandID *int64, sub schema.SubcommandSchema) error {
	res, err := tx.Exec(
		fmt.Sprintf("INSERT INTO %ssubcommands (command_id, parent_subcommand_id, name, description) VALUES (?, ?, ?, ?)", s.prefix),
		commandID, parentSubcommandID, sub.Name, sub.Description,
	)
	if err != nil {
		return fmt.Errorf("insert subcommand %s: %w", sub.Name, err)
	}
	subID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, alias := range sub.Aliases {
		if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %ssubcommand_aliases (subcommand_id, alias) VALUES (?, ?)", s.prefix), subID, alias); err != nil {
			return fmt.Errorf("insert alias %s: %w", alias, err)
		}
	}
	for _, f := range sub.Flags {
		if err := s.insertFlag(tx, nil, &subID, f); err != nil {
			return err
		}
	}
	for _, a := range sub.Positional {
		if err := s.insertArg(tx, nil, &subID, a); err != nil {
			return err
		}
	}
	for _, nested := range sub.Subcommands {
		if err := s.insertSubcommand(tx, commandID, &subID, nested); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertFlag(tx *sql.Tx, commandID, subcommandID *int64, f schema.FlagSchema) error {
	res, err := tx.Exec(
		fmt.Sprintf("INSERT INTO %sflags (command_id, subcommand_id, short, long, value_kind, takes_value, multiple, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.prefix),
		commandID, subcommandID, nullIfEmpty(f.Short), nullIfEmpty(f.Long), string(f.Value.Kind), f.TakesValue, f.Multiple, f.Description,
	)
	if err != nil {
		return fmt.Errorf("insert flag %s: %w", f.CanonicalKey(), err)
	}
	flagID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for i, choice := range f.Value.Choice {
		if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %sflag_choices (flag_id, ordinal, value) VALUES (?, ?, ?)", s.prefix), flagID, i, choice); err != nil {
			return fmt.Errorf("insert flag choice %s: %w", choice, err)
		}
	}
	for _, c := range f.ConflictsWith {
		if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %sflag_relationships (flag_id, related_flag_key, kind) VALUES (?, ?, 'conflicts_with')", s.prefix), flagID, c); err != nil {
			return fmt.Errorf("insert conflicts_with %s: %w", c, err)
		}
	}
	for _, r := range f.Requires {
		if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %sflag_relationships (flag_id, related_flag_key, kind) VALUES (?, ?, 'requires')", s.prefix), flagID, r); err != nil {
			return fmt.Errorf("insert requires %s: %w", r, err)
		}
	}
	return nil
}

func (s *Store) insertArg(tx *sql.Tx, commandID, subcommandID *int64, a schema.ArgSchema) error {
	res, err := tx.Exec(
		fmt.Sprintf("INSERT INTO %spositional_args (command_id, subcommand_id, name, value_kind, required, multiple, description) VALUES (?, ?, ?, ?, ?, ?, ?)", s.prefix),
		commandID, subcommandID, a.Name, string(a.Value.Kind), a.Required, a.Multiple, a.Description,
	)
	if err != nil {
		return fmt.Errorf("insert arg %s: %w", a.Name, err)
	}
	argID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	for i, choice := range a.Value.Choice {
		if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %sarg_choices (positional_arg_id, ordinal, value) VALUES (?, ?, ?)", s.prefix), argID, i, choice); err != nil {
			return fmt.Errorf("insert arg choice %s: %w", choice, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListCommands returns the stored command names, sorted lexicographically.
func (s *Store) ListCommands() ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT command FROM %scommands", s.prefix))
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows.Err()
}
