// Package schema defines the data model shared across the extraction
// pipeline: command schemas, flags, arguments, subcommands, and the
// diagnostic report produced alongside every extraction.
package schema

// SchemaContractVersion is the version stamped onto every persisted
// CommandSchema so downstream consumers (the SQLite store, the manifest)
// can detect a format change.
const SchemaContractVersion = "1"

// Source tags the origin of an extracted schema.
type Source string

const (
	SourceHelpCommand Source = "help_command"
	SourceManPage      Source = "man_page"
	SourceBootstrap    Source = "bootstrap"
	SourceLearned      Source = "learned"
)

// ValueType is the sum type describing what kind of value a flag or
// positional argument accepts. Choice carries an ordered, non-empty list
// of allowed values and must be serialized with its tag kept explicit so
// the SQLite layer can losslessly reconstruct it from a side table.
type ValueType struct {
	Kind   ValueKind `json:"kind"`
	Choice []string  `json:"choice,omitempty"`
}

// ValueKind enumerates the tags of ValueType.
type ValueKind string

const (
	ValueBool      ValueKind = "bool"
	ValueString    ValueKind = "string"
	ValueNumber    ValueKind = "number"
	ValueFile      ValueKind = "file"
	ValueDirectory ValueKind = "directory"
	ValueURL       ValueKind = "url"
	ValueBranch    ValueKind = "branch"
	ValueRemote    ValueKind = "remote"
	ValueChoiceKind ValueKind = "choice"
	ValueAny       ValueKind = "any"
)

func Bool() ValueType      { return ValueType{Kind: ValueBool} }
func String() ValueType    { return ValueType{Kind: ValueString} }
func Number() ValueType    { return ValueType{Kind: ValueNumber} }
func File() ValueType      { return ValueType{Kind: ValueFile} }
func Directory() ValueType { return ValueType{Kind: ValueDirectory} }
func URL() ValueType       { return ValueType{Kind: ValueURL} }
func Branch() ValueType    { return ValueType{Kind: ValueBranch} }
func Remote() ValueType    { return ValueType{Kind: ValueRemote} }
func Any() ValueType       { return ValueType{Kind: ValueAny} }

// Choice builds a Choice(values) ValueType. Panics if values is empty;
// callers must never construct a choice with no members.
func Choice(values []string) ValueType {
	if len(values) == 0 {
		panic("schema: Choice requires at least one value")
	}
	out := make([]string, len(values))
	copy(out, values)
	return ValueType{Kind: ValueChoiceKind, Choice: out}
}

// FlagSchema describes one flag. At least one of Short/Long must be
// present and well-formed (see ValidateFlags).
type FlagSchema struct {
	Short       string    `json:"short,omitempty"`
	Long        string    `json:"long,omitempty"`
	Value       ValueType `json:"value"`
	TakesValue  bool      `json:"takes_value"`
	Description string    `json:"description,omitempty"`
	Multiple    bool      `json:"multiple"`
	ConflictsWith []string `json:"conflicts_with,omitempty"`
	Requires      []string `json:"requires,omitempty"`
}

// Boolean constructs a boolean flag with the given short/long names,
// either of which may be empty.
func Boolean(short, long string) FlagSchema {
	return FlagSchema{Short: short, Long: long, Value: Bool()}
}

// WithValue constructs a value-taking flag.
func WithValue(short, long string, value ValueType) FlagSchema {
	return FlagSchema{Short: short, Long: long, Value: value, TakesValue: true}
}

// CanonicalKey returns the merge key for this flag: the long name if
// present, else the short name.
func (f FlagSchema) CanonicalKey() string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

// ArgSchema describes one positional argument.
type ArgSchema struct {
	Name        string    `json:"name"`
	Value       ValueType `json:"value"`
	Required    bool      `json:"required"`
	Multiple    bool      `json:"multiple"`
	Description string    `json:"description,omitempty"`
}

// SubcommandSchema describes one subcommand and its own nested schema.
type SubcommandSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Flags       []FlagSchema       `json:"flags,omitempty"`
	Positional  []ArgSchema        `json:"positional,omitempty"`
	Subcommands []SubcommandSchema `json:"subcommands,omitempty"`
	Aliases     []string           `json:"aliases,omitempty"`
}

// NewSubcommand constructs an empty subcommand with the given name.
func NewSubcommand(name string) SubcommandSchema {
	return SubcommandSchema{Name: name}
}

// CommandSchema is the root entity of an extraction run.
type CommandSchema struct {
	SchemaVersion string             `json:"schema_version,omitempty"`
	Command       string             `json:"command"`
	Description   string             `json:"description,omitempty"`
	Version       string             `json:"version,omitempty"`
	GlobalFlags   []FlagSchema       `json:"global_flags,omitempty"`
	Subcommands   []SubcommandSchema `json:"subcommands,omitempty"`
	Positional    []ArgSchema        `json:"positional,omitempty"`
	Source        Source             `json:"source"`
	Confidence    float64            `json:"confidence"`
}

// New constructs an empty CommandSchema for the given command name and
// source tag, with zero confidence.
func New(command string, source Source) CommandSchema {
	return CommandSchema{Command: command, Source: source}
}

// EntityCount returns the total number of flags, subcommands, and
// positional arguments across the whole schema (recursively). A schema
// with zero entities must never pass the quality gate (spec invariant).
func (c CommandSchema) EntityCount() int {
	n := len(c.GlobalFlags) + len(c.Positional)
	for _, sub := range c.Subcommands {
		n += 1 + subcommandEntityCount(sub)
	}
	return n
}

func subcommandEntityCount(s SubcommandSchema) int {
	n := len(s.Flags) + len(s.Positional)
	for _, nested := range s.Subcommands {
		n += 1 + subcommandEntityCount(nested)
	}
	return n
}

// SchemaPackage bundles multiple command schemas with package metadata.
type SchemaPackage struct {
	SchemaVersion string          `json:"schema_version,omitempty"`
	Version       string          `json:"version"`
	GeneratedAt   string          `json:"generated_at"`
	Name          string          `json:"name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Schemas       []CommandSchema `json:"schemas"`
}

// NewPackage constructs an empty SchemaPackage.
func NewPackage(version, generatedAt string) SchemaPackage {
	return SchemaPackage{
		SchemaVersion: SchemaContractVersion,
		Version:       version,
		GeneratedAt:   generatedAt,
	}
}
