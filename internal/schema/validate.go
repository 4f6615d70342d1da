package schema

import (
	"fmt"
	"strings"
)

// ValidationKind discriminates the specific structural problem a
// ValidationError describes.
type ValidationKind int

const (
	EmptyPackageVersion ValidationKind = iota
	EmptyCommandName
	DuplicateCommand
	InvalidShortFlag
	InvalidLongFlag
	MissingFlagName
	DuplicateFlag
	DuplicateSubcommand
	SubcommandCycle
)

// ValidationError is a single structural validation failure, carrying
// enough context (Kind plus Detail) for callers to branch on the
// specific problem without string-matching Error().
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e ValidationError) Error() string {
	switch e.Kind {
	case EmptyPackageVersion:
		return "package version cannot be empty"
	case EmptyCommandName:
		return "schema command cannot be empty"
	case DuplicateCommand:
		return fmt.Sprintf("duplicate command in package: %s", e.Detail)
	case InvalidShortFlag:
		return fmt.Sprintf("invalid short flag format: %s", e.Detail)
	case InvalidLongFlag:
		return fmt.Sprintf("invalid long flag format: %s", e.Detail)
	case MissingFlagName:
		return "flag must define short or long form"
	case DuplicateFlag:
		return fmt.Sprintf("duplicate flag in scope: %s", e.Detail)
	case DuplicateSubcommand:
		return fmt.Sprintf("duplicate subcommand in scope: %s", e.Detail)
	case SubcommandCycle:
		return fmt.Sprintf("subcommand cycle detected at path: %s", e.Detail)
	default:
		return "unknown validation error"
	}
}

// ValidatePackage checks an empty version string, duplicate command
// names, and validates each schema individually. It returns on the
// first group of errors found, mirroring the original's fail-fast walk.
func ValidatePackage(pkg SchemaPackage) []ValidationError {
	if strings.TrimSpace(pkg.Version) == "" {
		return []ValidationError{{Kind: EmptyPackageVersion}}
	}

	seen := make(map[string]struct{}, len(pkg.Schemas))
	for _, s := range pkg.Schemas {
		if _, ok := seen[s.Command]; ok {
			return []ValidationError{{Kind: DuplicateCommand, Detail: s.Command}}
		}
		seen[s.Command] = struct{}{}

		if errs := ValidateSchema(s); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

// ValidateSchema checks an empty command name, flag formats, duplicate
// flags, duplicate subcommands, and subcommand cycles.
func ValidateSchema(s CommandSchema) []ValidationError {
	if strings.TrimSpace(s.Command) == "" {
		return []ValidationError{{Kind: EmptyCommandName}}
	}

	if errs := validateFlags(s.GlobalFlags); len(errs) > 0 {
		return errs
	}

	path := []string{s.Command}
	return validateSubcommands(s.Subcommands, path)
}

func validateSubcommands(subs []SubcommandSchema, path []string) []ValidationError {
	seen := make(map[string]struct{}, len(subs))

	for _, sub := range subs {
		name := strings.TrimSpace(sub.Name)
		if name == "" {
			return []ValidationError{{Kind: DuplicateSubcommand, Detail: "<empty>"}}
		}
		if _, ok := seen[name]; ok {
			return []ValidationError{{Kind: DuplicateSubcommand, Detail: name}}
		}
		seen[name] = struct{}{}

		for _, segment := range path {
			if segment == name {
				cyclePath := strings.Join(append(append([]string{}, path...), name), " ")
				return []ValidationError{{Kind: SubcommandCycle, Detail: cyclePath}}
			}
		}

		if errs := validateFlags(sub.Flags); len(errs) > 0 {
			return errs
		}

		nextPath := append(append([]string{}, path...), name)
		if errs := validateSubcommands(sub.Subcommands, nextPath); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

func validateFlags(flags []FlagSchema) []ValidationError {
	seen := make(map[string]struct{})

	for _, flag := range flags {
		if flag.Short == "" && flag.Long == "" {
			return []ValidationError{{Kind: MissingFlagName}}
		}

		if flag.Short != "" {
			short := flag.Short
			if !strings.HasPrefix(short, "-") || strings.HasPrefix(short, "--") || len(short) < 2 {
				return []ValidationError{{Kind: InvalidShortFlag, Detail: short}}
			}
			if _, ok := seen[short]; ok {
				return []ValidationError{{Kind: DuplicateFlag, Detail: short}}
			}
			seen[short] = struct{}{}
		}

		if flag.Long != "" {
			long := flag.Long
			if !strings.HasPrefix(long, "--") || len(long) < 3 {
				return []ValidationError{{Kind: InvalidLongFlag, Detail: long}}
			}
			if _, ok := seen[long]; ok {
				return []ValidationError{{Kind: DuplicateFlag, Detail: long}}
			}
			seen[long] = struct{}{}
		}
	}

	return nil
}
