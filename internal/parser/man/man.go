// Package man implements the two man/mdoc macro parser strategies named
// in spec.md §4.4: legacy roff man macros and BSD mdoc macros. Each
// lexes the macro stream into a structured document, then extracts
// flags from OPTIONS/SYNOPSIS, positional args from SYNOPSIS, and
// subcommands from COMMANDS.
package man

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/parser"
	"github.com/anthropics/cmdschema/internal/schema"
)

// Document is the structured result of lexing a macro document: an
// ordered list of (section name, paragraph text) pairs, plus the title
// tokens from .TH/.Dt to exclude from positional extraction.
type Document struct {
	Title    string
	Sections []Section
}

type Section struct {
	Name  string
	Items []Item
}

// Item is one .TP/.IP (roff) or .It (mdoc) entry: a tag line (the flag
// or term being defined) and its body paragraph.
type Item struct {
	Tag  string
	Body string
}

var thRe = regexp.MustCompile(`(?i)^\.TH\s+"?([^"\s]+)"?`)
var dtRe = regexp.MustCompile(`(?i)^\.Dt\s+(\S+)`)
var shRe = regexp.MustCompile(`(?i)^\.S[Hh]\s+"?([^"]*)"?`)
var tpRe = regexp.MustCompile(`^\.(TP|IP)\b`)
var itRe = regexp.MustCompile(`^\.It\b`)
var flRe = regexp.MustCompile(`^\.Fl\s+(\S+)`)
var arRe = regexp.MustCompile(`^\.Ar\s+(.*)$`)
var cmRe = regexp.MustCompile(`^\.Cm\s+(.*)$`)

// TitleTokens splits a .TH/.Dt title only on hyphens, never on dots, per
// spec.md §9's explicit open-question resolution ("it is unclear
// whether a title like git.remote.1 should also split on dots; do not
// guess, reproduce exact behavior" — the observed behavior splits only
// on hyphens).
func TitleTokens(title string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Split(title, "-") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			out[tok] = true
		}
	}
	return out
}

// ParseRoffMan lexes legacy roff man macros (.TH/.SH/.TP/.IP/.B/.I) into
// a Document.
func ParseRoffMan(text string) Document {
	var doc Document
	var current *Section

	for _, line := range strings.Split(text, "\n") {
		if m := thRe.FindStringSubmatch(line); m != nil {
			doc.Title = m[1]
			continue
		}
		if m := shRe.FindStringSubmatch(line); m != nil {
			doc.Sections = append(doc.Sections, Section{Name: strings.ToUpper(strings.TrimSpace(m[1]))})
			current = &doc.Sections[len(doc.Sections)-1]
			continue
		}
		if current == nil {
			continue
		}
		if tpRe.MatchString(line) {
			current.Items = append(current.Items, Item{})
			continue
		}
		if len(current.Items) == 0 {
			continue
		}
		last := &current.Items[len(current.Items)-1]
		trimmed := strings.TrimSpace(stripRoffFontMacros(line))
		if trimmed == "" {
			continue
		}
		if last.Tag == "" {
			last.Tag = trimmed
		} else {
			last.Body += " " + trimmed
		}
	}

	return doc
}

var fontMacroRe = regexp.MustCompile(`^\.[BI]{1,2}R?\s+`)

func stripRoffFontMacros(line string) string {
	return fontMacroRe.ReplaceAllString(line, "")
}

// ParseMdoc lexes BSD mdoc macros (.Dt/.Sh/.Bl/.It/.Fl/.Ar/.Cm/.Op) into
// a Document.
func ParseMdoc(text string) Document {
	var doc Document
	var current *Section

	for _, line := range strings.Split(text, "\n") {
		if m := dtRe.FindStringSubmatch(line); m != nil {
			doc.Title = m[1]
			continue
		}
		if m := shRe.FindStringSubmatch(line); m != nil {
			doc.Sections = append(doc.Sections, Section{Name: strings.ToUpper(strings.TrimSpace(m[1]))})
			current = &doc.Sections[len(doc.Sections)-1]
			continue
		}
		if current == nil {
			continue
		}
		if itRe.MatchString(line) {
			current.Items = append(current.Items, Item{})
			continue
		}
		if m := flRe.FindStringSubmatch(line); m != nil {
			current.Items = append(current.Items, Item{Tag: "-" + m[1]})
			continue
		}
		if m := arRe.FindStringSubmatch(line); m != nil {
			current.Items = append(current.Items, Item{Tag: "ARG:" + strings.TrimSpace(m[1])})
			continue
		}
		if m := cmRe.FindStringSubmatch(line); m != nil {
			current.Items = append(current.Items, Item{Tag: "CMD:" + strings.TrimSpace(m[1])})
			continue
		}
		if len(current.Items) > 0 {
			last := &current.Items[len(current.Items)-1]
			last.Body += " " + strings.TrimSpace(line)
		}
	}

	return doc
}

// Extract converts a Document into parser.Candidates: flags from
// OPTIONS/SYNOPSIS .TP/.IP/.Fl items, positional args from bare .Ar
// tokens in SYNOPSIS, subcommands from COMMANDS.
func Extract(doc Document) parser.Candidates {
	var out parser.Candidates
	titleTokens := TitleTokens(doc.Title)

	for _, sec := range doc.Sections {
		switch {
		case sec.Name == "OPTIONS" || sec.Name == "SYNOPSIS":
			for _, item := range sec.Items {
				extractItem(&out, item, sec.Name, titleTokens)
			}
		case sec.Name == "COMMANDS":
			for _, item := range sec.Items {
				name := strings.Fields(item.Tag)
				if len(name) == 0 {
					continue
				}
				out.Subcommands = append(out.Subcommands, parser.SubcommandCandidate{
					Name: name[0], Description: strings.TrimSpace(item.Body),
					Strategy: "man_mdoc", Confidence: 0.80,
				})
			}
		}
	}

	return out
}

func extractItem(out *parser.Candidates, item Item, sectionName string, titleTokens map[string]bool) {
	switch {
	case strings.HasPrefix(item.Tag, "ARG:"):
		if sectionName != "SYNOPSIS" {
			return
		}
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(item.Tag, "ARG:")))
		if name == "" || titleTokens[name] {
			return
		}
		out.Args = append(out.Args, parser.ArgCandidate{
			Arg:      schema.ArgSchema{Name: name, Value: schema.String()},
			Strategy: "man_mdoc", Confidence: 0.75,
		})
	case strings.HasPrefix(item.Tag, "CMD:"):
		// .Cm tokens describe sub-verbs; they produce no candidate, and
		// only COMMANDS section items become subcommands.
	default:
		for _, fl := range parser.ParseFlagLine(item.Tag) {
			if fl.Description == "" {
				fl.Description = strings.TrimSpace(item.Body)
			}
			out.Flags = append(out.Flags, parser.FlagCandidate{
				Flag: schema.FlagSchema{
					Short: fl.Short, Long: fl.Long, Value: fl.Value,
					TakesValue: fl.TakesValue, Description: fl.Description, Multiple: fl.Multiple,
				},
				Strategy: "man_mdoc", Confidence: 0.78,
			})
		}
	}
}
