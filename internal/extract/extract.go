// Package extract drives one command's full extraction pipeline:
// probe → normalize → classify → parse strategies → filter → merge →
// constrain → recursive subcommand probe → quality gate → report
// (spec.md §2 data flow, §4.8 recursive subcommand probe).
package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/classify"
	"github.com/anthropics/cmdschema/internal/constraint"
	"github.com/anthropics/cmdschema/internal/filter"
	"github.com/anthropics/cmdschema/internal/merge"
	"github.com/anthropics/cmdschema/internal/normalize"
	"github.com/anthropics/cmdschema/internal/parser"
	"github.com/anthropics/cmdschema/internal/probe"
	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/schema"
)

// GlobalProbeBudget bounds total recursive-probe work per extraction
// run, per spec.md §4.8/§9.
const GlobalProbeBudget = 4096

// noProbeNames are subcommand names never recursed into.
var noProbeNames = map[string]bool{
	"help": true, "version": true, "completion": true, "completions": true,
}

var cycleProneDescriptionRe = regexp.MustCompile(`(?i)^same as `)

// Run is a single command's extraction result.
type Run struct {
	Schema *schema.CommandSchema
	Report schema.ExtractionReport
}

// Extractor drives extraction for a bounded set of commands, tracking
// the global probe budget and a logging hook matching the teacher's ad
// hoc logFunc idiom (no structured-logging dependency; see
// SPEC_FULL.md's ambient-stack logging section).
type Extractor struct {
	Policy quality.Policy
	Logf   func(format string, args ...any)

	budgetUsed int
}

// NewExtractor constructs an Extractor with a no-op logger.
func NewExtractor(policy quality.Policy) *Extractor {
	return &Extractor{Policy: policy, Logf: func(string, ...any) {}}
}

// Extract runs the full pipeline for one top-level command.
func (e *Extractor) Extract(ctx context.Context, command string) Run {
	visited := map[string]bool{}
	return e.extractChain(ctx, []string{command}, visited)
}

func (e *Extractor) extractChain(ctx context.Context, chain []string, visited map[string]bool) Run {
	chainKey := strings.Join(chain, " ")
	report := schema.ExtractionReport{Command: chain[len(chain)-1]}

	if e.budgetUsed >= GlobalProbeBudget || visited[chainKey] {
		report.Success = false
		code := schema.FailureNotHelpOutput
		report.FailureCode = &code
		return Run{Report: report}
	}
	visited[chainKey] = true
	e.budgetUsed++

	result := probe.Run(ctx, chain)
	report.ProbeAttempts = append(report.ProbeAttempts, attemptsOf(result)...)
	report.ResolvedExecutable = filepath.Base(chain[0])

	if result.Accepted == nil {
		report.Success = false
		report.FailureCode = derivePipelineFailureCode(result)
		return Run{Report: report}
	}

	sch, ok := buildSchemaFromText(chain, result.Accepted.Output, &report)
	if !ok {
		report.Success = false
		code := schema.FailureParseFailed
		report.FailureCode = &code
		return Run{Report: report}
	}

	// Recursive subcommand probe (spec.md §4.8). Depth is unbounded; the
	// global budget and visited set bound total work.
	siblingNames := subcommandNames(sch.Subcommands)
	for i := range sch.Subcommands {
		name := sch.Subcommands[i].Name
		if noProbeNames[strings.ToLower(name)] {
			continue
		}
		if cycleProneDescriptionRe.MatchString(sch.Subcommands[i].Description) {
			continue
		}

		childChain := append(append([]string{}, chain...), name)
		childRun := e.extractChain(ctx, childChain, visited)
		report.ProbeAttempts = append(report.ProbeAttempts, childRun.Report.ProbeAttempts...)

		if childRun.Schema == nil {
			continue
		}

		if isParentHelpEcho(childRun.Schema, siblingNames, name) {
			report.Warnings = append(report.Warnings, "rejected parent-help echo for subcommand "+name)
			continue
		}

		clearSelfReferencingNested(childRun.Schema, name, &report)

		sch.Subcommands[i].Flags = childRun.Schema.GlobalFlags
		sch.Subcommands[i].Positional = childRun.Schema.Positional
		sch.Subcommands[i].Subcommands = childRun.Schema.Subcommands
		if sch.Subcommands[i].Description == "" {
			sch.Subcommands[i].Description = childRun.Schema.Description
		}
	}

	merge.FinalizeSchema(&sch)

	decision := quality.Gate(e.Policy, false, report.Confidence, report.Coverage)
	report.QualityTier = decision.Tier
	report.QualityReasons = decision.Reasons
	report.FailureCode = decision.FailureCode
	report.AcceptedForSuggestions = decision.Accepted
	report.Success = true

	return Run{Schema: &sch, Report: report}
}

// buildSchemaFromText runs the normalize → classify → parse → filter →
// merge → constrain stages shared by a live probe's output and
// pre-supplied help text, filling report's format/coverage/confidence
// fields in place. ok is false when the resulting schema has no
// entities, the same "nothing usable was parsed" condition the caller
// maps to FailureParseFailed.
func buildSchemaFromText(chain []string, text string, report *schema.ExtractionReport) (schema.CommandSchema, bool) {
	if adapted, ok := adaptHelpOutputForCommand(chain[0], text); ok {
		text = adapted
		report.Warnings = append(report.Warnings, "synthesized missing Options/Arguments sections for "+chain[0]+"; treat as heuristic, not a guarantee the tool accepts these flags")
	}

	lines := normalize.Lines(text)
	scores := classify.Classify(text)
	report.SelectedFormat = string(scores.Top())
	report.FormatScores = map[string]float64(scores)

	cands := parser.Parse(chain[0], lines)
	filtered := filter.Apply(cands)

	flagGate := merge.MergeFlags(filtered.Candidates.Flags)
	subGate := merge.MergeSubcommands(filtered.Candidates.Subcommands)
	argGate := merge.MergeArgs(filtered.Candidates.Args)

	constraint.Apply(flagGate.Accepted)

	sch := schema.New(chain[len(chain)-1], sourceFor(scores.Top()))
	sch.GlobalFlags = flagGate.Accepted
	sch.Positional = argGate.Accepted
	sch.Subcommands = subGate.Accepted

	recognized, relevant := coverageCounts(lines, filtered.Candidates)
	report.RelevantLines = relevant
	report.RecognizedLines = recognized
	report.Coverage = quality.Coverage(recognized, relevant)
	report.Confidence = confidenceFor(sch, scores)
	sch.Confidence = report.Confidence

	return sch, sch.EntityCount() > 0
}

// ParseText builds a schema directly from pre-captured help text,
// bypassing probe.Run entirely. It does not recurse into subcommands —
// there is no real executable behind the text to probe further — so it
// matches parse-stdin/parse-file's offline, single-shot use case rather
// than a full discover/extract run.
func ParseText(command, helpText string, policy quality.Policy) Run {
	report := schema.ExtractionReport{Command: command}

	sch, ok := buildSchemaFromText([]string{command}, helpText, &report)
	if !ok {
		report.Success = false
		code := schema.FailureParseFailed
		report.FailureCode = &code
		return Run{Report: report}
	}

	merge.FinalizeSchema(&sch)

	decision := quality.Gate(policy, false, report.Confidence, report.Coverage)
	report.QualityTier = decision.Tier
	report.QualityReasons = decision.Reasons
	report.FailureCode = decision.FailureCode
	report.AcceptedForSuggestions = decision.Accepted
	report.Success = true

	return Run{Schema: &sch, Report: report}
}

func attemptsOf(r probe.Result) []schema.ProbeAttempt {
	out := make([]schema.ProbeAttempt, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		out = append(out, a.ProbeAttempt)
	}
	return out
}

func derivePipelineFailureCode(r probe.Result) *schema.FailureCode {
	notInstalledCount := 0
	allTimedOut := len(r.Attempts) > 0
	for _, a := range r.Attempts {
		if a.FailureCode == schema.FailureNotInstalled {
			notInstalledCount++
		}
		if !a.TimedOut {
			allTimedOut = false
		}
	}
	var code schema.FailureCode
	switch {
	case len(r.Attempts) == 0 || notInstalledCount >= 2 || notInstalledCount == len(r.Attempts):
		code = schema.FailureNotInstalled
	case allTimedOut:
		code = schema.FailureTimeout
	default:
		code = schema.FailureNotHelpOutput
		for _, a := range r.Attempts {
			if a.RejectionReason == schema.RejectionEnvironmentBlocked {
				code = schema.FailurePermissionBlocked
				break
			}
		}
	}
	return &code
}

func sourceFor(format classify.Format) schema.Source {
	if format == classify.Man {
		return schema.SourceManPage
	}
	return schema.SourceHelpCommand
}

// confidenceFor derives a confidence score from the top format score
// and the density of accepted entities, matching spec.md §3's
// invariant that confidence is monotonically derived from extracted
// entities and detected format.
func confidenceFor(sch schema.CommandSchema, scores classify.Scores) float64 {
	base := scores[scores.Top()]
	if base == 0 {
		base = 0.3
	}
	entityBoost := 0.0
	switch {
	case sch.EntityCount() >= 8:
		entityBoost = 0.25
	case sch.EntityCount() >= 3:
		entityBoost = 0.15
	case sch.EntityCount() >= 1:
		entityBoost = 0.05
	}
	c := base + entityBoost
	if c > 1 {
		c = 1
	}
	return c
}

func coverageCounts(lines []normalize.Line, cands parser.Candidates) (recognized, relevant int) {
	recognizedLines := map[int]bool{}
	for _, f := range cands.Flags {
		recognizedLines[f.Span.Start] = true
	}
	for _, s := range cands.Subcommands {
		recognizedLines[s.Span.Start] = true
	}
	for _, a := range cands.Args {
		recognizedLines[a.Span.Start] = true
	}

	for _, l := range lines {
		if isRelevantLine(l.Text) {
			relevant++
			if recognizedLines[l.Index] {
				recognized++
			}
		}
	}
	return recognized, relevant
}

// adaptHelpOutputForCommand synthesizes missing structured sections for
// the handful of known commands whose help output otherwise defeats the
// parser strategies entirely. Returns the (possibly unmodified) text and
// whether an adaptation was applied, so the caller can attach the
// heuristic warning spec.md §9 requires: these sections are synthesized,
// not parsed, and may not reflect flags the tool actually accepts.
func adaptHelpOutputForCommand(command, text string) (string, bool) {
	base := strings.ToLower(command)
	if fields := strings.Fields(command); len(fields) > 0 {
		base = strings.ToLower(fields[0])
	}
	switch base {
	case "service":
		return adaptServiceHelpOutput(text)
	default:
		return text, false
	}
}

// adaptServiceHelpOutput synthesizes an Options:/Arguments: block for
// System V "service" help output, which states its own usage grammar
// inline but never lists its flags in a parseable section.
func adaptServiceHelpOutput(text string) (string, bool) {
	if !strings.Contains(text, "Usage: service") {
		return text, false
	}
	if strings.Contains(text, "\nOptions:") || strings.Contains(text, "\nFlags:") {
		return text, false
	}

	adapted := strings.TrimRight(text, " \t\r\n")
	adapted += "\n\nOptions:\n  --status-all    list all services and current status\n  --full-restart  run a full restart for a service\n\nArguments:\n  service_name    service to operate on\n  command         service command to execute\n"
	return adapted, true
}

var lineOfDashesRe = regexp.MustCompile(`^-{8,}$`)
var columnBreakRe = regexp.MustCompile(`\t+| {2,}`)
var relevantSubcommandsSectionRe = regexp.MustCompile(`(?i)^(commands|all commands|subcommands|available commands|sub-commands)\s*:?\s*$`)
var relevantFlagsSectionRe = regexp.MustCompile(`(?i)^(flags|global flags)\s*:?\s*$`)
var relevantOptionsSectionRe = regexp.MustCompile(`(?i)^(options|optional arguments|opts)\s*:?\s*$`)
var relevantArgumentsSectionRe = regexp.MustCompile(`(?i)^(arguments|positional arguments|args)\s*:?\s*$`)

// isRelevantLine reports whether a line belongs to one of the
// structured categories the parser strategies recognize (usage lines,
// section headers, flag-row starts, structured two-column rows, and
// comma command lists). Everything else — prose, blank lines,
// ornamental rules, and keybinding rows — is irrelevant and excluded
// from the coverage denominator (see GLOSSARY, report.Coverage).
//
// This defaults to false and only opts a line in for one of those
// categories, mirroring is_relevant_line in the original extractor: a
// blanket non-blank check would inflate coverage with unrecognizable
// prose and systematically understate it elsewhere.
func isRelevantLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "---") {
		return false
	}
	if strings.HasPrefix(trimmed, "-<") || strings.HasPrefix(trimmed, "--<") {
		return false
	}
	if lineOfDashesRe.MatchString(trimmed) {
		return false
	}
	if looksLikeKeybindingRow(trimmed) {
		return false
	}
	return isUsageLine(trimmed) ||
		looksLikeUsageSynopsisStart(trimmed) ||
		isSectionHeaderLine(trimmed) ||
		looksLikeFlagRowStart(trimmed) ||
		looksLikeStructuredTwoColumn(trimmed) ||
		looksLikeCommaCommandList(trimmed)
}

// splitRelevantColumns splits a line into its two structured-table
// columns on the first run of 2+ spaces or a tab, the same column
// break heuristic the flag/grid parsers use elsewhere in this port.
func splitRelevantColumns(line string) (string, string, bool) {
	loc := columnBreakRe.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}
	left := strings.TrimSpace(line[:loc[0]])
	right := strings.TrimSpace(line[loc[1]:])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

func isUsageLine(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "usage:") ||
		strings.HasPrefix(lower, "or:") ||
		strings.HasPrefix(lower, "usage is ") ||
		strings.Contains(lower, ": usage is ")
}

// looksLikeUsageSynopsisStart recognizes a usage grammar line that
// omits the literal "Usage:" prefix (e.g. "service < option > | ...").
func looksLikeUsageSynopsisStart(trimmed string) bool {
	if strings.HasPrefix(trimmed, "-") {
		return false
	}
	if !strings.Contains(trimmed, "--") && !strings.Contains(trimmed, " -") {
		return false
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	head := strings.TrimFunc(fields[0], func(ch rune) bool {
		switch ch {
		case ':', '`', '\'', '"', '(', ')', '{', '}':
			return true
		}
		return false
	})
	if head == "" {
		return false
	}
	if !strings.Contains(trimmed, "[") && len(fields) > 4 {
		return false
	}

	for _, ch := range head {
		if !isAlnum(ch) && !strings.ContainsRune("_-./+:", ch) {
			return false
		}
	}
	return true
}

func isSectionHeaderLine(trimmed string) bool {
	if relevantSubcommandsSectionRe.MatchString(trimmed) ||
		relevantFlagsSectionRe.MatchString(trimmed) ||
		relevantOptionsSectionRe.MatchString(trimmed) ||
		relevantArgumentsSectionRe.MatchString(trimmed) {
		return true
	}
	lower := strings.ToLower(trimmed)
	return strings.HasSuffix(trimmed, ":") &&
		(strings.Contains(lower, "command") ||
			strings.Contains(lower, "action") ||
			strings.Contains(lower, "option") ||
			strings.Contains(lower, "flag") ||
			strings.Contains(lower, "argument"))
}

func looksLikeFlagRowStart(trimmed string) bool {
	rest, ok := strings.CutPrefix(trimmed, "-")
	if !ok || rest == "" {
		return false
	}
	if long, ok := strings.CutPrefix(rest, "-"); ok {
		r, size := utf8DecodeFirst(long)
		return size > 0 && isAlnum(r)
	}

	first, size := utf8DecodeFirst(rest)
	if size == 0 {
		return false
	}
	if isASCIISpace(first) {
		return false
	}
	// "-20 ..." is often prose/ranges, not a flag row.
	if isASCIIDigit(first) && size < len(rest) {
		second, _ := utf8DecodeFirst(rest[size:])
		if isASCIIDigit(second) {
			return false
		}
	}
	return true
}

func looksLikeStructuredTwoColumn(trimmed string) bool {
	left, right, ok := splitRelevantColumns(trimmed)
	if !ok {
		return false
	}
	// Grammar-like rows (e.g. "OBJECT := ...") are usage prose, not a
	// subcommand/option table.
	if strings.Contains(right, ":=") {
		return false
	}
	if left == "-" {
		return false
	}
	if strings.HasPrefix(left, "-") {
		return looksLikeFlagRowStart(left)
	}

	var tokens []string
	for _, tok := range strings.Split(left, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return false
	}
	allValueTokens := true
	for _, tok := range tokens {
		if !looksLikeNonCommandValueToken(tok) {
			allValueTokens = false
			break
		}
	}
	if allValueTokens {
		return false
	}
	if strings.HasPrefix(strings.TrimLeft(right, " \t"), ":") {
		return false
	}
	for _, tok := range tokens {
		if !looksLikeCommandToken(tok) {
			return false
		}
	}
	return true
}

func looksLikeCommaCommandList(trimmed string) bool {
	if !strings.Contains(trimmed, ",") {
		return false
	}
	for _, tok := range strings.Split(trimmed, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !looksLikeCommandToken(tok) {
			return false
		}
	}
	return true
}

func looksLikeCommandToken(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" || token == "_" {
		return false
	}
	if strings.HasPrefix(token, "-") {
		return false
	}
	allDots := true
	allDigits := true
	for _, ch := range token {
		if ch != '.' {
			allDots = false
		}
		if !isASCIIDigit(ch) {
			allDigits = false
		}
	}
	if allDots {
		return true
	}
	if allDigits {
		return false
	}
	if looksLikePlaceholderSubcommandToken(token) || looksLikeNonCommandValueToken(token) {
		return false
	}
	for _, ch := range token {
		if isASCIISpace(ch) || isASCIIUpper(ch) {
			return false
		}
	}
	return isValidCommandName(token)
}

func looksLikePlaceholderSubcommandToken(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" || token == "_" {
		return true
	}
	allDigits := true
	for _, ch := range token {
		if !isASCIIDigit(ch) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	if strings.HasSuffix(token, "...") {
		return true
	}
	if len(token) > 4 {
		return false
	}
	for _, ch := range token {
		if !isASCIIUpper(ch) && !isASCIIDigit(ch) && ch != '-' {
			return false
		}
	}
	return true
}

var nonCommandValueTokens = map[string]bool{
	"none": true, "off": true, "numbered": true, "existing": true,
	"simple": true, "never": true, "nil": true, "all": true, "auto": true,
	"always": true, "default": true, "older": true, "warn": true,
	"warn-nopipe": true, "exit": true, "exit-nopipe": true, "once": true,
	"pages": true, "or": true, "while": true, "gnu": true, "report": true,
	"full": true,
}

func looksLikeNonCommandValueToken(token string) bool {
	return nonCommandValueTokens[strings.ToLower(strings.TrimSpace(token))]
}

func isValidCommandName(value string) bool {
	if value == "" || len(value) >= 50 {
		return false
	}
	for _, ch := range value {
		if !isAlnum(ch) && ch != '-' && ch != '_' {
			return false
		}
	}
	return true
}

func looksLikeKeybindingRow(trimmed string) bool {
	left, right, ok := splitRelevantColumns(trimmed)
	if !ok {
		return false
	}
	lower := strings.ToLower(left)
	if strings.Contains(lower, "esc-") || strings.Contains(lower, "ctrl") ||
		strings.Contains(lower, "arrow") || strings.Contains(left, "^") {
		return true
	}

	leftTokens := strings.Fields(left)
	compactKeys := len(leftTokens) >= 3
	if compactKeys {
		for _, tok := range leftTokens {
			if len(tok) > 3 {
				compactKeys = false
				break
			}
			for _, ch := range tok {
				if !isAlnum(ch) && ch != '^' && ch != '-' && ch != ':' {
					compactKeys = false
					break
				}
			}
			if !compactKeys {
				break
			}
		}
	}
	if compactKeys {
		return true
	}

	rightLower := strings.ToLower(right)
	keybindingVerbs := []string{
		"display", "forward", "backward", "exit", "repaint", "repeat",
		"edit", "move cursor", "go to", "print version",
	}
	hasVerb := false
	for _, verb := range keybindingVerbs {
		if strings.Contains(rightLower, verb) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}

	for _, tok := range leftTokens {
		if len(tok) > 2 {
			return false
		}
		for _, ch := range tok {
			if !isAlnum(ch) {
				return false
			}
		}
	}
	return true
}

func isAlnum(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isASCIIDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIIUpper(ch rune) bool {
	return ch >= 'A' && ch <= 'Z'
}

func isASCIISpace(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func utf8DecodeFirst(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

func subcommandNames(subs []schema.SubcommandSchema) map[string]bool {
	out := make(map[string]bool, len(subs))
	for _, s := range subs {
		out[strings.ToLower(s.Name)] = true
	}
	return out
}

// isParentHelpEcho reports whether a subcommand's parsed schema appears
// to echo the parent's own subcommand menu: shares >= 3 siblings with
// the parent and contains the currently-probed name among its own
// subcommands (spec.md §4.8).
func isParentHelpEcho(child *schema.CommandSchema, parentSiblings map[string]bool, probedName string) bool {
	shared := 0
	selfListed := false
	for _, s := range child.Subcommands {
		name := strings.ToLower(s.Name)
		if parentSiblings[name] {
			shared++
		}
		if name == strings.ToLower(probedName) {
			selfListed = true
		}
	}
	return shared >= 3 && selfListed
}

// clearSelfReferencingNested clears a subcommand's own nested
// subcommand list when a nested entry shares its parent's name, and
// records a warning (spec.md §4.8).
func clearSelfReferencingNested(child *schema.CommandSchema, name string, report *schema.ExtractionReport) {
	for _, nested := range child.Subcommands {
		if strings.EqualFold(nested.Name, name) {
			child.Subcommands = nil
			report.Warnings = append(report.Warnings, "cleared self-referencing nested subcommand for "+name)
			return
		}
	}
}
