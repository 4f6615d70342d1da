// Package probe spawns target commands and man pages to collect help
// text, enforcing timeouts, environment sanitation, and the shell-
// fallback security boundary.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/cmdschema/internal/schema"
	"github.com/anthropics/cmdschema/internal/shellsafety"
)

// Timeout is the hard wall-clock budget for a single probe spawn.
const Timeout = 5000 * time.Millisecond

// helpFlags is the standard ordered list of help flags tried for every
// command chain, before any bash-builtin fallback.
var helpFlags = []string{"--help", "-h", "-?"}

// commandSuffixes holds known per-command suffixes appended to the base
// help flag, e.g. "ps --help all".
var commandSuffixes = map[string][]string{
	"ps": {"--help", "--help all"},
}

var chainTokenRe = regexp.MustCompile(`^[A-Za-z0-9+._-]+$`)

var tryHelpHintRe = regexp.MustCompile(`(?i)try\s*["'\x60]?\s*([A-Za-z0-9_.-]+)\s+help`)

var hardFailMarkers = []string{
	"command not found",
	"no such file or directory",
	"is not recognized as an internal or external command",
}

var optionErrorMarkers = []string{
	"unknown option",
	"invalid option",
	"is unknown, try",
}

var structuredSectionMarkers = []string{"usage:", "options:", "flags:", "commands:"}

var environmentBlockedMarkers = []string{
	"operation not permitted",
	"permission denied",
	"can't open display",
	"cannot open display",
	"audit",
	"insufficient privileges",
}

var helpIndicatorWords = []string{
	"usage", "options", "flags", "commands", "arguments", "synopsis", "description",
}

var manSectionRe = regexp.MustCompile(`(?m)^[A-Z][A-Z0-9 ]{2,}$`)

// Attempt is a single spawn outcome, matching schema.ProbeAttempt but
// additionally carrying the raw output for the caller to classify.
type Attempt struct {
	schema.ProbeAttempt
	Output string
}

// Result is the outcome of probing one command chain: the winning
// attempt (if any) and the full attempt history.
type Result struct {
	Accepted *Attempt
	Attempts []Attempt
}

// Run probes a command chain (base plus subcommand path) in the order
// specified by spec.md §4.1: man pages most-specific first, command
// suffixes, standard help flags, bash-builtin fallback, and finally a
// "<base> help" retry when a "try X help" hint is observed.
func Run(ctx context.Context, chain []string) Result {
	var attempts []Attempt

	for _, tok := range chain {
		if !chainTokenRe.MatchString(tok) {
			return finalize(attempts)
		}
	}

	base := chain[0]

	// 1. man pages, most specific first.
	for k := len(chain) - 1; k >= 1; k-- {
		page := strings.Join(chain[:k+1], "-")
		a := spawnAndClassify(ctx, "man-"+page, "man", []string{page})
		attempts = append(attempts, a)
		if a.Accepted {
			return finalize(attempts)
		}
	}
	{
		a := spawnAndClassify(ctx, "man-"+base, "man", []string{base})
		attempts = append(attempts, a)
		if a.Accepted {
			return finalize(attempts)
		}
	}

	// 2. command-specific suffixes.
	if suffixes, ok := commandSuffixes[base]; ok {
		for _, suffix := range suffixes {
			args := append(append([]string{}, chain[1:]...), strings.Fields(suffix)...)
			a := spawnAndClassify(ctx, "suffix:"+suffix, base, args)
			attempts = append(attempts, a)
			if a.Accepted {
				return finalize(attempts)
			}
		}
	}

	// 3. standard help flags.
	sawNotFound := false
	for _, flag := range helpFlags {
		args := append(append([]string{}, chain[1:]...), flag)
		a := spawnAndClassify(ctx, flag, base, args)
		attempts = append(attempts, a)
		if a.Accepted {
			return finalize(attempts)
		}
		if a.RejectionReason == schema.RejectionNotInstalledOutput {
			sawNotFound = true
		}
	}

	// 4. bash builtin fallback, only retried when the binary spawn
	// itself looked not-found.
	if sawNotFound {
		for _, flag := range helpFlags {
			line := strings.Join(append(append([]string{}, chain...), flag), " ")
			if !shellsafety.Safe(line) {
				continue
			}
			a := spawnAndClassify(ctx, "bash:"+flag, "bash", []string{"-lc", line})
			attempts = append(attempts, a)
			if a.Accepted {
				return finalize(attempts)
			}
		}
	}

	// 5. "<base> help" retry when a prior attempt hinted at it.
	for _, a := range attempts {
		if m := tryHelpHintRe.FindStringSubmatch(a.Output); m != nil {
			var args []string
			if len(chain) > 1 {
				args = append(append([]string{}, chain[1:len(chain)-1]...), "help", chain[len(chain)-1])
			} else {
				args = []string{"help"}
			}
			final := spawnAndClassify(ctx, "help-retry", base, args)
			attempts = append(attempts, final)
			break
		}
	}

	return finalize(attempts)
}

func finalize(attempts []Attempt) Result {
	r := Result{Attempts: attempts}
	for i := range attempts {
		if attempts[i].Accepted {
			r.Accepted = &attempts[i]
			return r
		}
	}
	return r
}

// defaultEnv is the environment override set applied to every probe
// spawn, per spec.md §4.1.
func defaultEnv() []string {
	overrides := map[string]string{
		"DISPLAY":          "",
		"WAYLAND_DISPLAY":  "",
		"BROWSER":          "true",
		"DEBIAN_FRONTEND":  "noninteractive",
		"TERM":             "dumb",
		"NO_COLOR":         "1",
		"PAGER":            "cat",
		"MANPAGER":         "cat",
		"GIT_PAGER":        "cat",
		"SYSTEMD_PAGER":    "cat",
		"ANSIBLE_LOCAL_TEMP": "/tmp",
	}
	base := os.Environ()
	env := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		key := kv
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			key = kv[:idx]
		}
		if v, ok := overrides[key]; ok {
			env = append(env, key+"="+v)
			seen[key] = true
			continue
		}
		env = append(env, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			env = append(env, k+"="+v)
		}
	}
	return env
}

func spawnAndClassify(ctx context.Context, label, name string, args []string) Attempt {
	workdir, err := os.MkdirTemp("", "cmdschema-probe-*")
	if err != nil {
		return Attempt{ProbeAttempt: schema.ProbeAttempt{
			HelpFlagLabel: label,
			Argv:          append([]string{name}, args...),
			Error:         fmt.Sprintf("workdir: %v", err),
		}}
	}
	defer os.RemoveAll(workdir)

	runCtx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = workdir
	cmd.Env = defaultEnv()
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	attempt := schema.ProbeAttempt{
		HelpFlagLabel: label,
		Argv:          append([]string{name}, args...),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		attempt.TimedOut = true
		attempt.FailureCode = schema.FailureTimeout
		return Attempt{ProbeAttempt: attempt}
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			attempt.ExitCode = &code
		} else {
			attempt.Error = runErr.Error()
			attempt.RejectionReason = schema.RejectionNotInstalledOutput
			attempt.FailureCode = schema.FailureNotInstalled
			return Attempt{ProbeAttempt: attempt}
		}
	} else {
		code := 0
		attempt.ExitCode = &code
	}

	out, source := selectOutput(stdout.String(), stderr.String())
	attempt.OutputSource = source
	attempt.OutputLength = len(out)
	attempt.OutputPreview = preview(out)

	accepted, reason := classify(out)
	attempt.Accepted = accepted
	attempt.RejectionReason = reason
	if !accepted {
		attempt.FailureCode = reasonToFailureCode(reason)
	}

	return Attempt{ProbeAttempt: attempt, Output: out}
}

// selectOutput returns the larger of stdout/stderr by byte length, per
// the glossary's "Help output" definition.
func selectOutput(stdout, stderr string) (string, schema.OutputSource) {
	if len(stderr) > len(stdout) {
		return stderr, schema.OutputStderr
	}
	return stdout, schema.OutputStdout
}

func preview(out string) string {
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if len(trimmed) > 120 {
				trimmed = trimmed[:120]
			}
			return trimmed
		}
	}
	return ""
}

// classify applies the is-help-output acceptance predicate and, on
// rejection, derives a rejection reason tag.
func classify(out string) (accepted bool, reason schema.RejectionReason) {
	trimmed := strings.TrimSpace(out)
	lower := strings.ToLower(trimmed)

	if len(trimmed) < 20 {
		return false, schema.RejectionTooShort
	}

	for _, marker := range hardFailMarkers {
		if strings.Contains(lower, marker) {
			return false, schema.RejectionNotInstalledOutput
		}
	}

	for _, marker := range environmentBlockedMarkers {
		if strings.Contains(lower, marker) {
			return false, schema.RejectionEnvironmentBlocked
		}
	}

	hasOptionError := false
	for _, marker := range optionErrorMarkers {
		if strings.Contains(lower, marker) {
			hasOptionError = true
			break
		}
	}
	hasStructuredSection := false
	for _, marker := range structuredSectionMarkers {
		if strings.Contains(lower, marker) {
			hasStructuredSection = true
			break
		}
	}
	if hasOptionError && !hasStructuredSection {
		return false, schema.RejectionOptionErrorOutput
	}

	if IsManPageOutput(trimmed) {
		return true, schema.RejectionNone
	}

	for _, word := range helpIndicatorWords {
		if strings.Contains(lower, word) {
			return true, schema.RejectionNone
		}
	}

	if hasStructuredSection {
		return true, schema.RejectionNone
	}

	return false, schema.RejectionNotHelpOutput
}

// IsManPageOutput reports whether text looks like a man page: at least
// two header lines made only of uppercase letters, digits and spaces
// (three or more characters, any words), or a first line containing
// "(" and ")" plus one such header. The format classifier's Man scoring
// bucket applies the same rule with its own copy (see SPEC_FULL.md §4.3b).
func IsManPageOutput(text string) bool {
	matches := manSectionRe.FindAllString(text, -1)
	if len(matches) >= 2 {
		return true
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) > 0 && strings.Contains(lines[0], "(") && strings.Contains(lines[0], ")") && len(matches) >= 1 {
		return true
	}
	return false
}

func reasonToFailureCode(reason schema.RejectionReason) schema.FailureCode {
	switch reason {
	case schema.RejectionEnvironmentBlocked:
		return schema.FailurePermissionBlocked
	case schema.RejectionNotInstalledOutput:
		return schema.FailureNotInstalled
	default:
		return schema.FailureNotHelpOutput
	}
}
