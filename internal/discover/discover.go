// Package discover resolves a command list from explicit names, an
// allowlist, and/or a PATH scan, then fans extraction out across a
// bounded worker pool and assembles a deterministic SchemaPackage
// (spec.md §4.10 discovery and orchestration).
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/anthropics/cmdschema/internal/cache"
	"github.com/anthropics/cmdschema/internal/extract"
	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/schema"
)

// DefaultAllowlist is the built-in set of common commands considered
// when Config.UseAllowlist is set.
var DefaultAllowlist = []string{
	"awk", "bash", "cat", "cd", "chmod", "chown", "cp", "curl", "docker",
	"du", "echo", "env", "find", "git", "grep", "head", "jq", "kill",
	"kubectl", "less", "ln", "ls", "make", "mkdir", "mv", "nano", "npm",
	"pnpm", "ps", "pwd", "rg", "rm", "rmdir", "sed", "ssh", "sudo",
	"systemctl", "tail", "tar", "touch", "vim", "wget", "whoami", "xargs",
	"yarn", "cargo", "rustc", "go", "python", "python3",
}

// guiLauncherNames are PATH-scan candidates never worth probing: they
// open windows rather than printing help text.
var guiLauncherNames = map[string]bool{
	"open": true, "browse": true, "sensible-browser": true, "xmessage": true,
	"xhost": true, "xsetmode": true, "xsetpointer": true, "xkeystone": true,
}

// Config controls command discovery and extraction.
type Config struct {
	Commands         []string
	UseAllowlist     bool
	ScanPath         bool
	ExcludedCommands []string
	QualityPolicy    quality.Policy
	InstalledOnly    bool
	Jobs             int
	CacheDir         string
}

// Outcome is the aggregated result of a discovery + extraction run.
type Outcome struct {
	Package  schema.SchemaPackage
	Failures []string
	Warnings []string
	Reports  []schema.ExtractionReport
}

// Tools returns a deterministic, deduplicated command list from cfg.
func Tools(cfg Config) []string {
	excluded := map[string]bool{}
	for _, c := range cfg.ExcludedCommands {
		if c != "" {
			excluded[c] = true
		}
	}

	set := map[string]bool{}
	for _, c := range cfg.Commands {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" || excluded[trimmed] {
			continue
		}
		set[trimmed] = true
	}

	if cfg.UseAllowlist {
		for _, c := range DefaultAllowlist {
			if excluded[c] {
				continue
			}
			if commandExists(c) {
				set[c] = true
			}
		}
	}

	if cfg.ScanPath {
		for _, c := range pathExecutables() {
			if !isScanPathCandidate(c) || excluded[c] {
				continue
			}
			set[c] = true
		}
	}

	if cfg.InstalledOnly {
		for c := range set {
			if !commandExists(c) {
				delete(set, c)
			}
		}
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func commandExists(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

func isScanPathCandidate(command string) bool {
	lower := strings.ToLower(command)
	if strings.HasPrefix(lower, "xdg-") {
		return false
	}
	return !guiLauncherNames[lower]
}

func pathExecutables() []string {
	pathEnv := os.Getenv("PATH")
	if pathEnv == "" {
		return nil
	}
	set := map[string]bool{}
	for _, dir := range filepath.SplitList(pathEnv) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || !isExecutable(info) {
				continue
			}
			set[entry.Name()] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func isExecutable(info os.FileInfo) bool {
	return !info.IsDir() && info.Mode()&0o111 != 0
}

// DefaultParallelJobs picks a worker-pool size bounded by CPU count and
// workload size: capped at 8 for large workloads (>=500 commands) or 12
// otherwise, never below 1 and never above commandCount.
func DefaultParallelJobs(commandCount int) int {
	cpuCount := runtime.NumCPU()
	capLimit := 12
	if commandCount >= 500 {
		capLimit = 8
	}
	jobs := cpuCount
	if jobs > capLimit {
		jobs = capLimit
	}
	if jobs > commandCount {
		jobs = commandCount
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

type commandRun struct {
	command string
	run     extract.Run
}

// Run discovers commands per cfg and extracts schemas for each across a
// bounded worker pool, consulting the on-disk cache when CacheDir is
// set. Results are sorted by command name for deterministic output.
// generatedAt is supplied by the caller rather than computed internally
// so that a single discovery run stamps one consistent timestamp across
// its package and report bundle.
func Run(ctx context.Context, cfg Config, version, generatedAt string) Outcome {
	commands := Tools(cfg)

	var diskCache *cache.Cache
	if cfg.CacheDir != "" {
		if c, err := cache.Open(cfg.CacheDir); err == nil {
			diskCache = c
		}
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = DefaultParallelJobs(len(commands))
	}

	results := make([]commandRun, len(commands))
	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)

	for i, command := range commands {
		wg.Add(1)
		go func(i int, command string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = commandRun{command: command, run: extractOne(ctx, command, cfg.QualityPolicy, diskCache)}
		}(i, command)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].command < results[j].command })

	pkg := schema.NewPackage(version, generatedAt)
	var failures, warnings []string
	var reports []schema.ExtractionReport

	for _, r := range results {
		if r.run.Report.AcceptedForSuggestions && r.run.Schema != nil {
			sch := *r.run.Schema
			sch.SchemaVersion = schema.SchemaContractVersion
			pkg.Schemas = append(pkg.Schemas, sch)
		} else {
			failures = append(failures, r.command)
		}
		for _, w := range r.run.Report.Warnings {
			warnings = append(warnings, r.command+": "+w)
		}
		reports = append(reports, r.run.Report)
	}

	return Outcome{Package: pkg, Failures: failures, Warnings: warnings, Reports: reports}
}

// extractOne consults the cache (with a quick version re-probe to catch
// binary upgrades that don't change mtime/size), falling back to a full
// extraction on miss or mismatch.
func extractOne(ctx context.Context, command string, policy quality.Policy, diskCache *cache.Cache) extract.Run {
	var key cache.Key
	haveKey := false
	if diskCache != nil {
		if k, ok := cache.BuildKey(command, policy); ok {
			key, haveKey = k, true
			if entry, ok := diskCache.Get(key); ok {
				current, currentOK := cache.DetectQuickVersion(command)
				cachedOK := entry.DetectedVersion != ""
				if currentOK == cachedOK && (!currentOK || current == entry.DetectedVersion) {
					return extract.Run{Schema: entry.Schema, Report: entry.Report}
				}
			}
		}
	}

	extractor := extract.NewExtractor(policy)
	run := extractor.Extract(ctx, command)

	if diskCache != nil && haveKey {
		version, probeMode := "", run.Report.SelectedFormat
		if run.Schema != nil {
			version = run.Schema.Version
		}
		_ = diskCache.Put(key, run.Schema, run.Report, version, probeMode)
	}

	return run
}

// FailureCodeCount pairs a failure code with its occurrence count.
type FailureCodeCount struct {
	Code  schema.FailureCode
	Count int
}

// FailureCodeSummary tallies failure code occurrences across reports,
// sorted by code for deterministic output.
func FailureCodeSummary(reports []schema.ExtractionReport) []FailureCodeCount {
	counts := map[schema.FailureCode]int{}
	for _, r := range reports {
		if r.FailureCode != nil {
			counts[*r.FailureCode]++
		}
	}
	out := make([]FailureCodeCount, 0, len(counts))
	for code, count := range counts {
		out = append(out, FailureCodeCount{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
