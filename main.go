// tskit — Qt Linguist TS catalog manager with AI translation support.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linguakit/tskit/catalog"
	"github.com/linguakit/tskit/config"
	"github.com/linguakit/tskit/convert"
	"github.com/linguakit/tskit/copilot"
	"github.com/linguakit/tskit/extract"
	"github.com/linguakit/tskit/i18n"
	"github.com/linguakit/tskit/langmeta"
	"github.com/linguakit/tskit/lint"
	"github.com/linguakit/tskit/lockfile"
	"github.com/linguakit/tskit/merge"
	"github.com/linguakit/tskit/pofile"
	"github.com/linguakit/tskit/settings"
	"github.com/linguakit/tskit/translate"
	ts "github.com/linguakit/tskit/tsfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tskit",
		Short: "Qt Linguist TS catalog manager with AI translation",
		Long: `tskit — Qt Linguist TS catalog manager with AI translation.

Manages .ts translation catalogs for QGIS plugins and other Qt-based
projects: extracts tr() strings from Python sources and .ui forms,
merges catalogs against fresh templates, validates placeholder
integrity, converts to/from gettext PO, and translates using multiple
AI providers including native GitHub Copilot OAuth integration.

Commands:
  status      Show project info and translation statistics
  init        Prepare catalogs (extract strings, create/update .ts files)
  check       Validate catalogs (placeholders, duplicates, accelerators)
  lookup      Resolve a translation for a context/source pair
  convert     Convert between .ts and gettext .po
  translate   Translate catalogs using AI (auto-inits if needed)
  auth        Manage provider authentication

AI Providers:
  google         Google AI (Gemini) — API key
  groq           Groq — API key required
  copilot        GitHub Copilot (native OAuth)
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Plugin root directory")

	root.AddCommand(
		newStatusCmd(),
		newInitCmd(),
		newCheckCmd(),
		newLookupCmd(),
		newConvertCmd(),
		newTranslateCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tskit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: project info + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project info and translation statistics",
		Long: `Show auto-detected project structure and translation statistics.

Displays plugin metadata, catalog layout, detected locales, and
per-locale translation progress. Does not modify any files.`,
		Run: func(cmd *cobra.Command, args []string) {
			runStatus()
		},
	}
}

func runStatus() {
	proj, tf, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\n%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	fmt.Fprintf(os.Stderr, "  Name:       %s\n", proj.Name)
	fmt.Fprintf(os.Stderr, "  Version:    %s\n", proj.Version)
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", proj.Root)
	fmt.Fprintf(os.Stderr, "  Catalogs:   %s\n", filepath.Join(proj.I18nDir, proj.FilePrefix+"_<locale>.ts"))
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", proj.SourceLang)
	if tf != nil {
		fmt.Fprintf(os.Stderr, "  Config:     %s\n", config.TskitFileName)
	}

	fmt.Fprintln(os.Stderr)

	if len(proj.Languages) > 0 {
		fmt.Fprintf(os.Stderr, "  Locales:    %s\n", strings.Join(proj.Languages, ", "))
	} else {
		fmt.Fprintf(os.Stderr, "  Locales:    %s\n", i18n.T("No translation catalogs found"))
	}

	fmt.Fprintln(os.Stderr)

	if len(proj.Languages) > 0 {
		showStatsTable(proj)
	}

	if lf, err := lockfile.Load(proj.I18nDir); err == nil {
		if catalogs, _ := lf.Stats(); catalogs > 0 {
			logInfo("Lock file: %s", lf.Summary())
			fmt.Fprintln(os.Stderr)
		}
	}

	printSuggestedCommands(proj)
}

func showStatsTable(proj *config.Project) {
	fmt.Fprintf(os.Stderr, "%sTranslation Statistics%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "\n%-10s %-12s %-12s %-10s %-8s\n", "Locale", "Finished", "Unfinished", "Obsolete", "Percent")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 56))

	type localeGap struct {
		locale     string
		unfinished int
	}
	var gaps []localeGap

	for _, locale := range proj.Languages {
		f, err := ts.ParseFile(proj.TSPath(locale))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-10s %-12s %-12s %-10s %-8s\n", locale, "error", "-", "-", "-")
			continue
		}

		total, finished, unfinished, obsolete := f.Stats()
		active := total - obsolete
		percent := 0
		if active > 0 {
			percent = finished * 100 / active
		}

		fmt.Fprintf(os.Stderr, "%-10s %-12d %-12d %-10d %d%%\n", locale, finished, unfinished, obsolete, percent)

		if unfinished > 0 {
			gaps = append(gaps, localeGap{locale, unfinished})
		}
	}

	fmt.Fprintln(os.Stderr, strings.Repeat("─", 56))

	if len(gaps) > 0 {
		fmt.Fprintln(os.Stderr)
		logInfo("Translation gaps:")
		for _, g := range gaps {
			fmt.Fprintf(os.Stderr, "  %s: %d unfinished\n", g.locale, g.unfinished)
		}
	} else {
		logSuccess("%s", i18n.T("All messages are translated"))
	}

	fmt.Fprintln(os.Stderr)
}

func printSuggestedCommands(proj *config.Project) {
	fmt.Fprintf(os.Stderr, "%sSuggested Commands%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	if len(proj.Languages) == 0 {
		fmt.Fprintf(os.Stderr, "  # Create catalogs (extract strings from .py/.ui sources)\n")
		fmt.Fprintf(os.Stderr, "  tskit init --lang de,fr,es\n\n")
		return
	}

	fmt.Fprintf(os.Stderr, "  # Refresh catalogs from sources (preserves translations)\n")
	fmt.Fprintf(os.Stderr, "  tskit init\n\n")
	fmt.Fprintf(os.Stderr, "  # Validate placeholder integrity\n")
	fmt.Fprintf(os.Stderr, "  tskit check\n\n")
	fmt.Fprintf(os.Stderr, "  # Translate using AI\n")
	fmt.Fprintf(os.Stderr, "  tskit translate --provider copilot --model gpt-4o\n\n")
}

// ---------------------------------------------------------------------------
// init (extract + create/update .ts catalogs)
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var (
		srcDirs string
		langs   string
		prefix  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Prepare catalogs (extract strings, create/update .ts files)",
		Long: `Extract translatable strings and create/update TS catalogs.

Scans Python sources for tr()/translate() calls and Qt Designer .ui
forms for translatable properties, builds a fresh template, then merges
it into each locale's catalog.

This command is idempotent — safe to run multiple times. Existing
translations are preserved; messages that disappeared from the sources
are marked obsolete rather than deleted.`,
		Run: func(cmd *cobra.Command, args []string) {
			proj, _, err := config.Load(rootDir)
			if err != nil {
				logError("%v", err)
				os.Exit(1)
			}

			if srcDirs != "" {
				proj.SourceDirs = splitList(srcDirs)
			}
			if langs != "" {
				proj.Languages = splitList(langs)
			}
			if prefix != "" {
				proj.FilePrefix = prefix
			}

			runInit(proj)
		},
	}

	cmd.Flags().StringVar(&srcDirs, "src", "", "Source directories to scan (comma-separated)")
	cmd.Flags().StringVar(&langs, "lang", "", "Locales (comma-separated)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Catalog file prefix")

	_ = cmd.Flags().MarkHidden("src")
	_ = cmd.Flags().MarkHidden("prefix")

	return cmd
}

func runInit(proj *config.Project) {
	logInfo("Initializing translations for %s (v%s)...", proj.Name, proj.Version)

	template, err := doExtract(proj)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	if len(proj.Languages) == 0 {
		logError("No locales detected and none specified. Use --lang, e.g.:")
		fmt.Fprintf(os.Stderr, "  tskit init --lang de,fr,it,es\n")
		os.Exit(1)
	}

	if err := os.MkdirAll(proj.I18nDir, 0755); err != nil {
		logError("Creating %s: %v", proj.I18nDir, err)
		os.Exit(1)
	}

	logInfo("Updating catalogs for: %s", strings.Join(proj.Languages, ", "))

	created, updated := 0, 0
	for _, locale := range proj.Languages {
		tsPath := proj.TSPath(locale)

		isNew := false
		existing, err := ts.ParseFile(tsPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logError("Reading %s: %v", tsPath, err)
				continue
			}
			existing = ts.NewFile(locale)
			isNew = true
		}

		merged := merge.Merge(existing, template)
		merged.Language = locale
		merged.SourceLanguage = proj.SourceLang

		if err := merged.WriteFile(tsPath); err != nil {
			logError("Writing %s: %v", tsPath, err)
			continue
		}
		if isNew {
			logSuccess("Created: %s", tsPath)
			created++
		} else {
			logSuccess("Updated: %s", tsPath)
			updated++
		}
	}

	logInfo("Summary: %d created, %d updated", created, updated)

	fmt.Fprintln(os.Stderr)
	showStatsTable(proj)
	logSuccess("Init complete!")
}

// doExtract scans project sources into a template catalog. Used by both
// 'init' and auto-extraction in 'translate'.
func doExtract(proj *config.Project) (*ts.File, error) {
	scanDirs := proj.SourceDirs
	if len(scanDirs) == 0 {
		scanDirs = []string{proj.Root}
	}

	logInfo("Scanning for source files in: %s", strings.Join(scanDirs, ", "))

	result, err := extract.Run(scanDirs, proj.FallbackContext)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	if result.Strings == 0 {
		return nil, fmt.Errorf("no translatable strings found (looked for tr()/translate() in .py and .ui files)")
	}

	logSuccess("Extracted %d strings from %d source files", result.Strings, len(result.SourceFiles))
	return result.Template, nil
}

// ---------------------------------------------------------------------------
// check (validate catalogs)
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	var (
		langs  string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate catalogs (placeholders, duplicates, accelerators)",
		Long: `Validate TS catalogs.

Checks that translations don't invent placeholder tokens absent from
the source string, that plural messages carry their numerus forms, and
flags duplicate messages and dropped accelerators.

Exits non-zero if any error-severity issue is found (or any issue at
all with --strict).`,
		Run: func(cmd *cobra.Command, args []string) {
			runCheck(langs, strict)
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Locales to check (comma-separated, default: all)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func runCheck(langs string, strict bool) {
	proj, _, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	targets := proj.Languages
	if langs != "" {
		targets = splitList(langs)
	}
	if len(targets) == 0 {
		logError("No catalogs to check. Run 'tskit init' first.")
		os.Exit(1)
	}

	totalErrors, totalWarnings := 0, 0
	for _, locale := range targets {
		tsPath := proj.TSPath(locale)
		f, err := ts.ParseFile(tsPath)
		if err != nil {
			logError("Reading %s: %v", tsPath, err)
			totalErrors++
			continue
		}

		issues := lint.Check(f)
		if len(issues) == 0 {
			logSuccess("%s: clean", locale)
			continue
		}

		for _, issue := range issues {
			switch issue.Severity {
			case lint.Error:
				logError("%s: %s", locale, issue)
				totalErrors++
			default:
				logWarning("%s: %s", locale, issue)
				totalWarnings++
			}
		}
	}

	fmt.Fprintln(os.Stderr)
	if totalErrors > 0 || (strict && totalWarnings > 0) {
		logError("Check failed: %d error(s), %d warning(s)", totalErrors, totalWarnings)
		os.Exit(1)
	}
	if totalWarnings > 0 {
		logWarning("Check passed with %d warning(s)", totalWarnings)
		return
	}
	logSuccess("All catalogs are clean")
}

// ---------------------------------------------------------------------------
// lookup (resolve a translation)
// ---------------------------------------------------------------------------

func newLookupCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "lookup CONTEXT SOURCE",
		Short: "Resolve a translation for a context/source pair",
		Long: `Resolve a translation the way the host application would.

Loads all catalogs, picks the best match for the requested locale
(exact locale, then base language, then a sibling region), and prints
the translation. Falls back to the source string when the message is
missing or unfinished.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runLookup(args[0], args[1], lang)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Target locale (required)")
	_ = cmd.MarkFlagRequired("lang")

	return cmd
}

func runLookup(context, source, lang string) {
	proj, _, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	set, err := catalog.Load(proj.I18nDir)
	if err != nil {
		logError("Loading catalogs from %s: %v", proj.I18nDir, err)
		os.Exit(1)
	}

	tr := set.Translator(lang)
	result := tr.Tr(context, source)
	fmt.Println(result)

	if result == source {
		if picked := set.Pick(lang); picked == nil {
			logWarning("No catalog matches locale %q (available: %s)", lang, strings.Join(set.Locales(), ", "))
		} else if _, ok := picked.Lookup(context, source); !ok {
			logWarning("Message not found or unfinished; returned the source string")
		}
	}
}

// ---------------------------------------------------------------------------
// convert (.ts <-> .po)
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	var (
		lang        string
		fallbackCtx string
	)

	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert between .ts and gettext .po",
		Long: `Convert a translation catalog between Qt TS and gettext PO.

The direction is inferred from file extensions. Context names map to
msgctxt, unfinished entries with draft text map to fuzzy, and obsolete
entries map to #~ comments, matching Qt's lconvert.

Examples:
  tskit convert i18n/FilterMate_de.ts FilterMate_de.po
  tskit convert FilterMate_de.po i18n/FilterMate_de.ts --lang de`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runConvert(args[0], args[1], lang, fallbackCtx)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Target locale for PO→TS (default: from PO header)")
	cmd.Flags().StringVar(&fallbackCtx, "context", "", "Context for PO entries without msgctxt")

	return cmd
}

func runConvert(input, output, lang, fallbackCtx string) {
	inExt := strings.ToLower(filepath.Ext(input))
	outExt := strings.ToLower(filepath.Ext(output))

	switch {
	case inExt == ".ts" && outExt == ".po":
		f, err := ts.ParseFile(input)
		if err != nil {
			logError("Reading %s: %v", input, err)
			os.Exit(1)
		}
		proj, _, _ := config.Load(rootDir)
		name := "unknown"
		if proj != nil {
			name = proj.Name
		}
		po := convert.TSToPO(f, name)
		if err := po.WriteFile(output); err != nil {
			logError("Writing %s: %v", output, err)
			os.Exit(1)
		}
		logSuccess("Converted %s → %s (%d entries)", input, output, len(po.Entries))

	case inExt == ".po" && outExt == ".ts":
		po, err := pofile.ParseFile(input)
		if err != nil {
			logError("Reading %s: %v", input, err)
			os.Exit(1)
		}
		if lang == "" {
			lang = po.HeaderField("Language")
		}
		if lang == "" {
			lang = catalog.LocaleFromFilename(filepath.Base(output))
		}
		if fallbackCtx == "" {
			if proj, _, _ := config.Load(rootDir); proj != nil {
				fallbackCtx = proj.FallbackContext
			}
		}
		f := convert.POToTS(po, lang, fallbackCtx)
		if err := f.WriteFile(output); err != nil {
			logError("Writing %s: %v", output, err)
			os.Exit(1)
		}
		total, _, _, _ := f.Stats()
		logSuccess("Converted %s → %s (%d messages)", input, output, total)

	default:
		logError("Cannot infer direction from extensions %q → %q (expected .ts/.po)", inExt, outExt)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		// Target selection
		langs string

		// Provider selection
		provider string
		apiKey   string
		model    string
		baseURL  string

		// Translation behavior
		chunkSize   int
		retranslate bool
		incremental bool
		prompt      string
		verbose     bool
		dryRun      bool

		// Parallelization
		parallel      bool
		maxConcurrent int
		requestDelay  time.Duration

		// Network
		timeout    time.Duration
		proxy      string
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate TS catalogs using AI",
		Long: `Translate TS catalogs using AI providers.

Automatically initializes the project if needed (extracts strings,
creates catalogs). Requires --provider and --model flags.

Translations that invent placeholder tokens are rejected and the
affected messages stay unfinished.

Examples:
  # Translate using GitHub Copilot
  tskit translate --provider copilot --model gpt-4o

  # Translate using Google AI (API key)
  tskit translate --provider google --model gemini-2.5-flash

  # Translate specific locales in parallel
  tskit translate --provider copilot --model gpt-4o --lang ru,de --parallel

  # Dry run (show what would be translated)
  tskit translate --provider copilot --model gpt-4o --dry-run`,
		Run: func(cmd *cobra.Command, args []string) {
			runTranslate(translateArgs{
				langs:    langs,
				provider: provider, apiKey: apiKey, model: model,
				baseURL:   baseURL,
				chunkSize: chunkSize, retranslate: retranslate,
				incremental: incremental,
				prompt:      prompt, verbose: verbose,
				dryRun: dryRun, parallel: parallel,
				maxConcurrent: maxConcurrent, requestDelay: requestDelay,
				timeout: timeout, proxy: proxy, maxRetries: maxRetries,
			})
		},
	}

	// Provider selection
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider (required): google, groq, copilot, ollama, custom-openai")
	cmd.Flags().StringVar(&model, "model", "", "Model name (required)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or TSKIT_API_KEY env var)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")

	// Target selection
	cmd.Flags().StringVar(&langs, "lang", "", "Locales to translate (comma-separated, default: all with unfinished)")

	// Translation behavior
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Entries per API request (0 = all at once)")
	cmd.Flags().BoolVar(&retranslate, "retranslate", false, "Re-translate finished entries too")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "Skip entries unchanged since the last run (tskit.lock)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom system prompt (use {{targetLang}} placeholder)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling AI")

	// Parallelization
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Enable parallel translation")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 3, "Maximum concurrent tasks (with --parallel)")
	cmd.Flags().DurationVar(&requestDelay, "request-delay", 0, "Delay between parallel tasks")

	// Network
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Maximum retries on rate limit (429)")

	// Provider completion
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"google\tGoogle AI (Gemini) — API key required",
			"groq\tGroq — API key required",
			"copilot\tGitHub Copilot — native OAuth",
			"ollama\tOllama local server",
			"custom-openai\tCustom OpenAI-compatible endpoint",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	// Model completion (provider-aware)
	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		p, _ := cmd.Flags().GetString("provider")
		switch p {
		case "google":
			return []string{"gemini-2.5-flash", "gemini-2.0-flash-exp", "gemini-1.5-pro"}, cobra.ShellCompDirectiveNoFileComp
		case "groq":
			return []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"}, cobra.ShellCompDirectiveNoFileComp
		case "copilot":
			return []string{"gpt-4o", "gpt-5", "gpt-5-mini", "claude-sonnet-4", "gemini-2.5-pro"}, cobra.ShellCompDirectiveNoFileComp
		case "ollama":
			return []string{"llama3.2", "qwen2.5", "mistral", "phi3"}, cobra.ShellCompDirectiveNoFileComp
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	})

	return cmd
}

type translateArgs struct {
	langs                            string
	provider, apiKey, model, baseURL string
	chunkSize                        int
	retranslate, incremental         bool
	prompt                           string
	verbose, dryRun, parallel        bool
	maxConcurrent                    int
	requestDelay, timeout            time.Duration
	proxy                            string
	maxRetries                       int
}

func runTranslate(a translateArgs) {
	proj, _, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	// Resolve API key from flag, environment, or credentials store
	key := a.apiKey
	if key == "" {
		key = os.Getenv("TSKIT_API_KEY")
	}
	if key == "" {
		key = settings.GetAPIKey(a.provider)
	}

	if a.provider == "" {
		logError("No provider specified. Use --provider to choose an AI translation service.\n\n" +
			"Available providers:\n" +
			"  Cloud APIs (require API key):\n" +
			"    google         Google AI (Gemini)\n" +
			"    groq           Groq\n\n" +
			"  Cloud (requires GitHub account):\n" +
			"    copilot        GitHub Copilot (native OAuth)\n\n" +
			"  Local services (no API key):\n" +
			"    ollama         Ollama local server\n\n" +
			"  Custom:\n" +
			"    custom-openai  Custom OpenAI-compatible endpoint\n\n" +
			"Example: tskit translate --provider copilot --model gpt-4o")
		os.Exit(1)
	}

	prov := resolveProvider(a.provider, a.baseURL, key, a.model, a.proxy, a.timeout)

	if err := validateProvider(prov, key); err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	// Auto-init when no catalogs exist yet
	if len(proj.Languages) == 0 {
		logError("No catalogs found. Run 'tskit init --lang ...' first.")
		os.Exit(1)
	}

	// Determine which locales to translate
	var targetLangs []string
	if a.langs != "" {
		targetLangs = splitList(a.langs)
	} else {
		for _, locale := range proj.Languages {
			f, err := ts.ParseFile(proj.TSPath(locale))
			if err != nil {
				targetLangs = append(targetLangs, locale)
				continue
			}
			_, _, unfinished, _ := f.Stats()
			if unfinished > 0 || a.retranslate {
				targetLangs = append(targetLangs, locale)
			}
		}
	}

	if len(targetLangs) == 0 {
		logSuccess("%s", i18n.T("Translation complete"))
		return
	}

	parallelMode := translate.ParallelSequential
	if a.parallel {
		parallelMode = translate.ParallelFullParallel
	}

	logInfo("Provider: %s (%s), Model: %s", prov.Name, prov.ID, prov.Model)
	if a.parallel {
		logInfo("Parallel: enabled, max concurrent: %d", a.maxConcurrent)
	} else {
		logInfo("Parallel: disabled (sequential)")
	}
	if a.chunkSize > 0 {
		logInfo("Chunk size: %d", a.chunkSize)
	} else {
		logInfo("Chunk size: all at once")
	}
	logInfo("Translating: %s", strings.Join(targetLangs, ", "))

	// Lock file records source checksums of translated messages so
	// --incremental runs skip entries the AI already handled.
	var lf *lockfile.LockFile
	if a.incremental || !a.dryRun {
		lf, err = lockfile.Load(proj.I18nDir)
		if err != nil {
			logWarning("Cannot load lock file: %v", err)
			lf = nil
		}
	}

	skipUnchanged := func(tsPath string) func(string, *ts.Message) bool {
		if !a.incremental || lf == nil {
			return nil
		}
		catKey := lockfile.CatalogKey(tsPath)
		return func(context string, m *ts.Message) bool {
			return !lf.IsChanged(catKey, lockfile.MessageKey(context, m.Source), m.Source)
		}
	}

	if a.dryRun {
		for _, locale := range targetLangs {
			tsPath := proj.TSPath(locale)
			f, err := ts.ParseFile(tsPath)
			if err != nil {
				logError("Reading %s: %v", tsPath, err)
				continue
			}
			count := 0
			skip := skipUnchanged(tsPath)
			for _, ref := range f.UnfinishedMessages() {
				if skip != nil && skip(ref.Context, ref.Message) {
					continue
				}
				count++
			}
			if a.retranslate {
				total, _, _, obsolete := f.Stats()
				count = total - obsolete
			}
			logInfo("%s (%s): %d strings to translate", locale, langmeta.EnglishName(locale), count)
		}
		return
	}

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, saving progress...")
		cancel()
	}()

	opts := translate.Options{
		Provider:            prov,
		ChunkSize:           a.chunkSize,
		ParallelMode:        parallelMode,
		MaxConcurrent:       a.maxConcurrent,
		RequestDelay:        a.requestDelay,
		Timeout:             a.timeout,
		MaxRetries:          a.maxRetries,
		RetranslateExisting: a.retranslate,
		SystemPrompt:        a.prompt,
		Verbose:             a.verbose,
		OnProgress: func(lang string, done, total int) {
			logInfo("  %s: %d/%d", lang, done, total)
		},
		OnLog: func(format string, args ...any) {
			logInfo(format, args...)
		},
		OnError: func(format string, args ...any) {
			logError(format, args...)
		},
	}

	var langTasks []translate.LangTask
	for _, locale := range targetLangs {
		tsPath := proj.TSPath(locale)
		f, err := ts.ParseFile(tsPath)
		if err != nil {
			logError("Reading %s: %v", tsPath, err)
			continue
		}
		langTasks = append(langTasks, translate.LangTask{
			Lang: locale,
			File: f,
			Path: tsPath,
		})
	}

	if len(langTasks) == 0 {
		logError("No valid catalogs to translate")
		os.Exit(1)
	}

	// Per-catalog skip hooks need per-task options, so translate each
	// incremental run sequentially per catalog when the hook is active.
	if a.incremental && lf != nil {
		for i := range langTasks {
			taskOpts := opts
			taskOpts.SkipMessage = skipUnchanged(langTasks[i].Path)
			if err := translate.TranslateAll(ctx, langTasks[i:i+1], taskOpts); err != nil {
				if ctx.Err() != nil {
					recordLockfile(lf, langTasks)
					logWarning("Translation interrupted, partial progress saved")
					os.Exit(0)
				}
				logError("Translation failed: %v", err)
				recordLockfile(lf, langTasks[:i+1])
				os.Exit(1)
			}
		}
	} else {
		err = translate.TranslateAll(ctx, langTasks, opts)
		if err != nil {
			if lf != nil {
				recordLockfile(lf, langTasks)
			}
			if ctx.Err() != nil {
				logWarning("Translation interrupted, partial progress saved")
				os.Exit(0)
			}
			logError("Translation failed: %v", err)
			os.Exit(1)
		}
	}

	if lf != nil {
		recordLockfile(lf, langTasks)
	}

	logSuccess("%s", i18n.T("Translation complete"))
}

// recordLockfile stores the source checksum of every finished message
// and drops entries for messages no longer in the catalogs.
func recordLockfile(lf *lockfile.LockFile, tasks []translate.LangTask) {
	for _, task := range tasks {
		catKey := lockfile.CatalogKey(task.Path)
		var current []string
		for _, c := range task.File.Contexts {
			for _, m := range c.Messages {
				if m.IsObsolete() {
					continue
				}
				key := lockfile.MessageKey(c.Name, m.Source)
				current = append(current, key)
				if m.IsFinished() {
					lf.Update(catKey, key, m.Source)
				}
			}
		}
		lf.Clean(catKey, current)
	}
	if err := lf.Save(); err != nil {
		logWarning("Cannot save lock file: %v", err)
	}
}

// ---------------------------------------------------------------------------
// auth (login / logout / list)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider authentication",
		Long: `Manage authentication credentials for all AI providers.

OAuth providers (interactive device flow):
  copilot       GitHub Copilot (device code flow)

API key providers (paste your key):
  google        Google AI Studio (Gemini API key)
  groq          Groq Cloud (free tier available)
  custom-openai Custom OpenAI-compatible endpoint

No auth required:
  ollama        Local Ollama server

Examples:
  tskit auth login                         Interactive provider selection
  tskit auth login --provider copilot      OAuth with GitHub Copilot
  tskit auth login --provider google       Store Google AI API key
  tskit auth logout --provider google      Remove Google API key
  tskit auth logout                        Remove all credentials
  tskit auth list                          Show all stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// allProviders is the ordered list of providers for the interactive menu.
var allProviders = []struct {
	id   string
	name string
	desc string
	auth string // "oauth", "api-key", "none"
}{
	{"copilot", "GitHub Copilot", "requires GitHub account", "oauth"},
	{"google", "Google AI Studio", "Gemini API key, free tier available", "api-key"},
	{"groq", "Groq Cloud", "fast inference, free tier available", "api-key"},
	{"custom-openai", "Custom OpenAI", "any OpenAI-compatible endpoint", "api-key"},
	{"ollama", "Ollama", "local server, no auth needed", "none"},
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an AI provider",
		Long: `Authenticate with an AI provider using OAuth or API key.

If --provider is not specified, you will be prompted to choose.

OAuth providers:
  copilot       Device code flow — enter code in browser

API key providers:
  google        Paste your Google AI Studio API key
  groq          Paste your Groq API key
  custom-openai Paste your API key + endpoint URL`,
		Run: func(cmd *cobra.Command, args []string) {
			if provider == "" {
				fmt.Fprintln(os.Stderr, "")
				fmt.Fprintf(os.Stderr, "%sSelect provider to authenticate:%s\n\n", colorBlue, colorReset)
				for i, p := range allProviders {
					if p.auth == "none" {
						continue // ollama needs no auth
					}
					authLabel := ""
					switch p.auth {
					case "oauth":
						authLabel = "OAuth"
					case "api-key":
						authLabel = "API key"
					}
					fmt.Fprintf(os.Stderr, "  %d. %s%-13s%s %s (%s)\n",
						i+1, colorYellow, p.id, colorReset, p.desc, authLabel)
				}
				fmt.Fprintln(os.Stderr)
				fmt.Fprintf(os.Stderr, "Enter choice (number or name): ")

				scanner := bufio.NewScanner(os.Stdin)
				if !scanner.Scan() {
					logError("No input received")
					os.Exit(1)
				}
				choice := strings.TrimSpace(scanner.Text())

				found := false
				displayIdx := 0
				for _, p := range allProviders {
					if p.auth == "none" {
						continue
					}
					displayIdx++
					if choice == fmt.Sprintf("%d", displayIdx) || choice == p.id {
						provider = p.id
						found = true
						break
					}
				}
				if !found {
					logError("Invalid choice. Use: tskit auth login --provider PROVIDER")
					os.Exit(1)
				}
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			go func() {
				<-sigCh
				cancel()
			}()

			switch provider {
			case "copilot":
				authLoginCopilot(ctx)
			case "google", "groq":
				authLoginAPIKey(provider)
			case "custom-openai":
				authLoginCustomOpenAI()
			default:
				logError("Unknown provider '%s'. Run 'tskit auth login' for options.", provider)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to authenticate")
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(allProviders))
		for _, p := range allProviders {
			if p.auth == "none" {
				continue
			}
			completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func authLoginCopilot(ctx context.Context) {
	fmt.Fprintf(os.Stderr, "\n%sGitHub Copilot Authentication%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	_, err := copilot.DeviceCodeFlow(ctx, func(verificationURI, userCode string) {
		fmt.Fprintf(os.Stderr, "  1. Open this URL in your browser:\n")
		fmt.Fprintf(os.Stderr, "     %s%s%s\n\n", colorGreen, verificationURI, colorReset)
		fmt.Fprintf(os.Stderr, "  2. Enter this code:\n")
		fmt.Fprintf(os.Stderr, "     %s%s%s\n\n", colorYellow, userCode, colorReset)
		fmt.Fprintf(os.Stderr, "  Waiting for authorization...\n")
	})
	if err != nil {
		if ctx.Err() != nil {
			logWarning("Authentication cancelled")
			os.Exit(0)
		}
		logError("Authentication failed: %v", err)
		os.Exit(1)
	}

	logSuccess("Copilot authentication successful!")
	fmt.Fprintf(os.Stderr, "\n  You can now use: tskit translate --provider copilot --model gpt-4o\n\n")
}

func authLoginAPIKey(providerID string) {
	providerInfo := map[string]struct {
		name    string
		helpURL string
		example string
	}{
		"google": {
			name:    "Google AI Studio",
			helpURL: "https://aistudio.google.com/apikey",
			example: "tskit translate --provider google --model gemini-2.5-flash",
		},
		"groq": {
			name:    "Groq Cloud",
			helpURL: "https://console.groq.com/keys",
			example: "tskit translate --provider groq --model llama-3.3-70b-versatile",
		},
	}

	info := providerInfo[providerID]

	fmt.Fprintf(os.Stderr, "\n%s%s — API Key Setup%s\n", colorBlue, info.name, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	if info.helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n\n", colorGreen, info.helpURL, colorReset)
	}

	existing := settings.GetAPIKey(providerID)
	if existing != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key: ")
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		logError("No input received")
		os.Exit(1)
	}
	key := strings.TrimSpace(scanner.Text())

	if key == "" {
		if existing != "" {
			logInfo("Keeping existing key")
			return
		}
		logError("No API key provided")
		os.Exit(1)
	}

	if err := settings.SetAPIKey(providerID, key); err != nil {
		logError("Failed to save API key: %v", err)
		os.Exit(1)
	}

	logSuccess("%s API key saved!", info.name)
	fmt.Fprintf(os.Stderr, "\n  You can now use: %s\n\n", info.example)
}

func authLoginCustomOpenAI() {
	fmt.Fprintf(os.Stderr, "\n%sCustom OpenAI-Compatible Endpoint%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	scanner := bufio.NewScanner(os.Stdin)

	existing := settings.Get("custom-openai")
	if existing != nil && existing.BaseURL != "" {
		fmt.Fprintf(os.Stderr, "  Current endpoint: %s%s%s\n", colorYellow, existing.BaseURL, colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new endpoint URL, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter endpoint URL (e.g., https://api.example.com/v1): ")
	}

	if !scanner.Scan() {
		logError("No input received")
		os.Exit(1)
	}
	baseURL := strings.TrimSpace(scanner.Text())

	if baseURL == "" && existing != nil && existing.BaseURL != "" {
		baseURL = existing.BaseURL
	}
	if baseURL == "" {
		logError("Endpoint URL is required")
		os.Exit(1)
	}

	if existing != nil && existing.Key != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing.Key), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new API key, or press Enter to keep (leave empty for none): ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key (or press Enter if not required): ")
	}

	if !scanner.Scan() {
		logError("No input received")
		os.Exit(1)
	}
	apiKey := strings.TrimSpace(scanner.Text())

	if apiKey == "" && existing != nil {
		apiKey = existing.Key
	}

	if err := settings.SetAPIKeyWithBaseURL("custom-openai", apiKey, baseURL); err != nil {
		logError("Failed to save credentials: %v", err)
		os.Exit(1)
	}

	logSuccess("Custom OpenAI endpoint saved!")
	fmt.Fprintf(os.Stderr, "\n  You can now use: tskit translate --provider custom-openai --model MODEL_NAME\n\n")
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.

Examples:
  tskit auth logout                        Remove all credentials
  tskit auth logout --provider copilot     Remove only Copilot OAuth
  tskit auth logout --provider google      Remove only Google API key`,
		Run: func(cmd *cobra.Command, args []string) {
			if provider != "" {
				switch provider {
				case "copilot":
					if err := copilot.DeleteToken(); err != nil {
						logError("Failed to remove Copilot credentials: %v", err)
						os.Exit(1)
					}
					logSuccess("Copilot credentials removed")
				case "google", "groq", "custom-openai":
					if err := settings.Remove(provider); err != nil {
						logError("Failed to remove %s credentials: %v", provider, err)
						os.Exit(1)
					}
					logSuccess("%s credentials removed", provider)
				default:
					logError("Unknown provider '%s'. Run 'tskit auth list' to see providers.", provider)
					os.Exit(1)
				}
				return
			}

			if err := settings.RemoveAll(); err != nil {
				logError("Failed to remove credentials: %v", err)
				os.Exit(1)
			}
			logSuccess("All stored credentials removed")
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(allProviders))
		for _, p := range allProviders {
			if p.auth == "none" {
				continue
			}
			completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials and status",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%sStored Credentials%s\n", colorBlue, colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

			fmt.Fprintf(os.Stderr, "\n  %sOAuth Providers%s\n", colorYellow, colorReset)
			fmt.Fprintf(os.Stderr, "  %-14s %s\n", "copilot", copilot.TokenStatus())

			fmt.Fprintf(os.Stderr, "\n  %sAPI Key Providers%s\n", colorYellow, colorReset)
			apiKeyProviders := []struct {
				id   string
				name string
			}{
				{"google", "Google AI Studio"},
				{"groq", "Groq Cloud"},
				{"custom-openai", "Custom OpenAI"},
			}
			for _, p := range apiKeyProviders {
				entry := settings.Get(p.id)
				if entry != nil && entry.Key != "" {
					status := fmt.Sprintf("%sconfigured%s (key: %s)", colorGreen, colorReset, settings.MaskKey(entry.Key))
					if entry.BaseURL != "" {
						status += fmt.Sprintf("\n  %14s endpoint: %s", "", entry.BaseURL)
					}
					fmt.Fprintf(os.Stderr, "  %-14s %s\n", p.id, status)
				} else if p.id == "custom-openai" && entry != nil && entry.BaseURL != "" {
					// custom-openai may have just a URL, no key
					status := fmt.Sprintf("%sconfigured%s (no key)", colorGreen, colorReset)
					status += fmt.Sprintf("\n  %14s endpoint: %s", "", entry.BaseURL)
					fmt.Fprintf(os.Stderr, "  %-14s %s\n", p.id, status)
				} else {
					fmt.Fprintf(os.Stderr, "  %-14s %snot configured%s\n", p.id, colorRed, colorReset)
				}
			}

			fmt.Fprintf(os.Stderr, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
			envKey := os.Getenv("TSKIT_API_KEY")
			if envKey != "" {
				fmt.Fprintf(os.Stderr, "  TSKIT_API_KEY: %s%s%s (overrides stored keys)\n", colorGreen, settings.MaskKey(envKey), colorReset)
			} else {
				fmt.Fprintf(os.Stderr, "  TSKIT_API_KEY: %snot set%s\n", colorRed, colorReset)
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func resolveProvider(name, baseURL, apiKey, model, proxy string, timeout time.Duration) translate.Provider {
	defaults := translate.DefaultProviders()

	var prov translate.Provider

	if p, ok := defaults[strings.ToLower(name)]; ok {
		prov = p
	} else {
		prov = translate.Provider{
			ID:      translate.ProviderCustomOpenAI,
			Name:    name,
			BaseURL: name,
			Timeout: 60 * time.Second,
		}
	}

	if baseURL != "" {
		prov.BaseURL = baseURL
	} else if prov.ID == translate.ProviderCustomOpenAI {
		if storedURL := settings.GetBaseURL(prov.ID); storedURL != "" {
			prov.BaseURL = storedURL
		}
	}
	if apiKey != "" {
		prov.APIKey = apiKey
	}
	if model != "" {
		prov.Model = model
	}
	if proxy != "" {
		prov.Proxy = proxy
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}

	return prov
}

func validateProvider(prov translate.Provider, apiKey string) error {
	if prov.Model == "" {
		modelExamples := map[string]string{
			translate.ProviderGoogle:       "gemini-2.5-flash, gemini-2.0-flash-exp, gemini-1.5-pro",
			translate.ProviderGroq:         "llama-3.3-70b-versatile, mixtral-8x7b-32768",
			translate.ProviderCopilot:      "gpt-4o, gpt-5, claude-sonnet-4, gemini-2.5-pro",
			translate.ProviderOllama:       "llama3.2, qwen2.5, mistral",
			translate.ProviderCustomOpenAI: "gpt-4o, gpt-4o-mini (depends on your endpoint)",
		}

		examples := modelExamples[prov.ID]
		if examples == "" {
			examples = "check provider documentation"
		}

		return fmt.Errorf("--model is required for provider '%s'\n\n"+
			"Example models for %s:\n  %s\n\n"+
			"Usage: --provider %s --model MODEL_NAME",
			prov.ID, prov.Name, examples, prov.ID)
	}

	switch prov.ID {
	case translate.ProviderGoogle:
		if apiKey == "" {
			return fmt.Errorf("provider 'google' requires an API key\n\n" +
				"Option 1: Store an API key:\n" +
				"  tskit auth login --provider google\n\n" +
				"Option 2: Pass key directly:\n" +
				"  --api-key YOUR_KEY or export TSKIT_API_KEY=YOUR_KEY\n\n" +
				"Get an API key from: https://aistudio.google.com/apikey")
		}

	case translate.ProviderGroq:
		if apiKey == "" {
			return fmt.Errorf("provider 'groq' requires an API key\n\n" +
				"Option 1: Store your API key:\n" +
				"  tskit auth login --provider groq\n\n" +
				"Option 2: Pass key directly:\n" +
				"  --api-key YOUR_KEY or export TSKIT_API_KEY=YOUR_KEY\n\n" +
				"Get a free API key from: https://console.groq.com/keys")
		}

	case translate.ProviderCopilot:
		if copilot.LoadToken() == nil {
			return fmt.Errorf("provider 'copilot' requires GitHub Copilot authentication\n\n" +
				"Login with your GitHub account:\n" +
				"  tskit auth login --provider copilot\n\n" +
				"This uses GitHub Copilot (requires active Copilot subscription).")
		}

	case translate.ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return fmt.Errorf("provider 'custom-openai' requires an endpoint URL\n\n" +
				"Option 1: Configure via auth:\n" +
				"  tskit auth login --provider custom-openai\n\n" +
				"Option 2: Pass directly:\n" +
				"  --base-url https://api.example.com/v1")
		}

	case translate.ProviderOllama:
		client := &http.Client{Timeout: 2 * time.Second}
		ollamaURL := prov.BaseURL
		if ollamaURL == "" {
			ollamaURL = "http://localhost:11434"
		}
		resp, err := client.Get(ollamaURL + "/api/tags")
		if err != nil {
			return fmt.Errorf("provider 'ollama' requires Ollama server to be running\n\n" +
				"Start Ollama with: ollama serve\n" +
				"Install from: https://ollama.com\n" +
				"Alternative providers:\n" +
				"  --provider copilot         (GitHub Copilot)\n" +
				"  --provider google          (requires API key)")
		}
		resp.Body.Close()
	}

	return nil
}
