// dumploc — batch machine translation of SQL dumps and JSON locale files via DeepL.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dumploc/dumploc/config"
	"github.com/dumploc/dumploc/deepl"
	"github.com/dumploc/dumploc/jsonfile"
	"github.com/dumploc/dumploc/langmeta"
	"github.com/dumploc/dumploc/settings"
	"github.com/dumploc/dumploc/translate"
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
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	apiKey  string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dumploc",
		Short: "Translate SQL dumps and JSON locale files via DeepL",
		Long: `dumploc — batch machine translation of SQL dumps and JSON locale files.

Reads localized text from PostgreSQL INSERT dumps or JSON files, translates
it into each configured target locale through the DeepL API in bounded
batches with retry, and writes a new SQL/JSON artifact.

Commands:
  sql         Translate an INSERT ... VALUES dump into upsert SQL
  json        Translate a flat string-to-string JSON map
  objects     Translate fields of a JSON list of objects
  auth        Manage the DeepL API key
  version     Show version information

Configuration:
  A .dumploc.yaml in the project root sets the output table, row shape
  indices, target locales, and batching knobs. Without one, defaults
  matching the checklist-items dump layout apply.

API key lookup order:
  --api-key flag, DEEPL_API_KEY (a .env file is honored), credential store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&apiKey, "api-key", "", "DeepL API key (or DEEPL_API_KEY env var)")

	root.AddCommand(
		newSQLCmd(),
		newJSONCmd(),
		newObjectsCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dumploc version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

// signalContext returns a context cancelled on SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, aborting...")
		cancel()
	}()

	return ctx, cancel
}

// newDeepLClient resolves the API key and endpoint override and builds the
// translation client. Exits on a missing key: that is a configuration
// error and no input should be parsed.
func newDeepLClient() *deepl.Client {
	key, err := config.ResolveAPIKey(apiKey, rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	client := deepl.New(key)
	if ep := settings.EndpointOverride(); ep != "" {
		client.Endpoint = ep
	}
	return client
}

// pipelineOptions wires config batching knobs to the CLI logger.
func pipelineOptions(cfg *config.File, verbose bool) *translate.Options {
	opts := cfg.Options()
	opts.OnProgress = func(lang string, done, total int) {
		logInfo("  %s: %d/%d", lang, done, total)
	}
	if verbose {
		opts.OnLog = func(format string, args ...any) {
			logInfo(format, args...)
		}
	}
	return opts
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// sql (translate an INSERT dump into upsert SQL)
// ---------------------------------------------------------------------------

func newSQLCmd() *cobra.Command {
	var (
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "sql <dump.sql>",
		Short: "Translate an INSERT ... VALUES dump into upsert SQL",
		Long: `Translate an INSERT ... VALUES dump into upsert SQL.

Parses every VALUES section of the dump, projects each tuple onto a record
using the row shape indices from .dumploc.yaml (or the built-in defaults),
translates label, description, and placeholder into each target locale,
and writes one ON CONFLICT upsert statement with a row per record and
locale. The first configured locale is the base language and is written
through untranslated.

Rows that do not fit the shape (too short, non-integer id, empty label)
are skipped with a warning; a malformed tuple or unterminated string
aborts the run without writing any output.

Examples:
  dumploc sql checklist_items.sql
  dumploc sql dump.sql -o translated.sql
  dumploc sql dump.sql -o -          # write to stdout`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runSQL(args[0], output, verbose)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <input>.translated.sql, - for stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	return cmd
}

func runSQL(input, output string, verbose bool) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	client := newDeepLClient()

	data, err := os.ReadFile(input)
	if err != nil {
		logError("Reading %s: %v", input, err)
		os.Exit(1)
	}

	targets := cfg.LocaleTargets()
	logInfo("Translating %s into %d locales:", filepath.Base(input), len(targets))
	for _, t := range targets {
		logInfo("  %-6s %s", t.Locale, langmeta.Resolve(t.Locale).Name)
	}

	ctx, cancel := signalContext()
	defer cancel()

	sql, rows, err := translate.RunSQL(ctx, client, string(data), cfg.SQLJob(), pipelineOptions(cfg, verbose))
	if err != nil {
		if ctx.Err() != nil {
			logWarning("Translation interrupted, no output written")
			os.Exit(1)
		}
		logError("Translation failed: %v", err)
		os.Exit(1)
	}

	if sql == "" {
		logWarning("No translatable rows found in %s, nothing to write", input)
		return
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".translated.sql"
	}
	if err := writeOutput(output, []byte(sql)); err != nil {
		logError("Writing %s: %v", output, err)
		os.Exit(1)
	}

	logSuccess("Wrote %d rows (%s upserts) to %s", rows, cfg.Table, output)
}

// ---------------------------------------------------------------------------
// json (translate a flat string map)
// ---------------------------------------------------------------------------

func newJSONCmd() *cobra.Command {
	var (
		langs    string
		output   string
		combined bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "json <strings.json>",
		Short: "Translate a flat string-to-string JSON map",
		Long: `Translate a flat string-to-string JSON map.

By default writes one file per target language next to the input, named
with the language suffix (strings_en.json, strings_pt_br.json). With
--combined, writes a single JSON object keyed by language instead.

Target languages default to the configured locale targets (excluding the
first, which is the base language); pass --lang to override with DeepL
language codes.

Examples:
  dumploc json strings.json
  dumploc json strings.json --lang EN-US,DE
  dumploc json strings.json --combined -o all.json`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runJSON(args[0], langs, output, combined, verbose)
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Target languages, comma-separated DeepL codes (default: configured targets)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file for --combined (default: <input>.translated.json, - for stdout)")
	cmd.Flags().BoolVar(&combined, "combined", false, "Write a single multi-language JSON object")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	return cmd
}

// targetLangs resolves --lang, falling back to configured non-base targets.
func targetLangs(cfg *config.File, flagValue string) []string {
	if flagValue != "" {
		return splitList(flagValue)
	}
	var out []string
	for i, t := range cfg.Targets {
		if i == 0 {
			continue // Base language, already in the source file
		}
		out = append(out, t.Lang)
	}
	return out
}

func runJSON(input, langs, output string, combined, verbose bool) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	client := newDeepLClient()

	flat, err := jsonfile.ParseFlatFile(input)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	if flat.Len() == 0 {
		logWarning("%s has no strings, nothing to translate", input)
		return
	}

	targets := targetLangs(cfg, langs)
	if len(targets) == 0 {
		logError("No target languages: pass --lang or configure targets in %s", config.FileName)
		os.Exit(1)
	}
	logInfo("Translating %d strings into %s", flat.Len(), strings.Join(targets, ", "))

	ctx, cancel := signalContext()
	defer cancel()
	opts := pipelineOptions(cfg, verbose)

	if combined {
		out, err := jsonfile.TranslateFlatMulti(ctx, client, flat, targets, opts)
		if err != nil {
			translationFailed(ctx, err)
		}
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".translated.json"
		}
		if err := writeOutput(output, out); err != nil {
			logError("Writing %s: %v", output, err)
			os.Exit(1)
		}
		logSuccess("Wrote %d languages to %s", len(targets), output)
		return
	}

	base := strings.TrimSuffix(input, filepath.Ext(input))
	for _, lang := range targets {
		translated, err := jsonfile.TranslateFlat(ctx, client, flat, lang, opts)
		if err != nil {
			translationFailed(ctx, err)
		}
		out, err := translated.Render()
		if err != nil {
			logError("%v", err)
			os.Exit(1)
		}
		path := fmt.Sprintf("%s_%s.json", base, deepl.Suffix(lang))
		if err := writeOutput(path, out); err != nil {
			logError("Writing %s: %v", path, err)
			os.Exit(1)
		}
		logSuccess("%s -> %s", lang, path)
	}
}

// translationFailed reports a pipeline error and exits, distinguishing
// user interruption from provider failure.
func translationFailed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		logWarning("Translation interrupted, no output written")
		os.Exit(1)
	}
	logError("Translation failed: %v", err)
	os.Exit(1)
}

// ---------------------------------------------------------------------------
// objects (translate a JSON list of objects)
// ---------------------------------------------------------------------------

func newObjectsCmd() *cobra.Command {
	var (
		rootKey   string
		fields    string
		langs     string
		output    string
		overwrite bool
		verbose   bool

		sqlTable   string
		idField    string
		idColumn   string
		textColumn string
	)

	cmd := &cobra.Command{
		Use:   "objects <data.json>",
		Short: "Translate fields of a JSON list of objects",
		Long: `Translate fields of a JSON list of objects.

The input is either a JSON list of objects or an object holding one under
a root key (--root-key, auto-detected when omitted). Each named field is
translated into every target language and stored next to the original
with a language suffix (name_en, name_pt_br), or in place with
--overwrite.

With --sql-table the command instead emits ON CONFLICT upsert SQL for the
configured locale targets, one row per object and locale, using exactly
one --field as the text column.

Examples:
  dumploc objects subgroups.json --field subgroup_name
  dumploc objects data.json --root-key items --field name,note --lang EN-US
  dumploc objects subgroups.json --field subgroup_name \
      --sql-table subgroup_translations --id-field subgroup_id`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runObjects(objectsArgs{
				input: args[0], rootKey: rootKey, fields: fields,
				langs: langs, output: output, overwrite: overwrite,
				verbose:  verbose,
				sqlTable: sqlTable, idField: idField,
				idColumn: idColumn, textColumn: textColumn,
			})
		},
	}

	cmd.Flags().StringVar(&rootKey, "root-key", "", "Key holding the object list (default: auto-detect)")
	cmd.Flags().StringVar(&fields, "field", "", "Fields to translate, comma-separated (required)")
	cmd.Flags().StringVar(&langs, "lang", "", "Target languages, comma-separated DeepL codes (default: configured targets)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <input>.translated.json/.sql, - for stdout)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite fields in place instead of adding suffixed ones")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	cmd.Flags().StringVar(&sqlTable, "sql-table", "", "Emit upsert SQL for this table instead of JSON")
	cmd.Flags().StringVar(&idField, "id-field", "id", "Object field holding the integer id (with --sql-table)")
	cmd.Flags().StringVar(&idColumn, "id-column", "", "SQL id column (default: the id field name)")
	cmd.Flags().StringVar(&textColumn, "text-column", "", "SQL text column (default: the field name)")

	_ = cmd.MarkFlagRequired("field")

	return cmd
}

type objectsArgs struct {
	input, rootKey, fields, langs, output string
	overwrite, verbose                    bool
	sqlTable, idField                     string
	idColumn, textColumn                  string
}

func runObjects(a objectsArgs) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	client := newDeepLClient()

	f, err := jsonfile.LoadObjectsFile(a.input, a.rootKey)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	if key := f.RootKey(); key != "" && a.rootKey == "" {
		logInfo("Using object list under %q", key)
	}

	fields := splitList(a.fields)
	if len(fields) == 0 {
		logError("No fields to translate: pass --field")
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()
	opts := pipelineOptions(cfg, a.verbose)

	if a.sqlTable != "" {
		runObjectsSQL(ctx, client, cfg, f, fields, a, opts)
		return
	}

	targets := targetLangs(cfg, a.langs)
	if len(targets) == 0 {
		logError("No target languages: pass --lang or configure targets in %s", config.FileName)
		os.Exit(1)
	}
	logInfo("Translating %d objects into %s", len(f.Objects), strings.Join(targets, ", "))

	suffixFor := deepl.Suffix
	if a.overwrite {
		suffixFor = nil
	}
	if err := jsonfile.TranslateObjects(ctx, client, f, fields, targets, suffixFor, opts); err != nil {
		translationFailed(ctx, err)
	}

	out, err := f.Render()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	output := a.output
	if output == "" {
		output = strings.TrimSuffix(a.input, filepath.Ext(a.input)) + ".translated.json"
	}
	if err := writeOutput(output, out); err != nil {
		logError("Writing %s: %v", output, err)
		os.Exit(1)
	}
	logSuccess("Wrote %d objects to %s", len(f.Objects), output)
}

func runObjectsSQL(ctx context.Context, client *deepl.Client, cfg *config.File, f *jsonfile.ObjectsFile, fields []string, a objectsArgs, opts *translate.Options) {
	if len(fields) != 1 {
		logError("--sql-table needs exactly one --field, got %d", len(fields))
		os.Exit(1)
	}

	job := jsonfile.SQLJob{
		IDField:    a.idField,
		TextField:  fields[0],
		Table:      a.sqlTable,
		IDColumn:   a.idColumn,
		TextColumn: a.textColumn,
		Targets:    cfg.LocaleTargets(),
	}
	if job.IDColumn == "" {
		job.IDColumn = a.idField
	}
	if job.TextColumn == "" {
		job.TextColumn = fields[0]
	}

	sql, rows, err := jsonfile.GenerateSQL(ctx, client, f, job, opts)
	if err != nil {
		translationFailed(ctx, err)
	}
	if sql == "" {
		logWarning("No translatable objects in %s, nothing to write", a.input)
		return
	}

	output := a.output
	if output == "" {
		output = strings.TrimSuffix(a.input, filepath.Ext(a.input)) + ".translated.sql"
	}
	if err := writeOutput(output, []byte(sql)); err != nil {
		logError("Writing %s: %v", output, err)
		os.Exit(1)
	}
	logSuccess("Wrote %d rows (%s upserts) to %s", rows, a.sqlTable, output)
}

// ---------------------------------------------------------------------------
// auth (manage the DeepL API key)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the DeepL API key",
		Long: `Manage the DeepL API key stored in the credential store.

The key is kept in ` + "`$XDG_DATA_HOME/dumploc/auth.json`" + ` with owner-only
permissions and is used when neither --api-key nor DEEPL_API_KEY is set.

Examples:
  dumploc auth login       Store your DeepL API key
  dumploc auth status      Show the stored key (masked)
  dumploc auth logout      Remove the stored key`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store your DeepL API key",
		Long: `Store your DeepL API key in the credential store.

Get a key from https://www.deepl.com/pro-api. Free-tier keys use a
different endpoint; pass it once with --endpoint and it is remembered:

  dumploc auth login --endpoint https://api-free.deepl.com/v2/translate`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%sDeepL — API Key Setup%s\n", colorBlue, colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			fmt.Fprintln(os.Stderr)
			fmt.Fprintf(os.Stderr, "  Get your API key from: %shttps://www.deepl.com/pro-api%s\n\n", colorGreen, colorReset)

			existing := settings.APIKey()
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
				if existing == "" {
					logError("No API key provided")
					os.Exit(1)
				}
				if endpoint == "" {
					logInfo("Keeping existing key")
					return
				}
				key = existing
			}

			info := settings.Get(settings.ProviderDeepL)
			if info == nil {
				info = &settings.Info{}
			}
			info.Key = key
			if endpoint != "" {
				info.Endpoint = endpoint
			}
			if err := settings.Set(settings.ProviderDeepL, info); err != nil {
				logError("Failed to save API key: %v", err)
				os.Exit(1)
			}

			logSuccess("DeepL API key saved!")
			fmt.Fprintf(os.Stderr, "\n  You can now use: dumploc sql dump.sql\n\n")
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "DeepL endpoint override (e.g. the free-tier URL)")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Run: func(cmd *cobra.Command, args []string) {
			if settings.APIKey() == "" {
				logInfo("No API key stored")
				return
			}
			if err := settings.Remove(settings.ProviderDeepL); err != nil {
				logError("Failed to remove API key: %v", err)
				os.Exit(1)
			}
			logSuccess("DeepL API key removed")
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored API key (masked)",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%sStored credentials%s\n", colorBlue, colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			fmt.Fprintf(os.Stderr, "  File:      %s\n", settings.FilePath())

			key := settings.APIKey()
			if key == "" {
				fmt.Fprintf(os.Stderr, "  DeepL:     %snot configured%s\n\n", colorYellow, colorReset)
				fmt.Fprintf(os.Stderr, "  Run 'dumploc auth login' to store a key.\n\n")
				return
			}
			fmt.Fprintf(os.Stderr, "  DeepL:     %s%s%s\n", colorGreen, settings.MaskKey(key), colorReset)
			if ep := settings.EndpointOverride(); ep != "" {
				fmt.Fprintf(os.Stderr, "  Endpoint:  %s\n", ep)
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}
