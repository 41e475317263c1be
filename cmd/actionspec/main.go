// Package main provides the actionspec CLI:
//
//	actionspec validate <file...>   (3-phase pipeline plus lint rules)
//	actionspec schema               (exports JSON Schema)
//	actionspec preview <file>       (renders the action as a client would)
//	actionspec inspect <file>       (interactive expression shell)
//	actionspec publish <file>       (pins a valid document)
//	actionspec serve                (HTTP validation service)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/actionspec/pkg/config"
	"github.com/ormasoftchile/actionspec/pkg/inspect"
	"github.com/ormasoftchile/actionspec/pkg/lint"
	"github.com/ormasoftchile/actionspec/pkg/logging"
	"github.com/ormasoftchile/actionspec/pkg/preview"
	"github.com/ormasoftchile/actionspec/pkg/publish"
	"github.com/ormasoftchile/actionspec/pkg/schema"
	"github.com/ormasoftchile/actionspec/pkg/server"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

var (
	version = "dev"
	commit  = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "actionspec",
	Short:        "Validate, preview and publish blockchain action documents",
	SilenceUsage: true,
}

// env bundles what every verb needs after reading the config.
type env struct {
	cfg       *config.Config
	log       *slog.Logger
	validator *validate.Validator
}

func setup() (*env, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logging.New(level)

	reg, err := schema.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	var opts []validate.Option
	if rules := cfg.LintRules(); len(rules) > 0 {
		l, err := lint.New(rules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, validate.WithChecks(l.Check()))
	}
	return &env{cfg: cfg, log: log, validator: validate.New(reg, opts...)}, nil
}

// --- validate ---

var (
	validateJSON  bool
	validateCross bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [action.yaml|action.json...]",
	Short: "Validate action documents (structural, semantic, domain and lint phases)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

type fileReport struct {
	File     string                      `json:"file"`
	Valid    bool                        `json:"valid"`
	Errors   []*validate.ValidationError `json:"errors,omitempty"`
	Warnings []*validate.ValidationError `json:"warnings,omitempty"`
	Mismatch []string                    `json:"conformance_mismatch,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	var conf *validate.Conformance
	if validateCross {
		conf, err = validate.NewConformance(e.validator.Engine().Registry())
		if err != nil {
			return fmt.Errorf("build conformance schema: %w", err)
		}
	}

	var reports []fileReport
	failed := 0
	for _, path := range args {
		doc, r := e.validator.ValidateFile(path)
		fr := fileReport{File: path, Valid: r.Valid(), Errors: r.Errors, Warnings: r.Warnings}
		if conf != nil && doc != nil {
			fr.Mismatch, err = crossCheck(conf, e.validator, doc)
			if err != nil {
				return err
			}
		}
		if !fr.Valid || len(fr.Mismatch) > 0 {
			failed++
		}
		e.log.Debug("validated", "file", path, "valid", fr.Valid, "warnings", len(fr.Warnings))
		reports = append(reports, fr)
		if !validateJSON {
			printReport(fr, r)
		}
	}

	if validateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}

// crossCheck compares the engine verdict with the exported-schema verdict.
func crossCheck(conf *validate.Conformance, v *validate.Validator, doc any) ([]string, error) {
	violations, err := conf.Check(doc)
	if err != nil {
		return nil, err
	}
	engineValid := v.ValidateAction(doc).Valid
	if engineValid == (len(violations) == 0) {
		return nil, nil
	}
	if engineValid {
		return append([]string{"exported schema rejects a document the engine accepts"}, violations...), nil
	}
	return []string{"exported schema accepts a document the engine rejects"}, nil
}

func printReport(fr fileReport, r *validate.Report) {
	for _, w := range fr.Warnings {
		fmt.Fprintf(os.Stderr, "  %s\n", preview.Warning(fmt.Sprintf("[%s] %s", w.Phase, w.Message)))
		if w.Path != "" {
			fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
		}
	}
	for _, m := range fr.Mismatch {
		fmt.Fprintf(os.Stderr, "  %s\n", preview.Warning("[conformance] "+m))
	}
	if !fr.Valid {
		fmt.Fprintf(os.Stderr, "%s\n\n", preview.Failed(fmt.Sprintf("%s: %d error(s)", fr.File, len(fr.Errors))))
		for i, e := range fr.Errors {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		return
	}
	if r.Action == nil {
		fmt.Println(preview.Passed(fr.File + " is valid"))
		return
	}
	title := preview.Truncate(r.Action.Title, preview.MaxLabelWidth)
	fmt.Println(preview.Passed(fmt.Sprintf("%s: %s is valid (%d links)", fr.File, title, len(r.Action.Links))))
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the action JSON Schema (Draft 2020-12)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := schema.DefaultRegistry()
		if err != nil {
			return err
		}
		data, err := schema.GenerateJSONSchema(reg)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- preview ---

var (
	previewWidth       int
	previewRaw         bool
	previewInteractive bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [action.yaml]",
	Short: "Render a valid action document for the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		_, r := e.validator.ValidateFile(args[0])
		if !r.Valid() {
			printReport(fileReport{File: args[0], Errors: r.Errors, Warnings: r.Warnings}, r)
			return fmt.Errorf("%s is not a valid action", args[0])
		}
		if r.Action == nil {
			return fmt.Errorf("%s cannot be previewed: %s", args[0], r.Warnings[len(r.Warnings)-1].Message)
		}
		md := preview.Markdown(r.Action)
		if previewInteractive {
			return preview.Page(r.Action.Title, md)
		}
		if previewRaw {
			fmt.Print(md)
			return nil
		}
		fmt.Println(preview.Render(md, previewWidth))
		return nil
	},
}

// --- inspect ---

var inspectCmd = &cobra.Command{
	Use:   "inspect [action.yaml]",
	Short: "Explore a document and try lint expressions interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		in, err := inspect.New(args[0], e.validator)
		if err != nil {
			return err
		}
		return in.Run()
	},
}

// --- publish ---

var publishDryRun bool

var publishCmd = &cobra.Command{
	Use:   "publish [action.yaml]",
	Short: "Validate and pin an action document, printing its content identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		doc, err := schema.LoadFile(args[0])
		if err != nil {
			return err
		}

		var pub publish.Publisher
		if publishDryRun {
			m := publish.NewMemory()
			m.Validator = e.validator
			pub = m
		} else {
			p := publish.NewPinata(e.cfg.Publish, e.log)
			p.Validator = e.validator
			pub = p
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cid, err := pub.Publish(ctx, doc)
		if err != nil {
			return err
		}
		fmt.Println(preview.Passed("published " + cid))
		return nil
	},
}

// --- serve ---

var (
	serveAddr      string
	servePublishes bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP validation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		addr := e.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		opts := server.Options{Validator: e.validator, Logger: e.log}
		if servePublishes {
			p := publish.NewPinata(e.cfg.Publish, e.log)
			p.Validator = e.validator
			opts.Publisher = p
		}
		srv, err := server.New(opts)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("actionspec %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (environment only when empty)")

	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print reports as JSON")
	validateCmd.Flags().BoolVar(&validateCross, "cross-check", false, "also validate with the exported JSON Schema and report disagreements")

	previewCmd.Flags().IntVar(&previewWidth, "width", 80, "word wrap width")
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "print markdown without styling")
	previewCmd.Flags().BoolVarP(&previewInteractive, "interactive", "i", false, "open a scrollable full-screen view")

	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "compute the content identifier without pinning")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&servePublishes, "publish", false, "enable POST /v1/publish backed by Pinata")

	rootCmd.AddCommand(validateCmd, schemaCmd, previewCmd, inspectCmd, publishCmd, serveCmd, versionCmd)
}
