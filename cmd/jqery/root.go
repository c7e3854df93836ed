package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jqery/internal/app"
	"jqery/internal/config"
	llmmiddleware "jqery/internal/llm/middleware"
	"jqery/internal/logger"
	"jqery/internal/pipeline"
	"jqery/internal/util/jsonutil"
)

type rootOptions struct {
	file       string
	text       string
	intent     string
	configPath string
	provider   string
	model      string
	maxArray   int
	printQuery bool
	showPrompt bool
	verbose    bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "jqery --intent \"...\" [--file data.json | --text '{...}']",
		Short: "Ask questions about JSON in plain language",
		Long: `jqery turns a natural-language request into a jq expression with an LLM
and runs it against your JSON.

The document comes from --file, --text, or standard input, in that order.
Arrays are shortened in the copy sent to the model (see --max-array); the
query always runs against the full document.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runQuery(cmd, opts, stdin, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "jqery: %v\n", err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "path to a JSON file")
	f.StringVarP(&opts.text, "text", "t", "", "JSON text")
	f.StringVarP(&opts.intent, "intent", "i", "", "what you want out of the JSON")
	f.StringVar(&opts.configPath, "config", "", "YAML config file (default $JQERY_CONFIG)")
	f.StringVar(&opts.provider, "provider", "", "LLM provider: anthropic, gemini, openai, groq, fake")
	f.StringVar(&opts.model, "model", "", "model id for the provider")
	f.IntVar(&opts.maxArray, "max-array", 0, "array length kept in the prompt copy; 0 sends the document whole")
	f.BoolVar(&opts.printQuery, "print-query", false, "print the generated jq expression to stderr")
	f.BoolVar(&opts.showPrompt, "show-prompt", false, "print the prompt sent to the model to stderr")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	_ = cmd.MarkFlagRequired("intent")
	return cmd
}

func runQuery(cmd *cobra.Command, opts *rootOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return err
	}
	cfg.SetProvider(opts.provider)
	if opts.model != "" {
		cfg.LLM.Model = opts.model
	}
	if cmd.Flags().Changed("max-array") {
		cfg.Synth.MaxArrayLength = opts.maxArray
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewNop()
	if opts.verbose {
		if log, err = logger.New(cfg.LogMode); err != nil {
			return err
		}
	}
	defer log.Sync()

	req, err := buildRequest(opts, stdin)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	core, err := app.NewCore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer core.Close()

	if opts.showPrompt {
		ctx = llmmiddleware.WithPromptHook(ctx, llmmiddleware.HookFuncs{
			OnBefore: func(_ context.Context, system, user string) {
				fmt.Fprintf(stderr, "--- system ---\n%s\n--- user ---\n%s\n--------------\n", system, user)
			},
		})
	}

	out := core.Pipeline.Run(ctx, req)
	if opts.printQuery && out.Query != "" {
		fmt.Fprintf(stderr, "query: %s\n", out.Query)
	}
	if !out.OK() {
		return out.Err
	}
	b, err := jsonutil.MarshalNoEscapeIndent(out.Result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", b)
	return err
}

func buildRequest(opts *rootOptions, stdin io.Reader) (pipeline.Request, error) {
	req := pipeline.Request{Text: opts.text, Intent: opts.intent}
	if opts.file != "" {
		b, err := os.ReadFile(opts.file)
		if err != nil {
			return req, fmt.Errorf("read %s: %w", opts.file, err)
		}
		req.File = b
	}
	if len(req.File) == 0 && strings.TrimSpace(req.Text) == "" && !isTerminal(stdin) {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return req, fmt.Errorf("read stdin: %w", err)
		}
		req.Text = string(b)
	}
	return req, nil
}

func isTerminal(r io.Reader) bool {
	if r == nil {
		return true
	}
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice != 0
}
