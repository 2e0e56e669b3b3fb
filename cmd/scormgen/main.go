package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/akozlov/scormgen/internal/config"
	"github.com/akozlov/scormgen/internal/course"
	"github.com/akozlov/scormgen/internal/generate"
	"github.com/akozlov/scormgen/internal/llm"
	"github.com/akozlov/scormgen/internal/refdoc"
	"github.com/akozlov/scormgen/internal/scorm"
)

func main() {
	app := &cli.Command{
		Name:  "scormgen",
		Usage: "Generate SCORM 1.2 course packages with an LLM",
		Commands: []*cli.Command{
			generateCmd(),
			buildCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a course from a topic and package it",
		ArgsUsage: "<topic>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Value: "en", Usage: "Course language (en, ru)"},
			&cli.IntFlag{Name: "modules", Usage: "Number of modules"},
			&cli.IntFlag{Name: "sections", Usage: "Sections per module"},
			&cli.IntFlag{Name: "units", Usage: "Units per section"},
			&cli.IntFlag{Name: "screens", Usage: "Theory screens per unit"},
			&cli.IntFlag{Name: "questions", Usage: "Knowledge-check questions per unit"},
			&cli.IntFlag{Name: "final-test", Value: -1, Usage: "Final test question count (0 disables)"},
			&cli.StringFlag{Name: "detail", Usage: "Detail level: brief, normal, detailed, expert"},
			&cli.StringFlag{Name: "reference", Usage: "Reference document (txt, md, html, pdf, docx)"},
			&cli.StringFlag{Name: "prompt", Usage: "Extra generation instructions"},
			&cli.StringFlag{Name: "system-prompt-file", Usage: "File overriding the system prompt"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output zip path"},
			&cli.BoolFlag{Name: "no-cache", Usage: "Ignore the generation cache"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			topic := cmd.Args().First()
			if topic == "" {
				return fmt.Errorf("topic argument is required")
			}

			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := newLogger(cmd.Bool("verbose"))

			p := generate.Params{
				Topic:              topic,
				Language:           cmd.String("lang"),
				Modules:            int(cmd.Int("modules")),
				SectionsPerModule:  int(cmd.Int("sections")),
				UnitsPerSection:    int(cmd.Int("units")),
				ScreensPerUnit:     int(cmd.Int("screens")),
				QuestionsPerUnit:   int(cmd.Int("questions")),
				FinalTestQuestions: int(cmd.Int("final-test")),
				DetailLevel:        cmd.String("detail"),
				ExtraInstructions:  cmd.String("prompt"),
				Temperature:        cfg.Temperature,
				MaxTokens:          cfg.MaxTokens,
			}
			if p.Modules <= 0 {
				p.Modules = cfg.DefaultModules
			}
			if p.SectionsPerModule <= 0 {
				p.SectionsPerModule = cfg.SectionsPerModule
			}
			if p.UnitsPerSection <= 0 {
				p.UnitsPerSection = cfg.UnitsPerSection
			}
			if p.ScreensPerUnit <= 0 {
				p.ScreensPerUnit = cfg.ScreensPerUnit
			}
			if p.QuestionsPerUnit <= 0 {
				p.QuestionsPerUnit = cfg.QuestionsPerUnit
			}
			if p.FinalTestQuestions < 0 {
				p.FinalTestQuestions = cfg.FinalTestQuestions
			}
			settings := cfg.Settings()
			p.Settings = &settings

			if path := cmd.String("system-prompt-file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read system prompt: %w", err)
				}
				p.SystemPrompt = string(data)
			}
			if path := cmd.String("reference"); path != "" {
				text, err := loadReference(path)
				if err != nil {
					return err
				}
				p.ReferenceText = text
				log.Info("reference document loaded", "path", path, "tokens", refdoc.EstimateTokens(text))
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
			orch := generate.NewOrchestrator(client, log, func(pct int, stage string) {
				log.Info("progress", "stage", stage, "pct", pct)
			})

			var doc *course.Document
			var err error
			if cmd.Bool("no-cache") {
				doc, err = orch.Run(ctx, p)
			} else {
				doc, err = orch.RunCached(ctx, p, cfg.CacheDir)
			}
			if err != nil {
				return err
			}

			builder, err := scorm.NewBuilder(log)
			if err != nil {
				return err
			}
			path, err := builder.Build(doc, cfg.OutputDir, cmd.String("output"))
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Package an authored course document (JSON or YAML)",
		ArgsUsage: "<course-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output zip path"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("course file argument is required")
			}

			cfg := config.Load()
			log := newLogger(cmd.Bool("verbose"))

			doc, err := course.Load(path)
			if err != nil {
				return err
			}

			builder, err := scorm.NewBuilder(log)
			if err != nil {
				return err
			}
			out, err := builder.Build(doc, cfg.OutputDir, cmd.String("output"))
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

// loadReference extracts and trims reference text for prompt use.
func loadReference(path string) (string, error) {
	extractor, err := refdoc.ForFile(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open reference: %w", err)
	}
	defer f.Close()

	doc, err := extractor.Extract(f, path)
	if err != nil {
		return "", fmt.Errorf("extract reference: %w", err)
	}
	return refdoc.Truncate(doc.Text, 6000), nil
}
