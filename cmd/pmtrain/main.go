package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/config"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/orchestrator"
	"github.com/riahtu/pmtrain/internal/pipeline"
	"github.com/riahtu/pmtrain/internal/spec"
	"github.com/riahtu/pmtrain/internal/storage"
	"github.com/riahtu/pmtrain/internal/trainers"
	"github.com/riahtu/pmtrain/internal/tui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pmtrain",
		Short: "Trainer registry and pipeline assembler",
		Long:  "pmtrain binds declarative trainer configurations to concrete training pipelines.",
		RunE:  runTUI,
	}

	rootCmd.AddCommand(newAssembleCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newDeleteCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is everything a command needs to work with sessions.
type env struct {
	cfg   *config.Config
	store *storage.Storage
	orch  *orchestrator.Orchestrator
}

func openEnv() (*env, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := cfg.Logger()
	slog.SetDefault(logger)
	assembler := pipeline.NewAssembler(trainers.Default(), logger)
	orch := orchestrator.New(store, assembler, mlctx.New(), cfg.WorkspacesDir(), logger)
	return &env{cfg: cfg, store: store, orch: orch}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	docs, err := spec.LoadAll(e.cfg.PipelineDirs())
	if err != nil {
		return fmt.Errorf("failed to load pipelines: %w", err)
	}

	app := tui.NewApp(e.orch, docs)
	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err = p.Run()
	return err
}

// findDocument resolves ref as a file path first, then as a pipeline name
// in the configured pipeline directories.
func findDocument(ref string, cfg *config.Config) (*models.Document, error) {
	if _, err := os.Stat(ref); err == nil {
		return spec.Parse(ref)
	}

	docs, err := spec.LoadAll(cfg.PipelineDirs())
	if err != nil {
		return nil, fmt.Errorf("failed to load pipelines: %w", err)
	}

	doc, ok := docs[ref]
	if !ok {
		return nil, fmt.Errorf("pipeline %q not found", ref)
	}
	return doc, nil
}

func newAssembleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <file|name>",
		Short: "Assemble a pipeline and record a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			doc, err := findDocument(args[0], e.cfg)
			if err != nil {
				return err
			}

			session, p, err := e.orch.StartSession(doc)
			if err != nil {
				if session != nil {
					fmt.Printf("Session #%d failed\n", session.ID)
				}
				printBindErrors(err)
				return fmt.Errorf("assembly failed: %w", err)
			}

			fmt.Printf("Session #%d: %s [%s]\n", session.ID, session.DocumentName, session.Status)
			printPipeline(p)
			return nil
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a pipeline document without recording a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := spec.Parse(args[0])
			if err != nil {
				return err
			}
			if err := spec.Validate(doc); err != nil {
				return err
			}

			assembler := pipeline.NewAssembler(trainers.Default(), slog.New(slog.DiscardHandler))
			p, err := assembler.AssembleDocument(mlctx.New(), doc)
			if err != nil {
				printBindErrors(err)
				return fmt.Errorf("%s is invalid", args[0])
			}

			fmt.Printf("%s: ok (%d stages)\n", doc.Name, p.Len())
			return nil
		},
	}
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file|name>",
		Short: "Assemble a pipeline and export it for training",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noExport, _ := cmd.Flags().GetBool("no-export")

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			doc, err := findDocument(args[0], e.cfg)
			if err != nil {
				return err
			}

			if noExport {
				session, p, err := e.orch.StartSession(doc)
				if err != nil {
					printBindErrors(err)
					return fmt.Errorf("assembly failed: %w", err)
				}
				fmt.Printf("Created session #%d\n", session.ID)
				printPipeline(p)
				fmt.Println("Skipping export (--no-export)")
				return nil
			}

			session, err := e.orch.Run(cmd.Context(), doc)
			if err != nil {
				printBindErrors(err)
				return fmt.Errorf("run failed: %w", err)
			}

			fmt.Printf("Session #%d completed with status: %s\n", session.ID, session.Status)
			fmt.Printf("Workspace: %s\n", session.WorkspacePath)
			return nil
		},
	}

	cmd.Flags().Bool("no-export", false, "Assemble and record the session but don't export")
	return cmd
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir...]",
		Short: "Assemble every pipeline in the given directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsFile, _ := cmd.Flags().GetString("metrics-file")

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			dirs := args
			if len(dirs) == 0 {
				dirs = e.cfg.PipelineDirs()
			}

			loaded, err := spec.LoadAll(dirs)
			if err != nil {
				return fmt.Errorf("failed to load pipelines: %w", err)
			}

			docs := make([]*models.Document, 0, len(loaded))
			for _, name := range sortedNames(loaded) {
				docs = append(docs, loaded[name])
			}

			results, err := e.orch.AssembleAll(cmd.Context(), docs)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Printf("FAIL %s\n", r.Document.Name)
					printBindErrors(r.Err)
					continue
				}
				fmt.Printf("ok   %s (%d stages)\n", r.Document.Name, r.Pipeline.Len())
			}

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d pipelines failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().String("metrics-file", "", "Write assembly metrics in Prometheus text format to this file")
	return cmd
}

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [family]",
		Short: "List registered trainers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("params")
			registry := trainers.Default()

			descriptors := registry.Descriptors()
			if len(args) == 1 {
				family := mlctx.Family(args[0])
				if !family.Valid() {
					return fmt.Errorf("unknown family %q", args[0])
				}
				descriptors = registry.Family(family)
			}

			var family mlctx.Family
			for _, d := range descriptors {
				if d.Family != family {
					family = d.Family
					fmt.Println(family)
				}
				line := "  " + d.Kind
				if len(d.Aliases) > 0 {
					line += " (" + strings.Join(d.Aliases, ", ") + ")"
				}
				fmt.Println(line)
				if !verbose {
					continue
				}
				for _, p := range d.Params {
					req := "required"
					if p.Optional {
						req = "optional"
					}
					fmt.Printf("      %-28s %-8s %s\n", p.Name, p.Type, req)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolP("params", "p", false, "Show each trainer's parameters")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show session status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session ID: %w", err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			session, err := e.orch.GetSession(sessionID)
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}

			fmt.Printf("Session #%d: %s\n", session.ID, session.DocumentName)
			fmt.Printf("ID: %s\n", session.UUID)
			fmt.Printf("Status: %s\n", session.Status)
			fmt.Printf("Created: %s\n", storage.FormatTimeAgo(session.CreatedAt))
			if session.SourcePath != "" {
				fmt.Printf("Source: %s\n", session.SourcePath)
			}
			if session.WorkspacePath != "" {
				fmt.Printf("Workspace: %s\n", session.WorkspacePath)
			}
			if session.Error != "" {
				fmt.Printf("Error: %s\n", session.Error)
			}

			stages, err := e.orch.GetStages(sessionID)
			if err != nil {
				return err
			}

			if len(stages) > 0 {
				fmt.Println("\nStages:")
				for _, stage := range stages {
					info := mlctx.StageInfo{Family: stage.Family, Algorithm: stage.Algorithm}
					fmt.Printf("  %d. %s [%s]\n", stage.StageIndex, stage.Kind, info)
				}
			}

			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			sessions, err := e.orch.ListSessions(20)
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			for _, session := range sessions {
				fmt.Printf("#%d %s [%s] %d stages, %s\n",
					session.ID, truncate(session.DocumentName, 40), session.Status,
					session.StageCount, storage.FormatTimeAgo(session.CreatedAt))
			}

			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session ID: %w", err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.orch.DeleteSession(sessionID); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}

			fmt.Printf("Deleted session #%d\n", sessionID)
			return nil
		},
	}
}

func printPipeline(p *pipeline.Pipeline) {
	for _, stage := range p.Stages() {
		info := stage.Estimator.Describe()
		fmt.Printf("  %d. %s -> %s\n", stage.Index, stage.Descriptor.Kind, info)
		for _, a := range info.Args {
			fmt.Printf("       %s = %v\n", a.Name, a.Value)
		}
	}
}

// printBindErrors lists every configuration problem in err, one per line.
func printBindErrors(err error) {
	var be *bind.Error
	if !errors.As(err, &be) {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return
	}
	bind.Each(err, func(e *bind.Error) {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	})
}

func sortedNames(docs map[string]*models.Document) []string {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
