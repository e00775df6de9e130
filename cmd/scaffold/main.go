package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourorg/scaffold/internal/config"
	"github.com/yourorg/scaffold/internal/generator"
	"github.com/yourorg/scaffold/internal/odata"
	"github.com/yourorg/scaffold/internal/server"
	"github.com/yourorg/scaffold/internal/soap"
	"github.com/yourorg/scaffold/internal/store"
	"github.com/yourorg/scaffold/pkg/types"
)

const defaultConfigContent = `server:
  host: "127.0.0.1"
  port: 3000
  cors_allow_origin: "*"

output:
  dir: "./output"

generator:
  namespace: "App.Web"

log:
  level: "info"
`

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "scaffold",
		Short: "MVC scaffolding generator for OData samples",
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	root.AddCommand(newInitCmd())
	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newGenerateCmd(&cfgPath))
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newDeleteCmd())

	return root
}

func baseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".scaffold"), nil
}

func openStore() (*store.SQLiteStore, error) {
	dir, err := baseDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(filepath.Join(dir, "scaffold.db"))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize ~/.scaffold directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := baseDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgFile := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(cfgFile, []byte(defaultConfigContent), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", cfgFile)
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", cfgFile)
			} else {
				return err
			}

			dbPath := filepath.Join(dir, "scaffold.db")
			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database ready", dbPath)
			return nil
		},
	}
}

func newServeCmd(cfgPath *string) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger := newLogger(cfg.Log.Level)
			srv, err := server.New(cfg, st, logger)
			if err != nil {
				return err
			}
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			logger.Info("listening", "addr", addr)
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "server host")
	cmd.Flags().IntVar(&port, "port", 3000, "server port")
	return cmd
}

func newGenerateCmd(cfgPath *string) *cobra.Command {
	var samplePath, functionPath, page, entity, parent string
	var lines bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate fragments from a sample file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			renderer, err := generator.New(cfg.Generator.Namespace)
			if err != nil {
				return err
			}

			outDir := filepath.Join(cfg.Output.Dir, page)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			var fragments []types.Fragment
			switch {
			case functionPath != "":
				data, err := os.ReadFile(functionPath)
				if err != nil {
					return err
				}
				elements, err := soap.ParseFunctionXML(string(data))
				if err != nil {
					return err
				}
				params := soap.Build(elements)
				code := renderer.FunctionCode(params, page, "", soap.IsLineFunction(params))
				fragments = []types.Fragment{
					{Name: page + "Request.cs", Content: code.RequestModel},
					{Name: page + "Action.cs", Content: code.ControllerMethod},
					{Name: "_" + page + "Form.cshtml", Content: code.FormView},
				}
			case lines:
				model, err := parseSampleFile(samplePath)
				if err != nil {
					return err
				}
				code := renderer.LinesCode(model.Fields, model.Info, page, entity, parent)
				fragments = []types.Fragment{
					{Name: page + "LinesModel.cs", Content: code.Model},
					{Name: "_" + page + "Lines.cshtml", Content: code.PartialView},
					{Name: page + "LinesAction.cs", Content: code.ControllerMethod},
				}
			default:
				model, err := parseSampleFile(samplePath)
				if err != nil {
					return err
				}
				code := renderer.FullCode(model.Fields, model.Info, page, entity)
				fragments = []types.Fragment{
					{Name: page + "Model.cs", Content: code.Model},
					{Name: page + "Controller.cs", Content: code.Controller},
					{Name: page + ".cshtml", Content: code.MainView},
					{Name: "_" + page + "List.cshtml", Content: code.ListView},
					{Name: page + "Document.cshtml", Content: code.DocumentView},
				}
				meta, _ := json.MarshalIndent(summarizeMetadata(model.Info), "", "  ")
				fragments = append(fragments, types.Fragment{Name: "metadata.json", Content: string(meta) + "\n"})
			}

			for _, f := range fragments {
				path := filepath.Join(outDir, f.Name)
				if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&samplePath, "sample", "", "sample OData JSON file")
	cmd.Flags().StringVar(&functionPath, "function", "", "SOAP function XML file")
	cmd.Flags().StringVar(&page, "page", "", "page name")
	cmd.Flags().StringVar(&entity, "entity", "", "entity name")
	cmd.Flags().StringVar(&parent, "parent", "", "parent entity name (lines mode)")
	cmd.Flags().BoolVar(&lines, "lines", false, "generate detail-lines fragments")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func parseSampleFile(path string) (*odata.Model, error) {
	if path == "" {
		return nil, errors.New("--sample is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return odata.Parse(data)
}

func summarizeMetadata(info types.DocumentInfo) map[string]any {
	var pk any
	if info.PrimaryKey != nil {
		pk = info.PrimaryKey.Name
	}
	userFields := make([]string, 0, len(info.UserFilterFields))
	for _, f := range info.UserFilterFields {
		userFields = append(userFields, f.Name)
	}
	tableFields := make([]string, 0, len(info.DatatableFields))
	for _, f := range info.DatatableFields {
		tableFields = append(tableFields, f.Name)
	}
	return map[string]any{
		"primary_key":        pk,
		"user_filter_fields": userFields,
		"datatable_fields":   tableFields,
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all generation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			sessions, err := st.ListSessions()
			if err != nil {
				return err
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d fields\t%s\n", s.ID, s.Kind, s.PageName, s.FieldCount, s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show session fragments",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			sess, err := st.GetSession(session)
			if err != nil {
				return fmt.Errorf("session not found: %s", session)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s page=%s entity=%s\n", sess.ID, sess.Kind, sess.PageName, sess.EntityName)
			fragments, err := st.GetFragments(session)
			if err != nil {
				return err
			}
			for _, f := range fragments {
				fmt.Fprintf(cmd.OutOrStdout(), "\n--- %s ---\n%s\n", f.Name, f.Content)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session id")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete session",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.DeleteSession(session); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", session)
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session id")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
