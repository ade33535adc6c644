package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"iqamahs/core-go/internal/canvas"
	"iqamahs/core-go/internal/config"
	"iqamahs/core-go/internal/directory"
	"iqamahs/core-go/internal/httpapi"
	"iqamahs/core-go/internal/logging"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/metrics"
	"iqamahs/core-go/internal/tui"
)

const defaultInspectAddr = "127.0.0.1:8081"

type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg config.Config
}

func newApp() *app { return &app{} }

func (a *app) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iqamahs",
		Short: "Browse Houston-area masjids and their iqamah times",
		Long: `iqamahs is a terminal directory of masjids in the greater Houston area.

It shows a searchable list next to a map with one marker per masjid. Selecting
a masjid centers the map on it and shows its daily iqamah and Jumu'ah times.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (YAML, default $IQAMAHS_CONFIG)")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before config")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(a.browseCommand(), a.listCommand(), a.serveCommand())
	return cmd
}

// setup loads the dotenv file, then the config. Flags win over both.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	path := a.configPath
	if path == "" {
		path = os.Getenv("IQAMAHS_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	return nil
}

func (a *app) dataset() ([]masjid.Masjid, error) {
	all, err := masjid.Load(a.cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return all, nil
}

func (a *app) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive map and list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, closeLog, err := logging.Open(a.cfg.LogLevel, a.cfg.LogFile)
			if err != nil {
				return err
			}
			defer closeLog()

			all, err := a.dataset()
			if err != nil {
				return err
			}

			notifier := tui.NewNotifier()
			host := canvas.NewHost(notifier.Notify)
			pane := canvas.NewPane(0, 0)
			var m *metrics.Metrics
			if a.cfg.InspectAddr != "" {
				m = metrics.New()
			}
			opts := a.cfg.MapOptions()
			opts.Metrics = m
			browser := directory.NewBrowser(logger, directory.NewState(all), host.Factory, pane, opts)

			ctx := cmd.Context()
			if a.cfg.InspectAddr != "" {
				h := httpapi.NewHandler(logger, browser, host, m)
				// Quitting the TUI stops the server too.
				stop := startHTTP(ctx, logger, a.cfg.InspectAddr, h.Router())
				defer stop()
			}

			logger.Info().Int("masjids", len(all)).Msg("browser starting")
			return tui.Run(ctx, browser, host, pane, notifier)
		},
	}
}

func (a *app) serveCommand() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the browser headless and expose the inspection API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.NewLogger(a.cfg.LogLevel)

			all, err := a.dataset()
			if err != nil {
				return err
			}

			m := metrics.New()
			host := canvas.NewHost(nil)
			pane := canvas.NewPane(width, height)
			opts := a.cfg.MapOptions()
			opts.Metrics = m
			browser := directory.NewBrowser(logger, directory.NewState(all), host.Factory, pane, opts)
			browser.Start()
			defer browser.Close()

			addr := a.cfg.InspectAddr
			if addr == "" {
				addr = defaultInspectAddr
			}
			h := httpapi.NewHandler(logger, browser, host, m)
			return serveHTTP(cmd.Context(), logger, addr, h.Router())
		},
	}
	cmd.Flags().IntVar(&width, "width", 100, "map width in cells")
	cmd.Flags().IntVar(&height, "height", 30, "map height in cells")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var query, format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print masjids matching a query",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(a.cfg.LogLevel, os.Stderr)
			all, err := a.dataset()
			if err != nil {
				return err
			}
			matches := masjid.Filter(all, query)
			logger.Debug().Str("query", query).Int("matches", len(matches)).Msg("filtered masjids")
			return writeMasjids(cmd.OutOrStdout(), matches, format)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "case-insensitive match on name or address")
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table, json, yaml")
	return cmd
}

func writeMasjids(w io.Writer, list []masjid.Masjid, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "Name", "Address", "Fajr", "Duhr", "Asr", "Maghrib", "Isha", "Jumu'ah")
		for _, m := range list {
			p := m.PrayerTimes
			t.Row(fmt.Sprint(m.ID), m.Name, m.Address, p.Fajr, p.Duhr, p.Asr, p.Maghrib, p.Isha, strings.Join(m.JumuahTimes, ", "))
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
