package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/cellviz/internal/config"
)

var (
	configFile string
	preset     string
	dataDir    string
	logFile    string

	connectURL string
	demo       bool
	record     bool
	demoWidth  int
	demoHeight int
	targetFPS  int
	theme      string

	listenAddr string
	svgOut     string
	chartOut   string
)

func init() {
	// raylib needs the main OS thread; cobra runs commands on main.
	runtime.LockOSThread()
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "cellviz",
		Short:         "3D viewer for a live cellular automaton grid",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write diagnostics to this file")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "render the grid in the terminal",
		RunE:  runView,
	}
	addSourceFlags(viewCmd)
	viewCmd.Flags().StringVar(&theme, "theme", "", "panel theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "render the grid in a window",
		RunE:  runGUI,
	}
	addSourceFlags(guiCmd)

	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "serve the demo feed over a websocket",
		RunE:  runFeed,
	}
	feedCmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListen, "listen address")
	feedCmd.Flags().IntVar(&demoWidth, "width", 0, "grid width")
	feedCmd.Flags().IntVar(&demoHeight, "height", 0, "grid height")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "list recorded telemetry sessions",
		RunE:  listSessions,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot the fps samples of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the sparkline as SVG")
	plotCmd.Flags().StringVar(&chartOut, "out", "", "also write a full chart (.png, .svg or .pdf)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-10s radius=%.0f speed=%.2f hue_step=%.4f demo=%dx%d\n",
					name, cfg.Camera.Radius, cfg.Camera.Speed, cfg.Cells.HueStep, cfg.Demo.Width, cfg.Demo.Height)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(viewCmd, guiCmd, feedCmd, sessionsCmd, plotCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&connectURL, "connect", "", "websocket URL of the host")
	cmd.Flags().BoolVar(&demo, "demo", false, "drive the grid with the built-in demo feed")
	cmd.Flags().BoolVar(&record, "record", true, "record fps telemetry to the data directory")
	cmd.Flags().IntVar(&demoWidth, "width", 0, "demo grid width")
	cmd.Flags().IntVar(&demoHeight, "height", 0, "demo grid height")
	cmd.Flags().IntVar(&targetFPS, "fps", 0, "target frame rate")
}

// loadConfig layers preset, config file and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("connect") {
		cfg.Connect = connectURL
	}
	if flags.Changed("width") {
		cfg.Demo.Width = demoWidth
	}
	if flags.Changed("height") {
		cfg.Demo.Height = demoHeight
	}
	if flags.Changed("fps") {
		cfg.TargetFPS = targetFPS
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("listen") {
		cfg.Listen = listenAddr
	}
	if demo {
		cfg.Connect = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
