package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/oficina/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app is shared by all subcommands once the root has loaded the config.
type app struct {
	v        *viper.Viper
	cfg      config.Config
	cfgPath  string
	closeLog func()
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "oficina",
		Short:         "Stock control for the repair shop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			closeLog, err := setupLogger(cfg.Log.Path, cfg.Dev())
			if err != nil {
				return err
			}
			a.closeLog = closeLog
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgPath, "config", "c", "", "config file (yaml, toml or json)")
	flags.StringP("db", "d", "oficina.sqlite3", "SQLite database path")
	flags.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	_ = a.v.BindPFlag("db.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("log.path", flags.Lookup("log"))

	root.AddCommand(newServeCmd(a), newTokenCmd(a), newExportCmd(a))
	return root
}
