// Command mprctl loads, inspects and mounts MPR files from the shell.
//
// Grounded on saferwall-pe's cmd/pedumper.go (cobra root command, persistent
// flags, one subcommand per concern) adapted from a single-binary PE dumper
// to MPR's load/inspect/stats/mount surface.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/ambrydata/mpr/config"
	"github.com/ambrydata/mpr/orchestrator"
	"github.com/ambrydata/mpr/rowstore"
	"github.com/ambrydata/mpr/source"
	"github.com/ambrydata/mpr/sqladapter"
)

var configPath string

func main() {
	defer glog.Flush()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mprctl",
		Short: "mprctl loads, inspects and mounts MPR files",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an mpr.toml config file")
	root.AddCommand(loadCmd(), inspectCmd(), statsCmd(), mountCmd())
	return root
}

func loadConfig() config.Config {
	if configPath == "" {
		return config.Default()
	}
	c, err := config.Load(configPath)
	if err != nil {
		glog.Warningf("mprctl: %v, falling back to defaults", err)
		return config.Default()
	}
	return c
}

func loadCmd() *cobra.Command {
	var csvPath string
	var skipRows, skipTypes, skipStats bool

	cmd := &cobra.Command{
		Use:   "load [flags] <out.mpr>",
		Short: "Load a CSV file into a new MPR file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			rows, headers, err := readCSV(csvPath)
			if err != nil {
				return err
			}
			src := source.NewSliceSource(rows, headers)

			cfg := loadConfig()
			opts := orchestrator.DefaultOptions()
			opts.IntuitRows = !skipRows
			opts.IntuitType = !skipTypes
			opts.RunStats = !skipStats
			opts.StatsOptions = cfg.StatsOptions()
			opts.Progress = func(n int) { glog.Infof("mprctl: loaded %d rows", n) }

			return orchestrator.Load(out, src, opts)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "source CSV file")
	cmd.Flags().BoolVar(&skipRows, "no-row-intuit", false, "skip the row intuiter step")
	cmd.Flags().BoolVar(&skipTypes, "no-type-intuit", false, "skip the type intuiter step")
	cmd.Flags().BoolVar(&skipStats, "no-stats", false, "skip the stats engine step")
	cmd.MarkFlagRequired("csv")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.mpr>",
		Short: "Print an MPR file's header, schema and row spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rowstore.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			info := r.Info()
			fmt.Printf("rows=%d cols=%d data=[%d,%d] finalized=%v\n",
				info.NRows, info.NCols, info.DataStartRow, info.DataEndRow, info.Finalized)
			for _, c := range r.Schema().Columns {
				fmt.Printf("  %2d %-20s %-10s has_codes=%v\n", c.Pos, c.Name, c.ResolvedType, c.HasCodes)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.mpr>",
		Short: "Print per-column summary statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rowstore.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			for _, c := range r.Schema().Columns {
				fmt.Printf("%s: n=%d nuniques=%d mean=%.4g std=%.4g p50=%.4g\n",
					c.Name, c.StatCount, c.NUniques, c.Mean, c.Std, c.P50)
			}
			return nil
		},
	}
}

func mountCmd() *cobra.Command {
	var schemaName, tableName string
	cmd := &cobra.Command{
		Use:   "mount <file.mpr>",
		Short: "Print the DDL to expose an MPR file as a foreign table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rowstore.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			fmt.Println(sqladapter.RemoteDDL(schemaName, tableName, args[0], r.Schema().Columns))
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaName, "schema", "mpr_foreign", "foreign schema name")
	cmd.Flags().StringVar(&tableName, "table", "mpr", "foreign table name")
	return cmd
}
