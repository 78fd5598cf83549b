package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/bufkv/cmd/kvcli"
	"github.com/ValentinKolb/bufkv/cmd/util"
	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/ValentinKolb/bufkv/lib/driver/memdriver"
	"github.com/ValentinKolb/bufkv/lib/driver/sqlite"
	"github.com/ValentinKolb/bufkv/lib/kv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const Version = "0.1.0"

var (
	// RootCmd is the base command when bufkv is called without subcommands.
	RootCmd = &cobra.Command{
		Use:   "bufkv",
		Short: "buffered, cached key-value store",
		Long: fmt.Sprintf(`bufkv (v%s)

A buffered, cached key-value wrapper over a pluggable backend: bounded
read caching and periodic write-coalescing in front of an embedded
SQLite file (or an ephemeral in-memory database).`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the bufkv version",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("bufkv v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.PersistentPreRunE = openStore
	RootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if kvcli.Store != nil {
			return kvcli.Store.Close()
		}
		return nil
	}

	cobra.OnInitialize(util.InitConfig)

	key := "db"
	RootCmd.PersistentFlags().String(key, ":memory:", util.WrapString("Path to the SQLite database file, or \":memory:\" for an ephemeral in-memory database"))

	key = "cache"
	RootCmd.PersistentFlags().Int(key, -1, util.WrapString("Max resident clean entries before GC evicts the oldest half. -1 defers to the driver's default"))

	key = "write-interval"
	RootCmd.PersistentFlags().Duration(key, -1, util.WrapString("Time between periodic flushes, e.g. 100ms. 0 disables write buffering. A negative value defers to the driver's default"))

	key = "json"
	RootCmd.PersistentFlags().Bool(key, true, util.WrapString("Treat stored values as JSON"))

	RootCmd.AddCommand(kvcli.GetCmd)
	RootCmd.AddCommand(kvcli.SetCmd)
	RootCmd.AddCommand(kvcli.RemoveCmd)
	RootCmd.AddCommand(kvcli.SubGetCmd)
	RootCmd.AddCommand(kvcli.SubSetCmd)
	RootCmd.AddCommand(kvcli.FlushCmd)
	RootCmd.AddCommand(kvcli.ShellCmd)
	RootCmd.AddCommand(versionCmd)
}

// openStore builds the lib/kv.Store every subcommand shares, wiring the
// SQLite driver (or the in-memory driver for "--db :memory:" without disk
// persistence) according to the root flags. It is skipped for commands
// that do not need a store (version, help).
func openStore(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help":
		return nil
	}

	if err := util.BindCommandFlags(RootCmd); err != nil {
		return err
	}

	path := viper.GetString("db")

	var drv driver.Driver
	if path == ":memory:" {
		drv = memdriver.New()
	} else {
		drv = sqlite.Open(sqlite.Options{Path: path})
	}

	overrides := &kv.Overrides{}
	if c := viper.GetInt("cache"); c >= 0 {
		overrides.Cache = &c
	}
	if wi := viper.GetDuration("write-interval"); wi >= 0 {
		overrides.WriteInterval = &wi
	}
	j := viper.GetBool("json")
	overrides.JSON = &j

	store, err := kv.Open(drv, overrides)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	kvcli.Store = store
	return nil
}

// Execute runs RootCmd. It is called once by cmd/bufkv/main.go.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
