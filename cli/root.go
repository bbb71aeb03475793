package cli

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/tsubame"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tsubame",
		Short: "A small relational storage engine",
		Long:  "TsubameDB is a single-node relational storage engine with a SQL console.",
		RunE:  runRepl,
	}

	baseDir    = "tsubame-data"
	memKBytes  = 256
	logLevel   = "warn"
	configFile = ""
)

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&baseDir, "base-dir", baseDir, "`dir` holding table files and the catalog")
	fs.IntVar(&memKBytes, "mem-kb", memKBytes, "buffer cache size in kilobytes")
	fs.StringVar(&logLevel, "log-level", logLevel, "log level: debug, info, warn or error")
	fs.StringVar(&configFile, "config-file", configFile, "TOML `file` overriding the flags")
}

func Execute() error {
	return rootCmd.Execute()
}

type config struct {
	BaseDir    string `toml:"base_dir"`
	MemKBytes  int    `toml:"mem_kb"`
	LogLevel   string `toml:"log_level"`
	BTreeOrder int    `toml:"btree_order"`
}

func loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var c config
	if err := toml.Unmarshal(data, &c); err != nil {
		return err
	}
	if c.BaseDir != "" {
		baseDir = c.BaseDir
	}
	if c.MemKBytes > 0 {
		memKBytes = c.MemKBytes
	}
	if c.LogLevel != "" {
		logLevel = c.LogLevel
	}
	if c.BTreeOrder != 0 {
		if c.BTreeOrder < 3 {
			return errors.Wrapf(errors.ErrValue, "btree_order %d is below the minimum of 3", c.BTreeOrder)
		}
		common.BTreeOrder = c.BTreeOrder
	}
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		if err := loadConfig(configFile); err != nil {
			return err
		}
	}
	applyLogLevel(logLevel)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return err
	}
	db, err := tsubame.NewTsubameDB(baseDir, memKBytes)
	if err != nil {
		return err
	}
	defer db.Finalize()
	done := handleSignals(db)
	defer close(done)
	return Repl(db, os.Stdout)
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		common.SetLogLevel(common.DEBUGGING)
	case "info":
		common.SetLogLevel(common.INFO)
	case "error":
		common.SetLogLevel(common.ERROR)
	default:
		common.SetLogLevel(common.WARN)
	}
}
