package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/recipebox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   platform PostgreSQL DSN
//	-m bool     run platform migrations on start
//	-s string   storage driver
//	-b string   image bucket
//	-l string   local cache database path
//	-v string   log level
//	-f string   log format
//
// os.Args is filtered with flagx.FilterArgs so -c/-config does not trip
// the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-s", "-b", "-l", "-v", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "platform database DSN")
	fs.BoolVar(&cfg.MigrateOnStart, "m", cfg.MigrateOnStart, "apply platform migrations on start")
	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "image storage driver (none|s3|cloudinary|http)")
	fs.StringVar(&cfg.ImageBucket, "b", cfg.ImageBucket, "image bucket")
	fs.StringVar(&cfg.LocalDBPath, "l", cfg.LocalDBPath, "local cache database path")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text|json)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
