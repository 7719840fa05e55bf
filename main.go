package main

import (
	"fmt"
	"os"
	"wagerd/internal/di"
	"wagerd/internal/structures"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	flags := &structures.CliFlags{}
	pflag.StringVarP(&flags.ConfigPath, "config", "c", "config.yml", "path to the YAML config file")
	pflag.BoolVarP(&flags.DebugMode, "debug", "d", false, "mirror logs to stdout")
	pflag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "wagerd: %s\n", err)
		os.Exit(1)
	}
}
