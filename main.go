package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/geoproc/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "YAML file with processing defaults")
	threads := flag.Int("threads", -1, "worker goroutines; overrides the config file when set")
	indent := flag.Bool("indent", false, "indent the JSON output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [script]\n\nReads the script from stdin when no file is given.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	defaults := config.Default()
	if *configPath != "" {
		d, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("geoproc: %v", err)
		}
		defaults = d
	}
	if *threads >= 0 {
		defaults.Threads = *threads
	}

	source, err := readScript(flag.Args())
	if err != nil {
		log.Fatalf("geoproc: %v", err)
	}

	result := NewApp(defaults).Evaluate(string(source))

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		log.Fatalf("geoproc: encode result: %v", err)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func readScript(args []string) ([]byte, error) {
	switch len(args) {
	case 0:
		return io.ReadAll(os.Stdin)
	case 1:
		return os.ReadFile(args[0])
	}
	return nil, fmt.Errorf("expected at most one script, got %d", len(args))
}
