package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"stateview/internal/config"
	"stateview/internal/logging"
	boltstore "stateview/internal/store/bolt"
	"stateview/pkg/settings"
	"stateview/pkg/state"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: stateview [flags] <command> [command flags] [args]

Commands:
  commit [-root PARENT] KEY=VALUE ...   commit settings, print the new root
  get    -root ROOT [-type T] KEY       print one setting
  list   -root ROOT [-type T] [-delimiter D] KEY
                                        print a list setting, one element per line
  dump   -root ROOT                     print every setting in the snapshot
  roots                                 print the commit log

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	dataDir := flag.String("data-dir", "", "data directory (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	cfg.Data.Dir = config.ExpandHome(cfg.Data.Dir)

	format := cfg.Log.Format
	if format == "" || format == "auto" {
		// Text for humans at a terminal, JSON for pipelines.
		format = "json"
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "text"
		}
	}
	logging.Init(cfg.Log.Level, format)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0700); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	db, err := boltstore.Open(filepath.Join(cfg.Data.Dir, "state.db"))
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	st := state.NewStore(db)
	factory := settings.NewStoreFactory(st)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "commit":
		err = runCommit(st, args)
	case "get":
		err = runGet(factory, args)
	case "list":
		err = runList(factory, args)
	case "dump":
		err = runDump(st, args)
	case "roots":
		err = runRoots(st, args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
