package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/blueswarm/orchestrator/internal/config"
	"github.com/blueswarm/orchestrator/internal/connectors/idr"
	"github.com/blueswarm/orchestrator/internal/connectors/jira"
	"github.com/blueswarm/orchestrator/internal/connectors/zpa"
	"github.com/blueswarm/orchestrator/internal/fieldmap"
	"github.com/blueswarm/orchestrator/internal/logging"
	"github.com/blueswarm/orchestrator/internal/server"
)

func main() {
	configPath := flag.String("config", "orchestrator.toml", "path to orchestrator TOML config")
	initConfig := flag.Bool("init", false, "write a starter config to the -config path and exit")
	flag.Parse()

	logging.ConfigureRuntime()

	if *initConfig {
		if err := config.WriteTemplate(*configPath, false); err != nil {
			fmt.Fprintf(os.Stderr, "orchestratord: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote starter config to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orchestratord: %v\n", err)
		os.Exit(1)
	}

	fmap, err := fieldmap.Load(cfg.FieldmapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orchestratord: %v\n", err)
		os.Exit(1)
	}

	deps := server.Deps{Config: cfg, Fieldmap: fmap}
	if cfg.Jira.BaseURL != "" {
		deps.Jira = jira.NewClient(jira.Config{
			BaseURL:  cfg.Jira.BaseURL,
			Email:    cfg.Jira.Email,
			APIToken: cfg.Jira.APIToken,
		})
	}
	if cfg.ZPA.BaseURL != "" {
		deps.ZPA = zpa.NewClient(zpa.Config{
			BaseURL:      cfg.ZPA.BaseURL,
			ClientSecret: cfg.ZPA.ClientSecret,
			SegmentsPath: cfg.ZPA.SegmentsPath,
			PoliciesPath: cfg.ZPA.PoliciesPath,
		})
	}
	if cfg.IDR.BaseURL != "" {
		deps.IDR = idr.NewClient(idr.Config{
			BaseURL:      cfg.IDR.BaseURL,
			APIKey:       cfg.IDR.APIKey,
			NotablesPath: cfg.IDR.NotablesPath,
		})
	}

	if err := server.New(deps).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "orchestratord: %v\n", err)
		os.Exit(1)
	}
}
