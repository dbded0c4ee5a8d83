// Command server runs the procurement back-office HTTP API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/simp-lee/procurebase/internal/app"
	"github.com/simp-lee/procurebase/internal/config"
)

func main() {
	defaultPath := "configs/config.yaml"
	if p := os.Getenv("PROCUREBASE_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "path to configuration file (env PROCUREBASE_CONFIG)")
	check := flag.Bool("check", false, "validate the configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if *check {
		fmt.Printf("%s: ok (mode=%s driver=%s listen=%s:%d)\n",
			*configPath, cfg.Server.Mode, cfg.Database.Driver, cfg.Server.Host, cfg.Server.Port)
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("failed to create procurebase server: ", err)
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
