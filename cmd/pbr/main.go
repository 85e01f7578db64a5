// Command pbr sends a single page browse event with the configured
// credentials. It is meant for checking a site's tracking setup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"sitetrack/internal/engine/tracking"
	"sitetrack/internal/pkg/logger"
	"sitetrack/internal/platform/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	token := flag.String("token", "", "Tracking cookie value (liana_t)")
	pvUID := flag.String("pv", "", "Optional pv_uid (liana_pv)")
	pageURL := flag.String("url", "", "Page URL to report")
	dryRun := flag.Bool("dry-run", false, "Print the signed request instead of sending it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	if *pageURL == "" {
		*pageURL = cfg.Site.HomeURL
	}

	trackingCfg := cfg.Tracking.Submitter()
	submitter := tracking.NewSubmitter(trackingCfg)
	visitor := tracking.Visitor{Token: *token, PVUID: *pvUID}

	if *dryRun {
		if err := trackingCfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("cannot sign request")
		}
		req, err := submitter.NewSignedRequest(visitor.Sanitized(), *pageURL)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot sign request")
		}
		fmt.Printf("%s %s\n", req.Method, req.URL)
		fmt.Printf("Authorization: %s\nDate: %s\nContent-md5: %s\nContent-Type: %s\n\n%s\n",
			req.Authorization, req.Date, req.ContentMD5, req.ContentType, req.Body)
		return
	}

	result := submitter.SubmitPageBrowse(context.Background(), visitor, *pageURL)
	fmt.Println(result)
	if !result.OK() {
		os.Exit(1)
	}
}
