// Command counter-action drives a remote counter service on behalf of a
// GitHub Actions workflow: one invocation performs one counter operation
// and publishes its results as action outputs.
package main

import (
	"context"
	"os"

	"github.com/gaborage/counter-action/app"
	"github.com/gaborage/counter-action/config"
	"github.com/gaborage/counter-action/host"
	"github.com/gaborage/counter-action/httpclient"
	"github.com/gaborage/counter-action/logger"
)

func main() {
	h := host.NewGitHub()

	cfg, err := config.Load()
	if err != nil {
		h.Errorf("configuration error: %s", err.Error())
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	client := httpclient.NewClientWithTimeout(log, cfg.Service.Timeout)

	if err := app.New(cfg, log, client, h).Run(context.Background()); err != nil {
		// Run already reported the failure through the host.
		os.Exit(1)
	}
}
