// Package app wires one invocation end to end: read inputs from the
// host platform, validate them, build the request, execute it with
// retries, interpret the response, and emit the named outputs.
package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/gaborage/counter-action/config"
	"github.com/gaborage/counter-action/counter"
	"github.com/gaborage/counter-action/host"
	"github.com/gaborage/counter-action/httpclient"
	"github.com/gaborage/counter-action/logger"
)

// App carries the collaborators for one invocation
type App struct {
	cfg       *config.Config
	log       logger.Logger
	client    httpclient.Client
	host      host.Host
	validator *counter.Validator
}

// New assembles an App from its collaborators
func New(cfg *config.Config, log logger.Logger, client httpclient.Client, h host.Host) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		client:    client,
		host:      h,
		validator: counter.NewValidator(),
	}
}

// Run performs one counter operation. Every failure is reported to the
// host before it is returned, and nothing panics across this boundary.
func (a *App) Run(ctx context.Context) error {
	log := a.log.WithFields(map[string]any{"invocation_id": uuid.NewString()})

	params, err := a.readParams()
	if err != nil {
		return a.fail(err)
	}

	log = log.WithFields(map[string]any{"operation": params.Operation.String()})

	if err := a.validator.Validate(params); err != nil {
		return a.fail(err)
	}

	spec, err := counter.BuildRequest(a.cfg.Service.Origin, params)
	if err != nil {
		return a.fail(err)
	}

	resp, err := a.client.Do(ctx, spec.Method, &httpclient.Request{
		URL:     spec.URL,
		Headers: spec.Headers,
	})
	if err != nil {
		return a.fail(err)
	}

	outputs, err := counter.Interpret(params.Operation, resp.StatusCode, resp.Body)
	if err != nil {
		return a.fail(err)
	}

	for _, out := range outputs {
		if out.Sensitive {
			a.host.MaskSecret(out.Value)
		}
		if err := a.host.SetOutput(out.Name, out.Value); err != nil {
			return a.fail(err)
		}
	}

	log.Info().
		Int("status", resp.StatusCode).
		Int("attempts", resp.Attempts).
		Int("outputs", len(outputs)).
		Msg("counter operation completed")

	return nil
}

// readParams collects the invocation parameters from the host platform,
// applying the documented defaults. The admin credential is masked the
// moment it is read, before any other use.
func (a *App) readParams() (*counter.Params, error) {
	op, err := counter.ParseOperation(a.host.Input("operation"))
	if err != nil {
		return nil, err
	}

	adminKey := a.host.Input("admin_key")
	if adminKey != "" {
		a.host.MaskSecret(adminKey)
	}

	return &counter.Params{
		Operation:   op,
		Namespace:   a.host.Input("namespace"),
		Key:         a.host.Input("key"),
		Initializer: a.host.Input("initializer"),
		Value:       a.host.Input("value"),
		AdminKey:    adminKey,
	}, nil
}

func (a *App) fail(err error) error {
	a.host.Errorf("%s", err.Error())
	a.log.Error().Err(err).Msg("counter operation failed")
	return err
}
