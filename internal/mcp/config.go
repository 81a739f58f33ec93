package mcp

import (
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/config"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
	"github.com/roivaz/drata-compliance-mcp/internal/drata"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
	"github.com/roivaz/drata-compliance-mcp/internal/mcp/tools"
	"github.com/roivaz/drata-compliance-mcp/internal/metrics"
	"github.com/roivaz/drata-compliance-mcp/internal/report"
)

type Config struct {
	Dispatcher   Dispatcher
	Options      []server.StreamableHTTPOption
	EndpointPath string
	// Metrics, when set, is served at /metrics next to the MCP endpoint.
	Metrics http.Handler
	Logger  logging.Logger
}

// DefaultConfig wires the Drata client, the report service and the tool table
// from the loaded configuration. It fails with drata.ErrMissingAPIKey before
// any network call when no API key is configured.
func DefaultConfig(log logging.Logger) (Config, error) {
	dispatcher, recorder, err := NewDispatcher(log)
	if err != nil {
		return Config{}, err
	}
	endpoint := config.EndpointPath()
	return Config{
		Dispatcher:   dispatcher,
		EndpointPath: endpoint,
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath(endpoint),
			server.WithStateLess(true),
		},
		Metrics: recorder.Handler(),
		Logger:  log,
	}, nil
}

// NewDispatcher builds the dispatcher shared by the server and the CLI.
func NewDispatcher(log logging.Logger) (*dispatch.Dispatcher, *metrics.Recorder, error) {
	drataCfg, err := drata.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	recorder := metrics.NewRecorder(true)
	drataCfg.Logger = log
	drataCfg.Observer = recorder

	client, err := drata.NewClient(drataCfg)
	if err != nil {
		return nil, nil, err
	}
	svc := compliance.NewService(client, report.Limits{
		MaxItems:    config.ListItemCap(),
		TokenBudget: config.ResponseTokenBudget(),
	}, log)

	registry, err := tools.NewRegistry(svc)
	if err != nil {
		return nil, nil, fmt.Errorf("register tools: %w", err)
	}
	log.Info("drata client ready", "base_url", client.BaseURL(), "tools", len(registry.Tools()))
	return dispatch.NewDispatcher(registry, log, dispatch.WithObserver(recorder)), recorder, nil
}
