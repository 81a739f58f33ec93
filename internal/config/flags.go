package config

import "github.com/spf13/cobra"

// AddClientFlags declares the Drata client and response shaping flags shared
// by the binaries. Call it before Init so the flags get bound.
func AddClientFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("drata-config-file", "", "Optional YAML config file")
	flags.String("drata-api-key", "", "Drata API key (prefer the DRATA_API_KEY environment variable)")
	flags.String("drata-region", "us", "Drata region: us, eu or apac")
	flags.String("drata-base-url", "", "Drata API base URL, overrides the region")
	flags.String("drata-timeout", "30s", "Upstream request timeout")
	flags.Int("drata-page-size", 50, "Records per upstream request")
	flags.Int("drata-max-pages", 20, "Maximum pages walked per listing")
	flags.Int("list-item-cap", 100, "Maximum items per tool response")
	flags.Int("response-token-budget", 8000, "Approximate token budget per tool response, 0 disables")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
}
