package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Init wires environment variables, an optional .env file, the command's
// persistent flags and an optional YAML config file into viper. Flag names use
// dashes and map onto the underscore keys in keys.go.
func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if root != nil {
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
	setDefaults()
	cobra.OnInitialize(readConfigFile)
}

func setDefaults() {
	viper.SetDefault(KeyRegion, "us")
	viper.SetDefault(KeyTimeout, "30s")
	viper.SetDefault(KeyPageSize, 50)
	viper.SetDefault(KeyMaxPages, 20)
	viper.SetDefault(KeyListItemCap, 100)
	viper.SetDefault(KeyResponseTokenBudget, 8000)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyTransport, "stdio")
	viper.SetDefault(KeyHost, "0.0.0.0")
	viper.SetDefault(KeyPort, 8000)
	viper.SetDefault(KeyEndpointPath, "/mcp/jsonrpc")
}

// readConfigFile merges the file named by drata_config_file, if any. Values
// from the environment and flags keep precedence over the file.
func readConfigFile() {
	path := ConfigFile()
	if path == "" {
		return
	}
	viper.SetConfigFile(path)
	_ = viper.ReadInConfig()
}

func ConfigFile() string       { return viper.GetString(KeyConfigFile) }
func APIKey() string           { return strings.TrimSpace(viper.GetString(KeyAPIKey)) }
func Region() string           { return strings.ToLower(viper.GetString(KeyRegion)) }
func BaseURL() string          { return viper.GetString(KeyBaseURL) }
func Timeout() string          { return viper.GetString(KeyTimeout) }
func PageSize() int            { return viper.GetInt(KeyPageSize) }
func MaxPages() int            { return viper.GetInt(KeyMaxPages) }
func ListItemCap() int         { return viper.GetInt(KeyListItemCap) }
func ResponseTokenBudget() int { return viper.GetInt(KeyResponseTokenBudget) }
func LogLevel() string         { return viper.GetString(KeyLogLevel) }
func Transport() string        { return strings.ToLower(viper.GetString(KeyTransport)) }
func Host() string             { return viper.GetString(KeyHost) }
func Port() int                { return viper.GetInt(KeyPort) }
func EndpointPath() string     { return viper.GetString(KeyEndpointPath) }
