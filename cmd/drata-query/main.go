package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/drata-compliance-mcp/internal/config"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
	"github.com/roivaz/drata-compliance-mcp/internal/mcp"
	"github.com/roivaz/drata-compliance-mcp/internal/mcp/tools"
)

func main() {
	root := &cobra.Command{
		Use:           "drata-query",
		Short:         "Run Drata compliance tools from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddClientFlags(root)

	var output string
	var rawArgs []string

	callCmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call a tool and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseArgs(rawArgs)
			if err != nil {
				return err
			}
			logger := logging.New(logging.NewLogr(config.LogLevel())).WithName("drata-query")
			dispatcher, _, err := mcp.NewDispatcher(logger)
			if err != nil {
				return err
			}
			result, err := dispatcher.Dispatch(cmd.Context(), args[0], toolArgs)
			if err != nil {
				var de *dispatch.Error
				if errors.As(err, &de) {
					_ = write(os.Stderr, de, output)
				}
				return err
			}
			return write(os.Stdout, result, output)
		},
	}
	callCmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "Tool argument as key=value, repeatable")
	callCmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")

	listCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, t := range tools.All(nil) {
				params := make([]string, 0, len(t.Params))
				for _, p := range t.Params {
					name := p.Name
					if p.Required {
						name += "*"
					}
					params = append(params, name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, strings.Join(params, ","), t.Title)
			}
			return w.Flush()
		},
	}

	root.AddCommand(callCmd, listCmd)
	config.Init(root)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("drata-query: %v", err)
	}
}

// parseArgs turns key=value pairs into raw tool arguments. Values stay
// strings; the dispatcher coerces them to the declared parameter types.
func parseArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", pair)
		}
		args[strings.TrimSpace(key)] = value
	}
	return args, nil
}

func write(w io.Writer, v any, format string) error {
	var out []byte
	var err error
	switch format {
	case "yaml":
		out, err = yaml.Marshal(v)
	case "json":
		out, err = json.MarshalIndent(v, "", "  ")
	default:
		return fmt.Errorf("unsupported output %q", format)
	}
	if err != nil {
		return err
	}
	if format == "json" {
		out = append(out, '\n')
	}
	_, err = w.Write(out)
	return err
}
