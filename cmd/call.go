package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/app"
	"falcon-mcp/internal/credentials"
	"falcon-mcp/internal/formatting"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	callOutput   string
	callTenantID string
	callBaseURL  string
	callQuiet    bool
)

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool> [params-json|-]",
		Short: "Invoke one tool in-process",
		Long: `Runs one tool through the same pipeline the servers use and prints the
result. Parameters are a JSON object given inline or read from stdin with "-".

Examples:
  falcon-mcp call query_hosts '{"filter":"platform_name:'\''Windows'\''","limit":10}'
  echo '{"device_ids":["abc"]}' | falcon-mcp call get_host_details -

The API key comes from the environment. The exit code is 2 for credential
failures and 3 for upstream failures.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCall,
	}
	cmd.Flags().StringVarP(&callOutput, "output", "o", "json", "Output format: table, console, json or yaml")
	cmd.Flags().StringVar(&callTenantID, "tenant-id", "", "Child CID to act on")
	cmd.Flags().StringVar(&callBaseURL, "base-url", "", "Falcon API base URL")
	cmd.Flags().BoolVarP(&callQuiet, "quiet", "q", false, "Suppress the progress spinner")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(callOutput)
	if err != nil {
		return err
	}

	params, err := readParams(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}

	cfg := newAppConfig(cmd)
	cfg.Lookup = withBaseURL(cfg.Lookup, callBaseURL)
	core, _, err := app.NewCLICore(cfg)
	if err != nil {
		return err
	}
	defer core.Client.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var s *spinner.Spinner
	if !callQuiet {
		s = newSpinner(cmd.ErrOrStderr(), " Calling "+args[0]+"...")
	}
	if s != nil {
		s.Start()
	}

	result := core.Pipeline.Execute(ctx, api.InvocationRequest{
		Tool:      args[0],
		Params:    params,
		Hints:     api.CredentialHints{TenantID: callTenantID},
		Transport: api.TransportCLI,
		RequestID: uuid.NewString(),
	}, api.CredentialHints{})

	if s != nil {
		s.Stop()
	}

	f := formatting.NewFormatter(formatting.Options{Format: format, Output: cmd.OutOrStdout()})
	if err := f.FormatResult(result); err != nil {
		return err
	}
	if result.Err != nil {
		cmd.SilenceErrors = true
	}
	return errResult(result)
}

// withBaseURL makes --base-url act like FALCON_API_BASE_URL. The flag is
// operator configuration, so it pairs with the environment key.
func withBaseURL(lookup func(string) (string, bool), baseURL string) func(string) (string, bool) {
	if baseURL == "" {
		return lookup
	}
	return func(name string) (string, bool) {
		if name == credentials.EnvBaseURL {
			return baseURL, true
		}
		return lookup(name)
	}
}

// newSpinner returns nil unless w is a file. The spinner itself then
// decides whether that file is a terminal.
func newSpinner(w io.Writer, suffix string) *spinner.Spinner {
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	s.Suffix = suffix
	return s
}

// readParams decodes the optional parameter object. Numbers stay
// json.Number so integer checks match the REST gateway.
func readParams(stdin io.Reader, args []string) (map[string]interface{}, error) {
	if len(args) == 0 {
		return map[string]interface{}{}, nil
	}

	raw := []byte(args[0])
	if strings.TrimSpace(args[0]) == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read parameters from stdin: %w", err)
		}
		raw = data
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var params map[string]interface{}
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("parameters must be a JSON object: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parameters must be a single JSON object")
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return params, nil
}
