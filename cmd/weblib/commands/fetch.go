package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/httpclient"
)

// staticToken is a TokenProvider returning the same token for every scope.
type staticToken string

func (t staticToken) GetToken(ctx context.Context, scope string) (string, error) {
	return string(t), nil
}

type fetchOptions struct {
	method    string
	params    string
	form      string
	data      string
	headers   []string
	retry     int
	timeout   time.Duration
	token     string
	rateLimit float64
	httpsOnly bool
}

// fetchResult is the JSON form of a fetched response.
type fetchResult struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
	Attempts   int    `json:"attempts"`
	Body       string `json:"body"`
}

func newFetchCommand() *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Send an HTTP request built from normalized values",
		Long: `Send an HTTP request. The URL is normalized, pairs from --params are
appended to its query, and the body comes from --form (form-encoded pairs) or
--data (raw text). 5xx responses and transient network errors are retried up
to --retry times with exponential backoff.`,
		Example: `  weblib fetch 'http://почта.рф/search' -p params.yaml
  weblib fetch https://example.com/api -X POST -f form.yaml --retry 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.method, "method", "X", "", "HTTP method (default GET, or POST with a body)")
	cmd.Flags().StringVarP(&opts.params, "params", "p", "", "YAML pairs file appended to the query")
	cmd.Flags().StringVarP(&opts.form, "form", "f", "", "YAML pairs file sent as a form body")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Raw body text")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	cmd.Flags().IntVar(&opts.retry, "retry", 0, "Retries on 5xx and transient errors")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-attempt timeout")
	cmd.Flags().StringVar(&opts.token, "token", "", "Bearer token (env WEBLIB_TOKEN)")
	cmd.Flags().Float64Var(&opts.rateLimit, "rate", 0, "Requests per second per host (0 for unlimited)")
	cmd.Flags().BoolVar(&opts.httpsOnly, "https-only", false, "Refuse plain http:// except for localhost")
	bindEnv(cmd.Flags(), "token")
	cmd.MarkFlagsMutuallyExclusive("form", "data")
	return cmd
}

func runFetch(cmd *cobra.Command, url string, opts *fetchOptions) error {
	req := httpclient.RequestOptions{
		Method:    strings.ToUpper(opts.method),
		URL:       url,
		Retry:     opts.retry,
		SkipAuth:  opts.token == "",
		HTTPSOnly: opts.httpsOnly,
	}

	if opts.params != "" {
		pairs, err := loadPairs(cmd, opts.params)
		if err != nil {
			return err
		}
		req.Params = pairs
	}
	switch {
	case opts.form != "":
		pairs, err := loadPairs(cmd, opts.form)
		if err != nil {
			return err
		}
		req.Data = pairs
	case cmd.Flags().Changed("data"):
		req.Data = opts.data
	}
	if req.Method == "" {
		req.Method = "GET"
		if req.Data != nil {
			req.Method = "POST"
		}
	}

	if len(opts.headers) > 0 {
		req.Headers = make(map[string]string, len(opts.headers))
		for _, h := range opts.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("invalid header %q, expected 'Name: value'", h)
			}
			req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	var clientOpts []httpclient.Option
	if opts.rateLimit > 0 {
		clientOpts = append(clientOpts, httpclient.WithRateLimit(opts.rateLimit, 1))
	}
	var provider httpclient.TokenProvider
	if opts.token != "" {
		provider = staticToken(opts.token)
	}
	client := httpclient.NewClient(provider, false, opts.timeout, clientOpts...)

	resp, err := client.Execute(cmd.Context(), req)
	if err != nil {
		return err
	}

	result := fetchResult{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Attempts:   resp.Attempts,
		Body:       string(resp.Body),
	}
	if err := cliout.Print(result, func() {
		cliout.Plain("%s", resp.Body)
	}); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned status %d", resp.URL, resp.StatusCode)
	}
	return nil
}
