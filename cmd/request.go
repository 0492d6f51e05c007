package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smarterqueue/threads-go/query"
	"github.com/smarterqueue/threads-go/threads"
)

// DefaultConcurrency bounds the parallel requests of a multi-endpoint get
const DefaultConcurrency = 4

var (
	paramPairs  []string
	queryExpr   string
	concurrency int
	bodyFile    string

	queryCompiler = query.NewCompiler(query.WithCache(32))
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get ENDPOINT...",
	Short: "Send authenticated GET requests",
	Long: `Send a GET request to each endpoint and print the decoded responses.

Parameters are given as key=value, or key:=json for non-string values:

  threads get me --param fields=id,username,threads_profile_picture_url
  threads get me/threads --param limit:=10 --query 'map(body.data, #.id)'

Several endpoints are fetched in parallel and printed in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post ENDPOINT",
	Short: "Send an authenticated POST request",
	Long: `Send a POST request with a JSON body built from --body and --param.

  threads post me/threads --param media_type=TEXT --param text='Hello'
  echo '{"creation_id":"123"}' | threads post me/threads_publish --body -`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(getCmd, postCmd)

	for _, c := range []*cobra.Command{getCmd, postCmd} {
		c.Flags().StringArrayVarP(&paramPairs, "param", "p", nil, "request parameter as key=value or key:=json, repeatable")
		c.Flags().StringVarP(&queryExpr, "query", "q", "", "expression evaluated against each response")
	}
	getCmd.Flags().IntVar(&concurrency, "concurrency", DefaultConcurrency, "maximum parallel requests")
	postCmd.Flags().StringVar(&bodyFile, "body", "", "JSON object file to use as the request body, - for stdin")
}

func runGet(cmd *cobra.Command, args []string) error {
	params, err := parseParams(paramPairs)
	if err != nil {
		return err
	}

	q, err := compileQuery(queryExpr)
	if err != nil {
		return err
	}

	responses, err := fetchAll(cmd.Context(), client, args, params, concurrency)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return printResult(cmd.OutOrStdout(), q, responses[0])
	}

	type endpointResult struct {
		Endpoint string `json:"endpoint"`
		Status   int    `json:"status"`
		Result   any    `json:"result"`
	}
	results := make([]endpointResult, len(args))
	for i, resp := range responses {
		value, err := evaluate(q, resp)
		if err != nil {
			return fmt.Errorf("%s: %w", args[i], err)
		}
		results[i] = endpointResult{Endpoint: args[i], Status: resp.StatusCode, Result: value}
	}
	return printJSON(cmd.OutOrStdout(), results)
}

func runPost(cmd *cobra.Command, args []string) error {
	params, err := parseParams(paramPairs)
	if err != nil {
		return err
	}

	if bodyFile != "" {
		body, err := readBody(bodyFile, os.Stdin)
		if err != nil {
			return err
		}
		params = threads.Merge(body, params)
	}

	q, err := compileQuery(queryExpr)
	if err != nil {
		return err
	}

	resp, err := client.Post(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), q, resp)
}

// fetchAll issues a GET for each endpoint with a bounded number in flight.
// Responses are returned in endpoint order. The first failure cancels the
// remaining requests.
func fetchAll(ctx context.Context, api threads.API, endpoints []string, params threads.Params, limit int) ([]*threads.Response, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	responses := make([]*threads.Response, len(endpoints))
	for i, endpoint := range endpoints {
		i, endpoint := i, endpoint
		g.Go(func() error {
			resp, err := api.Get(ctx, endpoint, params)
			if err != nil {
				logger.Debug().Err(err).Str("endpoint", endpoint).Msg("GET failed")
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// parseParams turns key=value and key:=json pairs into request params
func parseParams(pairs []string) (threads.Params, error) {
	params := make(threads.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}

		if raw, isJSON := strings.CutSuffix(key, ":"); isJSON {
			var decoded any
			if err := decodeJSON([]byte(value), &decoded); err != nil {
				return nil, fmt.Errorf("invalid JSON value for parameter %q: %w", raw, err)
			}
			key = raw
			params[key] = decoded
		} else {
			params[key] = value
		}

		if key == "" {
			return nil, fmt.Errorf("invalid parameter %q, empty key", pair)
		}
	}
	return params, nil
}

// readBody reads a JSON object from path, or from stdin when path is "-"
func readBody(path string, stdin *os.File) (threads.Params, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		if isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd()) {
			return nil, fmt.Errorf("refusing to read request body from a terminal")
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read request body: %w", err)
	}

	var body threads.Params
	if err := decodeJSON(data, &body); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	return body, nil
}

// decodeJSON unmarshals data into v keeping numbers as json.Number
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func compileQuery(expression string) (*query.Query, error) {
	if expression == "" {
		return nil, nil
	}
	q, err := queryCompiler.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return q, nil
}

// evaluate returns the query result, or the whole body without a query
func evaluate(q *query.Query, resp *threads.Response) (any, error) {
	if q == nil {
		return resp.Body, nil
	}
	return q.Run(resp)
}

func printResult(w io.Writer, q *query.Query, resp *threads.Response) error {
	value, err := evaluate(q, resp)
	if err != nil {
		return err
	}
	return printJSON(w, value)
}
