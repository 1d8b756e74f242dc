// Command tierctl sends one command to a running tierkv server and prints the
// report.
//
//	tierctl SET string greeting '"hello world"'
//	tierctl -json GET greeting
//	tierctl -request-id deploy-42 DEL greeting
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adeilh/tierkv/api"
	"github.com/adeilh/tierkv/httpx"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tierctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOr("TIERKV_ADDR", "http://127.0.0.1:8080"), "tierkv server base URL")
	asJSON := fs.Bool("json", false, "request the JSON report")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	health := fs.Bool("health", false, "check server health instead of sending a command")
	requestID := fs.String("request-id", "", "X-Request-Id to send; the server generates one when empty")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tierctl [flags] <SET|GET|DEL> ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client := httpx.NewClient(httpx.WithBaseURL(*addr), httpx.WithClientTimeout(*timeout))
	ctx := context.Background()

	var opts []httpx.RequestOption
	if *requestID != "" {
		opts = append(opts, httpx.WithRequestHeaders(map[string]string{httpx.HeaderXRequestID: *requestID}))
	}

	if *health {
		resp, err := client.Get(ctx, api.PathHealth, nil, opts...)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, resp.String())
		return 0
	}

	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fs.Usage()
		return 2
	}

	if *asJSON {
		opts = append(opts, httpx.WithAccept(httpx.MIMEApplicationJSON))
	}
	resp, err := client.Post(ctx, api.PathCache, api.Request{Cmd: text}, nil, opts...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if resp != nil && resp.StatusCode() == httpx.StatusBadRequest {
			return 2
		}
		return 1
	}
	fmt.Fprint(stdout, resp.String())
	if !strings.HasSuffix(resp.String(), "\n") {
		fmt.Fprintln(stdout)
	}
	return 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
