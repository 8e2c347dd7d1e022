package main

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"os"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/openzipkin-contrib/zipkintracer-thrift/propagation/http"
)

var callCmd = &cobra.Command{
	Use:   "call A B",
	Short: "Ask the sum service to add A and B",
	Args:  cobra.ExactArgs(2),
	RunE:  callF,
}

func init() {
	callCmd.Flags().String("service-url", "http://localhost:61001", "Base URL of the sum service.")
	if err := viper.BindPFlag("service-url", callCmd.Flags().Lookup("service-url")); err != nil {
		panic(err)
	}
}

func callF(cmd *cobra.Command, args []string) (err error) {
	logger := newLogger(os.Stderr)
	defer logger.Sync()

	cfg := loadConfig(viper.GetViper())
	tr, err := newTracing(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, tr.Close()) }()

	client := &nethttp.Client{Transport: &http.Transport{Tracer: tr.tracer, OperationName: "sum"}}

	span := tr.tracer.StartSpan("call")
	defer span.Finish()
	ctx := opentracing.ContextWithSpan(context.Background(), span)

	res, err := sum(ctx, client, viper.GetString("service-url"), args[0], args[1])
	if err != nil {
		span.LogKV("event", "error", "message", err.Error())
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res)
	return nil
}

func sum(ctx context.Context, client *nethttp.Client, base, a, b string) (string, error) {
	q := url.Values{"a": {a}, "b": {b}}
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, base+"/sum?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call sum service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != nethttp.StatusOK {
		return "", errors.Errorf("sum service: %s: %s", resp.Status, body)
	}
	return string(body), nil
}
