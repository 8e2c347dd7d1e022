package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openzipkin-contrib/zipkintracer-thrift/propagation/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the traced sum endpoint",
	RunE:  serveF,
}

func init() {
	serveCmd.Flags().String("bind-addr", ":61001", "The bind address for this service.")
	if err := viper.BindPFlag("bind-addr", serveCmd.Flags().Lookup("bind-addr")); err != nil {
		panic(err)
	}
}

func serveF(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stdout)
	defer logger.Sync()

	cfg := loadConfig(viper.GetViper())
	tr, err := newTracing(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tr.Close(); err != nil {
			logger.Error("closing reporter", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(tr.metrics.PrometheusCollectors()...)

	mux := nethttp.NewServeMux()
	mux.Handle("/sum", http.Middleware(tr.tracer, "sum", nethttp.HandlerFunc(sumHandler)))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	addr := viper.GetString("bind-addr")
	srv := &nethttp.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("transport", "http"), zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return err
	}
	return nil
}

// sumHandler answers /sum?a=1&b=2 with the sum of both operands.
func sumHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	sp := opentracing.SpanFromContext(r.Context())

	a, err := strconv.ParseInt(r.URL.Query().Get("a"), 10, 64)
	if err != nil {
		nethttp.Error(w, "invalid a", nethttp.StatusBadRequest)
		return
	}
	b, err := strconv.ParseInt(r.URL.Query().Get("b"), 10, 64)
	if err != nil {
		nethttp.Error(w, "invalid b", nethttp.StatusBadRequest)
		return
	}
	if sp != nil {
		sp.LogKV("a", a, "b", b)
	}
	fmt.Fprintf(w, "%d", a+b)
}
