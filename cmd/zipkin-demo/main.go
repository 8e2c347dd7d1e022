// Command zipkin-demo runs a small traced HTTP service and a client calling
// it. Finished spans are reported to Zipkin over HTTP, Kafka or both.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "zipkin-demo",
	Short: "Traced demo service reporting to Zipkin",
}

func init() {
	viper.SetEnvPrefix("ZIPKIN")
	viper.SetEnvKeyReplacer(replacer())
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("service-name", "zipkin-demo", "Service name recorded on every span.")
	flags.String("host-port", "127.0.0.1:61001", "host:port recorded as the local endpoint.")
	flags.String("collector-url", "", "Base URL of the Zipkin server, e.g. http://localhost:9411.")
	flags.StringSlice("kafka-brokers", nil, "Kafka brokers receiving spans on the zipkin topic.")
	flags.String("kafka-topic", "zipkin", "Kafka topic spans are published to.")
	flags.Int("batch-size", 1000, "Number of buffered spans that triggers a flush.")
	flags.Duration("batch-interval", defaultBatchInterval, "Time since the last flush that triggers a flush.")
	flags.Int("http-retries", 0, "Retries for failed span posts.")
	flags.String("b3", "multi", "B3 header style: multi, single or both.")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd, callCmd)
}

// replacer maps flag names to environment variable suffixes.
func replacer() *strings.Replacer {
	return strings.NewReplacer("-", "_")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
