// Command validate-data checks the area code dataset for integrity.
//
// Usage:
//
//	go run ./cmd/validate-data [--data-dir ./data] [--country US] [--log-level debug]
//
// Without --data-dir the dataset embedded in the package is validated.
// Run it after editing the JSON sources under ./data/.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/andreiashu/areacodes"
)

type options struct {
	dataDir  string
	country  string
	logLevel string
}

func main() {
	opt := options{logLevel: "info"}
	pflag.StringVar(&opt.dataDir, "data-dir", "", "Directory of <COUNTRY>-codes.json sources to validate instead of the embedded dataset.")
	pflag.StringVar(&opt.country, "country", "", "Also print the records of this country id or name.")
	pflag.StringVar(&opt.logLevel, "log-level", opt.logLevel, "Log level (debug, info, warn, error).")
	pflag.Parse()

	level, err := logrus.ParseLevel(opt.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	log := logrus.New()
	log.SetLevel(level)

	if err := run(context.Background(), opt, log); err != nil {
		log.WithError(err).Error("Dataset validation failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, opt options, log *logrus.Logger) error {
	catalogOpts := []areacodes.Option{areacodes.WithLogger(log)}
	if opt.dataDir != "" {
		catalogOpts = append(catalogOpts, areacodes.WithDataDir(opt.dataDir))
	}
	c := areacodes.New(catalogOpts...)

	summary, err := areacodes.ValidateDataset(ctx, c)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"records":   summary.Records,
		"countries": len(summary.Countries),
	}).Info("Dataset OK")

	if opt.country != "" {
		codes, err := c.Codes(ctx, opt.country)
		if err != nil {
			return fmt.Errorf("loading codes for %q: %w", opt.country, err)
		}
		for _, ac := range codes {
			fmt.Printf("%s %-6s %-12s %s\n", ac.Flag(), ac.Code, "+"+ac.E164, ac.DisplayName()+" - "+ac.Subtitle())
		}
		log.Infof("%d records for %q", len(codes), opt.country)
	}
	return nil
}
