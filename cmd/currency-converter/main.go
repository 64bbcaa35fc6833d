package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/infigaming-com/currency-converter/app"
	"github.com/infigaming-com/currency-converter/config"
	"github.com/infigaming-com/currency-converter/converter"
	"github.com/infigaming-com/currency-converter/util"
	"github.com/infigaming-com/currency-converter/web"
	"github.com/infigaming-com/currency-converter/web/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const serviceName = "currency-converter"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	amount         string
	inputCurrency  string
	outputCurrency *string
	serve          bool
	envFiles       []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage of %s:\n", serviceName)
		flags.PrintDefaults()
	}

	o := &options{}
	var output string
	flags.StringVar(&o.amount, web.AmountParam, "", "amount to convert")
	flags.StringVar(&o.inputCurrency, web.InputCurrencyParam, "", "input currency code or symbol")
	flags.StringVar(&output, web.OutputCurrencyParam, "", "output currency code or symbol, every available currency when omitted")
	flags.BoolVar(&o.serve, "serve", false, "serve "+web.ConverterPath+" over HTTP instead of converting once")
	flags.StringSliceVar(&o.envFiles, "env-file", nil, "dotenv files to load, .env by default")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.Changed(web.OutputCurrencyParam) {
		o.outputCurrency = &output
	}
	if !o.serve && (!flags.Changed(web.AmountParam) || !flags.Changed(web.InputCurrencyParam)) {
		flags.Usage()
		return nil, fmt.Errorf("--%s and --%s are required", web.AmountParam, web.InputCurrencyParam)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	// stdout carries the conversion result
	lg, cleanup := util.NewLogger(serviceName, "stderr")
	defer cleanup()

	recorder, shutdownMetrics, err := app.NewRecorder(cfg.Telemetry)
	if err != nil {
		lg.Error("failed to init metrics", zap.Error(err))
		return exitFailure
	}
	defer shutdownMetrics()

	a, err := app.Build(ctx, lg, cfg, recorder)
	if err != nil {
		lg.Error("failed to build converter", zap.Error(err))
		return exitFailure
	}
	defer a.Close()

	if o.serve {
		return serve(ctx, lg, cfg, a.Converter)
	}

	result := a.Converter.Convert(ctx, converter.Request{
		Amount:         web.ParseAmount(o.amount),
		InputCurrency:  o.inputCurrency,
		OutputCurrency: o.outputCurrency,
	})
	fmt.Fprintln(stdout, result.Stringify())
	if result.Failed() {
		return exitFailure
	}
	return exitOK
}

func serve(ctx context.Context, lg *zap.Logger, cfg *config.Config, conv web.Converter) int {
	err := web.StartServer(ctx, lg,
		web.WithMode(cfg.Server.Mode),
		web.WithPort(cfg.Server.Port),
		web.WithCustomHandler(middleware.CorrelationIdMiddleware()),
		web.WithCustomHandler(middleware.LoggingMiddleware(middleware.WithLogger(lg))),
		web.WithRoutes(web.ConverterRoutes(lg, conv)),
	)
	if err != nil {
		return exitFailure
	}
	return exitOK
}
