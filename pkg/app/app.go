package app

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-driver/pkg/metrics"
)

// Job is a unit of work executed by the process, either once or on a cron
// schedule.
type Job interface {
	// Init initializes the job in a blocking fashion. When Init returns, the
	// job is expected to be ready to Run.
	Init(config *BaseConfig) error

	// Run executes the job a single time.
	Run(ctx context.Context) error

	// Stop releases any resources held by the job. Stop should be idempotent.
	Stop()
}

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")

	osSigCh = make(chan os.Signal, 1)
)

func init() {
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

// Run loads the process config and runs job. Without a run schedule, the
// job's error is returned after a single run.
func Run(job Job, name string) error {
	flag.Parse()

	logger := logrus.StandardLogger().WithField("type", "app")

	config, err := LoadConfig(*configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if len(config.AppName) == 0 {
		return errors.New("must specify an application name")
	}

	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return errors.Wrap(err, "error connecting to new relic")
		}

		metricsProvider = nr
		defer nr.Shutdown(config.ShutdownGracePeriod)
	}

	configureLogger(config, metricsProvider)

	if err := job.Init(config); err != nil {
		return errors.Wrap(err, "failed to initialize job")
	}
	defer job.Stop()

	ctx, cancel := context.WithCancel(metrics.WithApplication(context.Background(), metricsProvider))
	defer cancel()

	transactionName := name + "__run"

	if len(config.RunSchedule) == 0 {
		go func() {
			select {
			case <-osSigCh:
				logger.Info("interrupt received, stopping run")
				cancel()
			case <-ctx.Done():
			}
		}()

		runCtx, end := metrics.StartTransaction(ctx, transactionName)
		defer end()
		return job.Run(runCtx)
	}

	cronJob := cron.New(
		cron.WithLocation(time.Local),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err = cronJob.AddFunc(config.RunSchedule, func() {
		runCtx, end := metrics.StartTransaction(ctx, transactionName)
		defer end()

		if err := job.Run(runCtx); err != nil {
			logger.WithError(err).Warn("scheduled run failed")
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize run schedule")
	}

	logger.WithField("schedule", config.RunSchedule).Info("starting scheduled runs")
	cronJob.Start()

	<-osSigCh
	logger.Info("interrupt received, shutting down")

	cancel()
	select {
	case <-cronJob.Stop().Done():
		return nil
	case <-time.After(config.ShutdownGracePeriod):
		return errors.Errorf("failed to stop the application within %v", config.ShutdownGracePeriod)
	}
}

func configureLogger(config *BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
