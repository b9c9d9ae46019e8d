package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maastricht-university/dialog-coordination/clients"
	cfg "github.com/maastricht-university/dialog-coordination/config"
	"github.com/maastricht-university/dialog-coordination/orchestrator"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("dialog-coordination exited")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "dialog-coordination",
		Short:         "Detect coordination between dialog participants on the message bus",
		Long:          "dialog-coordination subscribes to agent/dialog, watches the most recent utterances for configured label pairs spoken in order by two different participants, and publishes a coordination event for each match. It also publishes a periodic heartbeat.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := cfg.Load(viper.New(), configPath, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := newLogger(conf.Log)
			if err != nil {
				return err
			}
			log.Debugf("effective configuration:\n%s", conf)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, conf, log, clients.NewMQTT(conf.MQTT, log.WithField("component", "mqtt")))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "path to (optional) config file")
	f.String("mqtt.host", "localhost", "MQTT broker host")
	f.Int("mqtt.port", 1883, "MQTT broker port")
	f.String("log.level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// transport is the connection the agent runs over.
type transport interface {
	orchestrator.Bus
	Connect(ctx context.Context) error
	Disconnect()
}

// run connects bus, runs the agent until ctx is done and disconnects only
// after the agent has stopped publishing.
func run(ctx context.Context, conf *cfg.Root, log *logrus.Logger, bus transport) error {
	if err := bus.Connect(ctx); err != nil {
		return err
	}
	defer bus.Disconnect()

	log.WithFields(logrus.Fields{
		"source":      conf.Agent.Source,
		"window_size": conf.Agent.WindowSize,
		"label_pairs": conf.Agent.LabelPairs,
	}).Info("starting coordination agent")

	agent := orchestrator.NewAgent(conf, bus, log)
	return agent.Run(ctx)
}

func newLogger(c cfg.Log) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(c.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", c.Format)
	}
	return log, nil
}
