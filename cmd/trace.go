// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/tcptrace/internal/logger"
	"github.com/telekom/tcptrace/internal/output"
	"github.com/telekom/tcptrace/internal/traceroute"
	"github.com/telekom/tcptrace/pkg/config"
	"github.com/telekom/tcptrace/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// shutdownTimeout bounds flushing the traces after the run.
const shutdownTimeout = 5 * time.Second

var (
	newClient    = traceroute.NewClient
	newTelemetry = telemetry.New
)

// runTrace is the entrypoint of the root command
func runTrace(v *viper.Viper, version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		log := logger.NewLogger()
		ctx = logger.IntoContext(ctx, log)

		if err := cfg.Validate(ctx); err != nil {
			return err
		}
		// From here on errors are runtime failures, not usage errors.
		cmd.SilenceUsage = true

		tel := newTelemetry(cfg.Telemetry)
		if cfg.HasTelemetry() {
			if err := tel.InitTracing(ctx); err != nil {
				return err
			}
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer scancel()
			if err := tel.Shutdown(sctx); err != nil {
				log.WarnContext(ctx, "Failed to shut down telemetry", "error", err)
			}
		}()

		format, err := output.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		out, err := output.New(format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		manager := output.NewManager(out)
		defer func() {
			if err := manager.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to write output", "error", err)
			}
		}()

		target := args[0]
		client := newClient(manager)
		if err := registerMetrics(tel, client, version, target, cfg); err != nil {
			return err
		}

		ctx, span := tel.TracerProvider().Tracer("tcptrace").Start(ctx, "Trace", trace.WithAttributes(
			attribute.String("tcptrace.version", version),
			attribute.String("tcptrace.target", target),
		))
		summary, runErr := client.Run(ctx, target, &cfg.Trace)
		if runErr != nil {
			span.SetStatus(codes.Error, runErr.Error())
		}
		span.End()

		log.DebugContext(ctx, "Trace finished", "target", target, "reached", summary.Reached, "hops", summary.Hops)
		if err := tel.WriteMetrics(ctx); err != nil {
			log.WarnContext(ctx, "Failed to export metrics", "error", err)
		}
		return runErr
	}
}

// registerMetrics registers the client's collectors and the run info.
func registerMetrics(tel telemetry.Provider, client traceroute.Client, version, target string, cfg *config.Config) error {
	registry := tel.GetRegistry()
	for _, c := range client.GetMetricCollectors() {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	if err := telemetry.RegisterRunInfo(registry, version, target, strconv.Itoa(cfg.Trace.Port), cfg.Trace.Source); err != nil {
		return fmt.Errorf("failed to register run info: %w", err)
	}
	return nil
}
