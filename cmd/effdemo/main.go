// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command effdemo runs a cache-aside effect program against the
// in-process interpreters, decorated with audit records and Prometheus
// counters. The first fetch misses the cache and reads storage, the
// second is served from the cache; the collected effect totals are
// logged at the end.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"code.hybscloud.com/eff"
	"code.hybscloud.com/eff/audit"
	"code.hybscloud.com/eff/interp/memory"
	"code.hybscloud.com/eff/metrics"
)

type config struct {
	Collection string        `env:"EFFDEMO_COLLECTION,default=players"`
	RecordID   string        `env:"EFFDEMO_RECORD_ID,default=p-1"`
	CacheTTL   time.Duration `env:"EFFDEMO_CACHE_TTL,default=1m"`
	Verbose    bool          `env:"EFFDEMO_VERBOSE,default=false"`
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "effdemo:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "effdemo",
		Short:         "Run a cache-aside effect program against in-process interpreters",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env %s: %w", envFile, err)
				}
			} else {
				_ = godotenv.Load() // allow .env for local runs
			}
			var cfg config
			if err := envdecode.Decode(&cfg); err != nil {
				return fmt.Errorf("decode config: %w", err)
			}
			return runDemo(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "path to a .env file (defaults to ./.env when present)")
	return cmd
}

// fetched is what the demo program resolves to: the profile bytes and
// which layer served them.
type fetched struct {
	Source string
	Data   []byte
}

// fetchProfile is the cache-aside read: try the cache, fall back to
// storage on a miss, and warm the cache before returning.
func fetchProfile(collection, id string, ttl time.Duration) eff.Program[fetched] {
	key := collection + "/" + id
	return eff.GetBind(key, func(o eff.CacheOutcome) eff.Program[fetched] {
		if value, _, hit := o.Hit(); hit {
			return eff.Done(fetched{Source: "cache", Data: value})
		}
		return eff.LookupBind(collection, id, func(lo eff.LookupOutcome) eff.Program[fetched] {
			rec, found := lo.Found()
			if !found {
				return eff.Done(fetched{Source: "missing"})
			}
			return eff.PutThen(key, rec.Data, ttl, eff.Done(fetched{Source: "storage", Data: rec.Data}))
		})
	})
}

func runDemo(ctx context.Context, cfg config) error {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "effdemo").Logger()

	store := memory.NewStore()
	store.Seed(cfg.Collection, eff.Record{
		ID:   cfg.RecordID,
		Rev:  1,
		Data: []byte(`{"name":"ayla","score":1200}`),
	})
	cache := memory.NewCache()

	reg := prometheus.NewRegistry()
	obs := metrics.NewObserver(reg)
	decorate := func(in eff.Interpreter) eff.Interpreter {
		return obs.Decorate(audit.New(in, logger))
	}
	in := eff.NewComposite(eff.Categories{
		Storage: decorate(eff.NewStorageInterpreter(store)),
		Cache:   decorate(eff.NewCacheInterpreter(cache)),
	})

	for run := 1; run <= 2; run++ {
		res := eff.Run(ctx, fetchProfile(cfg.Collection, cfg.RecordID, cfg.CacheTTL), in)
		got, ok := res.Get()
		if !ok {
			ierr, _ := res.GetErr()
			return fmt.Errorf("run %d: %w", run, ierr)
		}
		logger.Info().
			Int("run", run).
			Str("source", got.Source).
			Str("profile", string(got.Data)).
			Msg("profile fetched")
	}

	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "eff_interpreter_effects_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			evt := logger.Info()
			for _, lp := range m.GetLabel() {
				evt = evt.Str(lp.GetName(), lp.GetValue())
			}
			evt.Float64("count", m.GetCounter().GetValue()).Msg("effect totals")
		}
	}
	return nil
}
