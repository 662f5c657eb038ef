package state

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/temoto/alive/v2"

	"github.com/hbus/ppsmon/log2"
)

const ContextKey = "run/state-global"

// Global carries the process-wide singletons: lifecycle, config, logger.
type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Log          *log2.Log

	initSignalOnce sync.Once
}

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error state.NewContext() log=nil")
	}
	g := &Global{
		Alive: alive.NewAlive(),
		Log:   log,
	}
	ctx := context.WithValue(context.Background(), ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

func (g *Global) Init(ctx context.Context, cfg *Config) error {
	cfg.Defaults()
	g.Config = cfg
	if cfg.Monitor.LogDebug {
		g.Log.SetLevel(log2.LDebug)
	}
	g.Log.Debugf("build version=%s", g.BuildVersion)
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Log.Fatal(err)
	}
}

// StopOnSignal makes SIGINT/SIGTERM request a cooperative stop; the monitor
// loop notices it at the next frame boundary.
func (g *Global) StopOnSignal() {
	g.initSignalOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-ch
			g.Log.Infof("signal=%v stopping", sig)
			g.Alive.Stop()
		}()
	})
}

func (g *Global) Stop() { g.Alive.Stop() }
