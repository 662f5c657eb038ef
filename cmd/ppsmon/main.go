// ppsmon monitors a PPS/H-Bus heating bus on a serial port and republishes
// decoded readings as text, CSV, netdata plugin output or MQTT.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"github.com/hbus/ppsmon/hardware/power"
	"github.com/hbus/ppsmon/hardware/pps"
	"github.com/hbus/ppsmon/internal/monitor"
	"github.com/hbus/ppsmon/internal/output"
	"github.com/hbus/ppsmon/internal/state"
	"github.com/hbus/ppsmon/log2"
)

var log = log2.NewStderr(log2.LInfo)

var BuildVersion string = "unknown" // set by ldflags -X

func main() {
	// netdata launches plugins with update_every as the first argument
	netdataEvery := 0
	if _, ok := os.LookupEnv("NETDATA_UPDATE_EVERY"); ok && len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil {
			netdataEvery = n
			os.Args = append(os.Args[:1], os.Args[2:]...)
		}
	}

	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "ppsmon.hcl", "")
	flagPort := cmdline.String("port", "", "serial port, overrides config")
	flagN := cmdline.Int("n", 0, "number of messages to process (default: infinite)")
	flagCsv := cmdline.Bool("csv", false, "output CSV records")
	flagHeader := cmdline.Bool("header", false, "print CSV header")
	flagNetdata := cmdline.Bool("netdata", false, "act as a netdata external plugin")
	flagOutput := cmdline.String("output", "", "CSV output file (default: stdout)")
	flagRaw := cmdline.Bool("raw", false, "show telegrams also in raw format")
	flagUnknown := cmdline.Bool("unknown", false, "show unknown telegrams")
	cmdline.Parse(os.Args[1:])

	if sdnotify("start") {
		// under systemd, journal adds timestamps
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	ctx, g := state.NewContext(log)
	g.BuildVersion = BuildVersion
	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	applyFlags(config, *flagPort, *flagN, *flagCsv, *flagHeader, *flagNetdata,
		*flagOutput, *flagRaw, *flagUnknown, netdataEvery)
	g.MustInit(ctx, config)
	g.StopOnSignal()

	// run owns the hardware; its defers release the enable line and close
	// the port on the error paths too
	if err := run(ctx, g, config); err != nil {
		g.Stop()
		log.Fatal(errors.ErrorStack(err))
	}
	g.Stop()
	g.Alive.Wait()
}

func run(ctx context.Context, g *state.Global, config *state.Config) error {
	pin, err := power.Enable(config.Power, log)
	if err != nil {
		return errors.Trace(err)
	}
	defer pin.Release()

	port := pps.NewFilePort()
	if err = port.Open(config.Serial.Device, config.Serial.Baud); err != nil {
		return errors.Trace(err)
	}
	defer port.Close()

	emitters, err := buildEmitters(config)
	if err != nil {
		return errors.Trace(err)
	}
	defer emitters.Close()

	m := monitor.New(g, port, emitters...)
	sdnotify(daemon.SdNotifyReady)
	log.Debugf("init complete device=%s baud=%d", config.Serial.Device, config.Serial.Baud)

	if err = m.Run(ctx); err != nil {
		return errors.Trace(err)
	}
	log.Debugf("final stat=%s", m.Stat().String())
	return nil
}

func applyFlags(c *state.Config, port string, n int, csv, header, netdata bool,
	outPath string, raw, unknown bool, netdataEvery int) {
	if port != "" {
		c.Serial.Device = port
	}
	if n != 0 {
		c.Monitor.NMessage = n
	}
	if csv {
		c.Output.CSV.Enable = true
		c.Output.Text.Enable = false
	}
	if header {
		c.Output.CSV.Header = true
	}
	if outPath != "" {
		c.Output.CSV.Path = outPath
	}
	if netdata {
		c.Output.Netdata.Enable = true
		c.Output.Text.Enable = false
	}
	if netdataEvery > 0 {
		c.Output.Netdata.UpdateEverySec = netdataEvery
	}
	if raw {
		c.Output.Text.Raw = true
	}
	if unknown {
		c.Output.Text.Unknown = true
	}
	if !c.Output.CSV.Enable && !c.Output.Netdata.Enable && !c.Output.Mqtt.Enable {
		c.Output.Text.Enable = true
	}
}

func buildEmitters(c *state.Config) (output.Stack, error) {
	var stack output.Stack

	if c.Output.Text.Enable {
		stack = append(stack, output.NewText(os.Stdout, c.Output.Text.Raw, c.Output.Text.Unknown))
	}
	if c.Output.CSV.Enable {
		if c.Output.CSV.Path != "" {
			csv, err := output.NewCSVFile(c.Output.CSV.Path, c.Output.CSV.Header)
			if err != nil {
				return nil, errors.Trace(err)
			}
			stack = append(stack, csv)
		} else {
			stack = append(stack, output.NewCSV(os.Stdout, c.Output.CSV.Header))
		}
	}
	if c.Output.Netdata.Enable {
		nd := output.NewNetdata(os.Stdout, time.Duration(c.Output.Netdata.UpdateEverySec)*time.Second)
		if err := nd.Configure(); err != nil {
			return nil, errors.Annotate(err, "netdata configure")
		}
		stack = append(stack, nd)
	}
	if c.Output.Mqtt.Enable {
		m, err := output.NewMqtt(output.MqttConfig{
			Broker:       c.Output.Mqtt.Broker,
			ClientId:     c.Output.Mqtt.ClientId,
			Password:     c.Output.Mqtt.Password,
			TopicPrefix:  c.Output.Mqtt.TopicPrefix,
			KeepaliveSec: c.Output.Mqtt.KeepaliveSec,
		}, log)
		if err != nil {
			return nil, errors.Annotate(err, "mqtt output")
		}
		stack = append(stack, m)
	}
	return stack, nil
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
