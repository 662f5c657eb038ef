package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"

	"github.com/hbus/ppsmon/hardware/power"
	"github.com/hbus/ppsmon/helpers"
	"github.com/hbus/ppsmon/log2"
)

const (
	DefaultBaud            = 4800
	DefaultDevice          = "/dev/serial0"
	DefaultNetdataEverySec = 20
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Serial struct {
		Device string `hcl:"device"`
		Baud   int    `hcl:"baud"`
	} `hcl:"serial"`

	Power power.Config `hcl:"power"`

	Monitor struct {
		NMessage   int  `hcl:"nmessage"`
		RecordSize int  `hcl:"record_size"`
		LogDebug   bool `hcl:"log_debug"`
	} `hcl:"monitor"`

	Output struct {
		Text struct {
			Enable  bool `hcl:"enable"`
			Raw     bool `hcl:"raw"`
			Unknown bool `hcl:"unknown"`
		} `hcl:"text"`
		CSV struct {
			Enable bool   `hcl:"enable"`
			Header bool   `hcl:"header"`
			Path   string `hcl:"path"`
		} `hcl:"csv"`
		Netdata struct {
			Enable         bool `hcl:"enable"`
			UpdateEverySec int  `hcl:"update_every_sec"`
		} `hcl:"netdata"`
		Mqtt struct { //nolint:maligned
			Enable       bool   `hcl:"enable"`
			Broker       string `hcl:"broker"`
			ClientId     string `hcl:"client_id"`
			Password     string `hcl:"password"` // secret
			TopicPrefix  string `hcl:"topic_prefix"`
			KeepaliveSec int    `hcl:"keepalive_sec"`
		} `hcl:"mqtt"`
	} `hcl:"output"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

// Defaults fills zero fields that have fixed hardware defaults.
func (c *Config) Defaults() {
	if c.Serial.Device == "" {
		c.Serial.Device = DefaultDevice
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = DefaultBaud
	}
	if c.Output.Netdata.UpdateEverySec == 0 {
		c.Output.Netdata.UpdateEverySec = DefaultNetdataEverySec
	}
	if c.Output.Mqtt.TopicPrefix == "" {
		c.Output.Mqtt.TopicPrefix = "pps"
	}
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
			return
		}
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	if err = hcl.Unmarshal(bs, c); err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	c.Defaults()
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
