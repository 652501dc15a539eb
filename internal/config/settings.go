package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings are the runtime tunables, resolved from flags with CAMDECK_*
// environment overrides.
type Settings struct {
	Listen     string
	ConfigPath string
	Connect    string
	NoInput    bool
	NoTray     bool

	Deadzone   float64
	PressLatch time.Duration
	PollHz     float64
	SendHz     float64
}

// DefineFlags registers the command-line flags on the given set.
func DefineFlags(fs *pflag.FlagSet) {
	fs.String("listen", ":8080", "HTTP listen address for the device server")
	fs.String("config", "config.json", "path to the device/group configuration file")
	fs.String("connect", "", "attach the console to a remote camdeck server (ws URL) instead of serving locally")
	fs.Bool("no-input", false, "disable local gamepad input")
	fs.Bool("no-tray", false, "disable the system tray icon")
	fs.Float64("deadzone", 0.1, "analog deadzone threshold")
	fs.Duration("press-latch", 100*time.Millisecond, "minimum virtual button press duration")
	fs.Float64("poll-hz", 60, "input polling rate")
	fs.Float64("send-hz", 5, "per-group outbound command rate")
}

// LoadSettings binds the flag set into viper and resolves the settings.
func LoadSettings(fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("camdeck")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	return &Settings{
		Listen:     v.GetString("listen"),
		ConfigPath: v.GetString("config"),
		Connect:    v.GetString("connect"),
		NoInput:    v.GetBool("no-input"),
		NoTray:     v.GetBool("no-tray"),
		Deadzone:   v.GetFloat64("deadzone"),
		PressLatch: v.GetDuration("press-latch"),
		PollHz:     v.GetFloat64("poll-hz"),
		SendHz:     v.GetFloat64("send-hz"),
	}, nil
}
