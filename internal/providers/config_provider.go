package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"wagerd/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("tracker.oddsPolicy", "fine")
	v.SetDefault("tracker.emptySlipPolicy", "reject")
	v.SetDefault("tracker.maxReaders", 10000)

	_ = v.BindEnv("logger.level", "WAGERD_LOG_LEVEL")
	_ = v.BindEnv("persistence.saveInterval", "WAGERD_SAVE_INTERVAL")
	_ = v.BindEnv("cache.enabled", "WAGERD_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "WAGERD_CACHE_SIZE")
	_ = v.BindEnv("tracker.oddsPolicy", "WAGERD_ODDS_POLICY")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "WagerDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
