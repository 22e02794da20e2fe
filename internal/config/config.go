package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-logr/logr"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/net/context"
)

type Config struct {
	MetricsCertPath string `env:"METRICS_CERT_PATH"`

	// FieldManager is the server-side apply owner identity used for every
	// managed resource.
	FieldManager string `env:"FIELD_MANAGER, default=konvergator"`

	// ForceOwnership reacquires fields owned by other field managers on
	// apply. Enable to recover from ownership conflicts.
	ForceOwnership bool `env:"FORCE_OWNERSHIP"`

	// ResyncInterval is how often a healthy ManifestSet is requeued to
	// re-evaluate resource health.
	ResyncInterval time.Duration `env:"RESYNC_INTERVAL, default=10m"`

	DryRun bool `env:"DRY_RUN"`
}

func NewConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (f *Config) Log(logger logr.Logger) {
	val := reflect.ValueOf(*f)
	typeOfStruct := val.Type()

	for i := 0; i < val.NumField(); i++ {
		logger.Info(fmt.Sprintf("%s: %v", typeOfStruct.Field(i).Name, val.Field(i).Interface()))
	}
}
