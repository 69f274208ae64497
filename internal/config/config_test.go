package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Minutes
		wantErr bool
	}{
		{"17:00:00", model.Minutes(17 * 60), false},
		{"17:00", model.Minutes(17 * 60), false},
		{"00:00:30", model.Minutes(0), false},
		{"9:05:00", model.Minutes(9*60 + 5), false},
		{"not-a-time", 0, true},
		{"17", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	v := viper.New()

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, model.Minutes(17*60), cfg.StartTime)
	assert.Equal(t, model.Minutes(22*60), cfg.SimulationEndTime)
	assert.Equal(t, 35.0, cfg.AvgSpeedKmh)
	assert.Equal(t, 2, cfg.MaxBundleSize)
	assert.Equal(t, "adaptive", cfg.Strategy)
	assert.Equal(t, "testdata/orders.csv", cfg.OrdersFile)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_OverridesWinOverDefaults(t *testing.T) {
	v := viper.New()
	v.Set("STRATEGY", "combinatorial")
	v.Set("MAX_BUNDLE_SIZE", 4)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "combinatorial", cfg.Strategy)
	assert.Equal(t, 4, cfg.MaxBundleSize)
}

func TestLoad_InvalidStartTimeFails(t *testing.T) {
	v := viper.New()
	v.Set("START_TIME", "bogus")

	_, err := Load(v)
	assert.Error(t, err)
}
