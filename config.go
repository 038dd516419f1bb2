package actiondetect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration
// file values, eg: ACTIONDETECT_INFERENCE_URL
const EnvPrefix = "ACTIONDETECT"

// Config holds the settings for running action detection
type Config struct {
	// Weight is the path of the Model artifact the inference service loads
	Weight string
	// Labels maps class ids to label names
	Labels map[int]string
	// LabelsFile is a text file of labels, one per line, used when Labels
	// is empty
	LabelsFile string
	// Exclude are the label names never requested from the Detector
	Exclude []string

	Inference struct {
		// URL of the inference service predict endpoint
		URL     string
		Timeout time.Duration
	}

	Render struct {
		LineThickness int
	}

	HTTP struct {
		Addr string
	}

	Log struct {
		Level string
	}
}

// LoadConfig reads the configuration file at path.  Values can be overridden
// by environment variables prefixed with EnvPrefix.
func LoadConfig(path string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("inference.url", "http://localhost:8000/predict")
	v.SetDefault("inference.timeout", 30*time.Second)
	v.SetDefault("render.line_thickness", 2)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{
		Weight:     v.GetString("weight"),
		LabelsFile: v.GetString("labels_file"),
		Exclude:    v.GetStringSlice("exclude"),
	}

	labels, err := parseLabels(v.GetStringMapString("labels"))

	if err != nil {
		return nil, err
	}

	cfg.Labels = labels

	cfg.Inference.URL = v.GetString("inference.url")
	cfg.Inference.Timeout = v.GetDuration("inference.timeout")
	cfg.Render.LineThickness = v.GetInt("render.line_thickness")
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.Log.Level = v.GetString("log.level")

	if len(cfg.Labels) == 0 && cfg.LabelsFile == "" {
		return nil, errors.New("config must define labels or labels_file")
	}

	return cfg, nil
}

// parseLabels converts the yaml labels mapping, whose keys viper hands back
// as strings, into class ids
func parseLabels(raw map[string]string) (map[int]string, error) {

	labels := make(map[int]string, len(raw))

	for k, name := range raw {
		id, err := strconv.Atoi(k)

		if err != nil {
			return nil, fmt.Errorf("label key %q is not a class id: %w", k, err)
		}

		labels[id] = name
	}

	return labels, nil
}

// Registry builds the LabelRegistry from Labels, or from LabelsFile when no
// Labels are set
func (c *Config) Registry() (*LabelRegistry, error) {

	if len(c.Labels) > 0 {
		return NewLabelRegistry(c.Labels)
	}

	labels, err := LoadLabels(c.LabelsFile)

	if err != nil {
		return nil, fmt.Errorf("error loading model labels: %w", err)
	}

	return NewLabelRegistryFromList(labels)
}
