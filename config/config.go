package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source selects where topics come from.
type Source string

const (
	SourceTopics Source = "topics"
	SourceNews   Source = "news"
)

// CurationSettings controls the human approval step.
type CurationSettings struct {
	Enabled      bool     `yaml:"enabled" json:"enabled"`
	Timeout      Duration `yaml:"timeout" json:"timeout"`
	PollInterval Duration `yaml:"poll_interval" json:"poll_interval"`
}

// Settings is the on-disk pipeline configuration (config.yaml or config.json).
type Settings struct {
	Topics        []string         `yaml:"temas" json:"temas"`
	DurationMin   int              `yaml:"duracao_min" json:"duracao_min"`
	DurationMax   int              `yaml:"duracao_max" json:"duracao_max"`
	ImageKeywords []string         `yaml:"palavras_chave_imagens" json:"palavras_chave_imagens"`
	Language      string           `yaml:"language" json:"language"`
	Profile       string           `yaml:"profile" json:"profile"`
	Source        Source           `yaml:"source" json:"source"`
	Feeds         []string         `yaml:"feeds" json:"feeds"`
	Subtitles     bool             `yaml:"subtitles" json:"subtitles"`
	PrivacyStatus string           `yaml:"privacy_status" json:"privacy_status"`
	CategoryID    string           `yaml:"category_id" json:"category_id"`
	Curation      CurationSettings `yaml:"curation" json:"curation"`
}

// Duration accepts "90s"/"1h" strings or plain seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		d.Duration = v
		return nil
	}
	var secs float64
	if _, err := fmt.Sscanf(raw, "%g", &secs); err != nil {
		return fmt.Errorf("invalid duration %q", raw)
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	return d.parse(strings.Trim(string(b), `"`))
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Load reads settings from a YAML or JSON file depending on its extension,
// applies defaults and validates the result.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyDefaults() {
	if s.Language == "" {
		s.Language = "pt-BR"
	}
	if s.Profile == "" {
		s.Profile = "long"
	}
	if s.Source == "" {
		s.Source = SourceTopics
	}
	if s.DurationMin == 0 {
		s.DurationMin = 8
	}
	if s.DurationMax == 0 {
		s.DurationMax = s.DurationMin
	}
	if s.PrivacyStatus == "" {
		s.PrivacyStatus = YouTubePrivacyStatus
	}
	if s.CategoryID == "" {
		s.CategoryID = YouTubeCategoryID
	}
	if s.Curation.Timeout.Duration == 0 {
		s.Curation.Timeout.Duration = CurationTimeout
	}
	if s.Curation.PollInterval.Duration == 0 {
		s.Curation.PollInterval.Duration = CurationPollInterval
	}
}

// Validate checks the settings for values the pipeline cannot work with.
func (s *Settings) Validate() error {
	var errs []error
	if s.Source == SourceTopics && len(s.Topics) == 0 {
		errs = append(errs, errors.New("at least one topic is required when source is \"topics\""))
	}
	if s.Source == SourceNews && len(s.Feeds) == 0 {
		errs = append(errs, errors.New("at least one feed is required when source is \"news\""))
	}
	if s.Source != SourceTopics && s.Source != SourceNews {
		errs = append(errs, fmt.Errorf("unknown source %q", s.Source))
	}
	if s.DurationMin < 1 || s.DurationMax < 1 {
		errs = append(errs, errors.New("durations must be at least 1 minute"))
	}
	if s.DurationMin > s.DurationMax {
		errs = append(errs, fmt.Errorf("duracao_min (%d) is greater than duracao_max (%d)", s.DurationMin, s.DurationMax))
	}
	if s.Profile != "short" && s.Profile != "long" {
		errs = append(errs, fmt.Errorf("unknown profile %q", s.Profile))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
