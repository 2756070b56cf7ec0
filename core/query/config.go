package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// FieldList is a list of field paths. In JSON it may be written as a single
// string or as an array of strings.
type FieldList []string

// UnmarshalJSON accepts "name" as well as ["name", "city"].
func (f *FieldList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*f = FieldList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("fields must be a string or a list of strings: %w", err)
	}
	*f = list
	return nil
}

// StageConfig declares one stage. Exactly one field must be set.
type StageConfig struct {
	Search   *SearchOptions   `json:"search,omitempty"`
	Filter   *FilterOptions   `json:"filter,omitempty"`
	Sort     *SortOptions     `json:"sort,omitempty"`
	Paginate *PaginateOptions `json:"paginate,omitempty"`
	Group    *GroupOptions    `json:"group,omitempty"`
}

// Config is the declarative form of a Pipeline.
type Config struct {
	Name   string        `json:"name,omitempty"`
	Stages []StageConfig `json:"stages"`
}

// ParseConfig decodes a JSON pipeline definition. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: error decoding pipeline config: %w", ErrInvalidConfiguration, err)
	}
	return &c, nil
}

// LoadConfig reads and decodes a JSON pipeline definition from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Build constructs the pipeline the config describes. logger is shared by
// the pipeline and all of its stages; nil disables logging.
func (c *Config) Build(logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stages := make([]Stage, 0, len(c.Stages))
	for i, sc := range c.Stages {
		st, err := sc.build(logger)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stages = append(stages, st)
	}
	return NewPipeline(stages, WithLogger(logger), WithName(c.Name))
}

func (sc StageConfig) build(logger *zap.Logger) (Stage, error) {
	set := 0
	for _, present := range []bool{sc.Search != nil, sc.Filter != nil, sc.Sort != nil, sc.Paginate != nil, sc.Group != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: a stage must declare exactly one of search, filter, sort, paginate or group (found %d)", ErrInvalidConfiguration, set)
	}

	opt := WithStageLogger(logger)
	switch {
	case sc.Search != nil:
		return NewSearch(*sc.Search, opt)
	case sc.Filter != nil:
		return NewFilter(*sc.Filter, opt)
	case sc.Sort != nil:
		return NewSort(*sc.Sort, opt)
	case sc.Paginate != nil:
		return NewPaginate(*sc.Paginate, opt), nil
	default:
		return NewGroup(*sc.Group, opt)
	}
}
