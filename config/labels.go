package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// LabelPair is one ordered coordination pattern: Anchor is said first,
// Follow afterwards by a different participant.
type LabelPair struct {
	Anchor string `mapstructure:"anchor" yaml:"anchor"`
	Follow string `mapstructure:"follow" yaml:"follow"`
}

func (p LabelPair) String() string { return p.Anchor + "->" + p.Follow }

// UnmarshalYAML accepts {anchor: A, follow: B} or the short form [A, B].
func (p *LabelPair) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var pair []string
		if err := n.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: label pair needs exactly 2 labels, got %d", n.Line, len(pair))
		}
		p.Anchor, p.Follow = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		type plain LabelPair
		var v plain
		if err := n.Decode(&v); err != nil {
			return err
		}
		*p = LabelPair(v)
		return nil
	default:
		return fmt.Errorf("line %d: label pair must be a mapping or a sequence", n.Line)
	}
}

var labelPairType = reflect.TypeOf(LabelPair{})

// labelPairHook lets agent.label_pairs use the short [A, B] form when the
// config is decoded through viper.
func labelPairHook(from, to reflect.Type, data any) (any, error) {
	if to != labelPairType || (from.Kind() != reflect.Slice && from.Kind() != reflect.Array) {
		return data, nil
	}
	pair := reflect.ValueOf(data)
	if pair.Len() != 2 {
		return nil, fmt.Errorf("label pair needs exactly 2 labels, got %d", pair.Len())
	}
	return map[string]any{
		"anchor": fmt.Sprint(pair.Index(0).Interface()),
		"follow": fmt.Sprint(pair.Index(1).Interface()),
	}, nil
}

type labelFile struct {
	Pairs []LabelPair `yaml:"pairs"`
}

func DefaultLabelPairs() []LabelPair {
	return []LabelPair{{Anchor: "CriticalVictim", Follow: "MoveTo"}}
}

// LoadLabelFile reads a YAML label table:
//
//	pairs:
//	  - {anchor: CriticalVictim, follow: MoveTo}
//	  - [NeedAction, Agreement]
func LoadLabelFile(path string) ([]LabelPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label file: %w", err)
	}
	defer f.Close()

	var lf labelFile
	if err := yaml.NewDecoder(f).Decode(&lf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode label file %s: %w", path, err)
	}
	return lf.Pairs, nil
}

func dedupe(pairs []LabelPair) []LabelPair {
	seen := make(map[LabelPair]struct{}, len(pairs))
	out := make([]LabelPair, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
