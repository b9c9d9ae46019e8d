package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// iniExts are read with readINI rather than viper's own codecs.
var iniExts = map[string]bool{"ini": true, "cfg": true, "conf": true}

func isINI(path string) bool {
	return iniExts[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
}

// readINI merges an INI file into v's config layer. Both layouts are
// accepted and may be mixed:
//
//	mqtt.host = broker.local
//
//	[mqtt]
//	host = broker.local
func readINI(v *viper.Viper, path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return err
	}

	tree := map[string]any{}
	for _, sec := range f.Sections() {
		for _, k := range sec.Keys() {
			key := k.Name()
			if sec.Name() != ini.DefaultSection {
				key = sec.Name() + "." + key
			}
			if err := setPath(tree, strings.Split(strings.ToLower(key), "."), k.Value()); err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
		}
	}
	return v.MergeConfigMap(tree)
}

func setPath(tree map[string]any, path []string, val string) error {
	for _, p := range path[:len(path)-1] {
		switch next := tree[p].(type) {
		case nil:
			m := map[string]any{}
			tree[p] = m
			tree = m
		case map[string]any:
			tree = next
		default:
			return fmt.Errorf("%s is both a value and a section", p)
		}
	}
	leaf := path[len(path)-1]
	if _, ok := tree[leaf].(map[string]any); ok {
		return fmt.Errorf("%s is both a value and a section", leaf)
	}
	tree[leaf] = val
	return nil
}
