package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLabelPairUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var got []LabelPair
	require.NoError(t, yaml.Unmarshal([]byte("- [A, B]\n- {anchor: C, follow: D}\n"), &got))
	assert.Equal(t, []LabelPair{{"A", "B"}, {"C", "D"}}, got)
}

func TestLabelPairUnmarshalYAMLRejects(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"- [A]\n", "- [A, B, C]\n", "- A\n"} {
		var got []LabelPair
		assert.Error(t, yaml.Unmarshal([]byte(doc), &got), doc)
	}
}

func TestLoadLabelFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "labels.yaml", "pairs:\n  - [CriticalVictim, MoveTo]\n  - {anchor: NeedAction, follow: Agreement}\n")

	pairs, err := LoadLabelFile(path)
	require.NoError(t, err)
	assert.Equal(t, []LabelPair{
		{Anchor: "CriticalVictim", Follow: "MoveTo"},
		{Anchor: "NeedAction", Follow: "Agreement"},
	}, pairs)
}

func TestLoadLabelFileEmpty(t *testing.T) {
	t.Parallel()

	pairs, err := LoadLabelFile(writeFile(t, "labels.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestLoadLabelFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadLabelFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDedupeKeepsFirst(t *testing.T) {
	t.Parallel()

	got := dedupe([]LabelPair{{"A", "B"}, {"B", "A"}, {"A", "B"}})
	assert.Equal(t, []LabelPair{{"A", "B"}, {"B", "A"}}, got)
	assert.Equal(t, "A->B", got[0].String())
}
