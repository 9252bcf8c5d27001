package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Institution string `json:"institution"`
	Username    string `json:"username"`
	Rate        int    `json:"rate"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "sis.json5"), []byte(`{
		// comments and trailing commas are allowed
		institution: "valley",
		username: "student",
		rate: 2,
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "sis.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{Institution: "valley", Username: "student", Rate: 2}, cfg)

	err = os.WriteFile(filepath.Join(dir, "sis.local.json5"), []byte(`{ username: "override" }`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err = ReadConfig[testConfig](filepath.Join(dir, "sis.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{Institution: "valley", Username: "override", Rate: 2}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SIS_TEST_USER", "from-env")

	err := os.WriteFile(filepath.Join(dir, "sis.json5"), []byte(`{ username: "${SIS_TEST_USER}", rate: 1 }`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "sis.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{Username: "from-env", Rate: 1}, cfg)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "sis.local.json5"), []byte(`{ institution: "valley" }`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "sis.json5"))
	require.NoError(t, err)
	require.Equal(t, "valley", cfg.Institution)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "dir/sis.local.json5", localName("dir/sis.json5"))
	require.Equal(t, "noext.local", localName("noext"))
	require.Equal(t, filepath.Join("v1.2", "noext.local"), localName(filepath.Join("v1.2", "noext")))
}

func TestSplitExt(t *testing.T) {
	table := []struct {
		input  string
		prefix string
		ext    string
	}{
		{input: "sis.json5", prefix: "sis", ext: "json5"},
		{input: "sis.local.json5", prefix: "sis.local", ext: "json5"},
		{input: "noext", prefix: "noext", ext: ""},
	}

	for _, row := range table {
		prefix, ext := splitExt(row.input)
		require.Equal(t, row.prefix, prefix)
		require.Equal(t, row.ext, ext)
	}
}
