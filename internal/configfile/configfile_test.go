package configfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Addr    string         `json:"addr" yaml:"addr" toml:"addr"`
	Timeout timex.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
}

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDecode_Formats(t *testing.T) {
	cases := map[string]string{
		"c.json": `{"addr": ":1", "timeout": "3s"}`,
		"c.yaml": "addr: \":1\"\ntimeout: 3s\n",
		"c.YML":  "addr: \":1\"\ntimeout: 3s\n",
		"c.toml": "addr = \":1\"\ntimeout = \"3s\"\n",
	}
	for name, body := range cases {
		var s sample
		require.NoError(t, Decode(write(t, name, body), &s), name)
		assert.Equal(t, ":1", s.Addr, name)
		assert.Equal(t, 3*time.Second, s.Timeout.Duration, name)
	}
}

func TestDecode_Errors(t *testing.T) {
	var s sample

	err := Decode(filepath.Join(t.TempDir(), "missing.json"), &s)
	assert.ErrorContains(t, err, "read config file")

	err = Decode(write(t, "c.ini", "x"), &s)
	assert.ErrorContains(t, err, "unsupported config file format")

	err = Decode(write(t, "bad.json", "{"), &s)
	assert.ErrorContains(t, err, "parse bad.json")
}
