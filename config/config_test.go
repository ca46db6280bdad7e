package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
session:
  cache_location: /var/cache/streamkit
  settings_location: /etc/streamkit
  user_agent: streamkit-test
  appkey_path: /etc/streamkit/appkey.key
library:
  name: sim
  options:
    latency: 25ms
    accounts:
      ada:
        password: lovelace
        display_name: Ada Lovelace
poll:
  default: 500ms
  max: 10s
logout:
  after_iterations: 0
log:
  level: debug
  format: json
`

const tomlConfig = `
[session]
cache_location = "/var/cache/streamkit"
settings_location = "/etc/streamkit"
user_agent = "streamkit-test"
appkey_path = "/etc/streamkit/appkey.key"

[library]
name = "sim"

[library.options]
latency = "25ms"

[library.options.accounts.ada]
password = "lovelace"
display_name = "Ada Lovelace"

[poll]
default = "500ms"
max = "10s"

[logout]
after_iterations = 0

[log]
level = "debug"
format = "json"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "tmp", cfg.Session.CacheLocation)
	assert.Equal(t, "tmp", cfg.Session.SettingsLocation)
	assert.Equal(t, "streamkit-session-example", cfg.Session.UserAgent)
	assert.Equal(t, "sim", cfg.Library.Name)
	assert.Equal(t, time.Second, cfg.Poll.Default)
	assert.Equal(t, 30*time.Second, cfg.Poll.Max)
	assert.Equal(t, 15, cfg.Logout.AfterIterations)
	assert.Equal(t, LevelInfo, cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "streamkit.yaml", content: yamlConfig},
		{name: "yml", file: "streamkit.yml", content: yamlConfig},
		{name: "toml", file: "streamkit.toml", content: tomlConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "/var/cache/streamkit", cfg.Session.CacheLocation)
			assert.Equal(t, "/etc/streamkit", cfg.Session.SettingsLocation)
			assert.Equal(t, "streamkit-test", cfg.Session.UserAgent)
			assert.Equal(t, "/etc/streamkit/appkey.key", cfg.Session.AppKeyPath)
			assert.Equal(t, "sim", cfg.Library.Name)
			assert.Equal(t, "25ms", cfg.Library.Options["latency"])
			assert.Equal(t, 500*time.Millisecond, cfg.Poll.Default)
			assert.Equal(t, 10*time.Second, cfg.Poll.Max)
			assert.Equal(t, 0, cfg.Logout.AfterIterations)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "json", cfg.Log.Format)

			accounts, ok := cfg.Library.Options["accounts"].(map[string]any)
			require.True(t, ok, "accounts decode as a nested map")
			ada, ok := accounts["ada"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "lovelace", ada["password"])
		})
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "partial.yaml", "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "tmp", cfg.Session.CacheLocation)
	assert.Equal(t, 15, cfg.Logout.AfterIterations)
	assert.Equal(t, time.Second, cfg.Poll.Default)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/streamkit.yaml")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "streamkit.ini", "x=1"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "session: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.toml", "[session\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "invalid.yaml", "log:\n  level: loud\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "upper case level", mutate: func(c *Config) { c.Log.Level = "DEBUG" }},
		{name: "missing library", mutate: func(c *Config) { c.Library.Name = "" }, errMsg: "library.name"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "trace" }, errMsg: "log.level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, errMsg: "log.format"},
		{name: "negative default poll", mutate: func(c *Config) { c.Poll.Default = -time.Second }, errMsg: "poll.default"},
		{name: "zero default poll", mutate: func(c *Config) { c.Poll.Default = 0 }, errMsg: "poll.default"},
		{name: "negative max poll", mutate: func(c *Config) { c.Poll.Max = -time.Second }, errMsg: "poll.max"},
		{name: "default above max", mutate: func(c *Config) { c.Poll.Default = time.Minute }, errMsg: "exceeds"},
		{name: "uncapped poll", mutate: func(c *Config) { c.Poll.Max = 0; c.Poll.Default = time.Hour }},
		{name: "negative logout", mutate: func(c *Config) { c.Logout.AfterIterations = -1 }, errMsg: "after_iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STREAMKIT_LIBRARY", "other")
	t.Setenv("STREAMKIT_APPKEY", "/keys/app.key")
	t.Setenv("STREAMKIT_CACHE_LOCATION", "/cache")
	t.Setenv("STREAMKIT_SETTINGS_LOCATION", "/settings")
	t.Setenv("STREAMKIT_LOG_LEVEL", "error")
	t.Setenv("STREAMKIT_LOGOUT_AFTER", "3")
	t.Setenv("STREAMKIT_POLL_DEFAULT", "250ms")

	cfg := Default()
	cfg.LoadFromEnv()

	assert.Equal(t, "other", cfg.Library.Name)
	assert.Equal(t, "/keys/app.key", cfg.Session.AppKeyPath)
	assert.Equal(t, "/cache", cfg.Session.CacheLocation)
	assert.Equal(t, "/settings", cfg.Session.SettingsLocation)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Logout.AfterIterations)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Default)
}

func TestLoadFromEnv_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("STREAMKIT_LOGOUT_AFTER", "many")
	t.Setenv("STREAMKIT_POLL_DEFAULT", "soon")

	cfg := Default()
	cfg.LoadFromEnv()

	assert.Equal(t, 15, cfg.Logout.AfterIterations)
	assert.Equal(t, time.Second, cfg.Poll.Default)
}

func TestLogConfig_NewLogger(t *testing.T) {
	t.Run("text at info drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LogConfig{Level: "info", Format: "text"}.NewLogger(&buf)

		logger.Debug("hidden")
		logger.Info("shown", "key", "value")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=shown")
		assert.Contains(t, out, "key=value")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf)

		logger.Debug("traced", "n", 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "traced", entry["msg"])
		assert.Equal(t, "DEBUG", entry["level"])
	})
}

func TestSchema(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	for _, key := range []string{"session", "cache_location", "library", "after_iterations", "level"} {
		assert.Contains(t, out, `"`+key+`"`)
	}

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "streamkit configuration", parsed["title"])
}

func schemaProperty(t *testing.T, schema map[string]any, path ...string) map[string]any {
	t.Helper()
	node := schema
	for _, name := range path {
		props, ok := node["properties"].(map[string]any)
		require.True(t, ok, "no properties above %q", name)
		node, ok = props[name].(map[string]any)
		require.True(t, ok, "missing property %q", name)
	}
	return node
}

func TestSchema_DurationsAreStrings(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	for _, field := range []string{"default", "max"} {
		prop := schemaProperty(t, schema, "poll", field)
		assert.Equal(t, "string", prop["type"], "poll.%s", field)
		assert.Equal(t, "duration", prop["format"], "poll.%s", field)

		pattern, ok := prop["pattern"].(string)
		require.True(t, ok)
		re := regexp.MustCompile(pattern)
		for _, valid := range []string{"500ms", "1s", "30s", "1m30s", "1.5h", "0"} {
			assert.True(t, re.MatchString(valid), "%q should match", valid)
			_, err := time.ParseDuration(valid)
			assert.NoError(t, err, "%q should parse", valid)
		}
		for _, invalid := range []string{"500", "fast", ""} {
			assert.False(t, re.MatchString(invalid), "%q should not match", invalid)
		}
	}
}

func TestSchema_NoRequiredFields(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	var walk func(path string, node map[string]any)
	walk = func(path string, node map[string]any) {
		assert.NotContains(t, node, "required", "%s must not require fields", path)
		props, _ := node["properties"].(map[string]any)
		for name, child := range props {
			if m, ok := child.(map[string]any); ok {
				walk(path+"."+name, m)
			}
		}
	}
	walk("config", schema)

	// A file that sets a single field is valid and loads.
	cfg, err := Load(writeFile(t, "partial.yaml", "poll:\n  default: 250ms\n"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Default)
	assert.Equal(t, 30*time.Second, cfg.Poll.Max)
}
