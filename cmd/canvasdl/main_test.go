package main

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"canvasdl/pkg/auth"
	"canvasdl/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credentialManager(t *testing.T, accounts ...*auth.Account) *auth.Manager {
	t.Helper()
	t.Setenv(auth.EnvAPIURL, "")
	t.Setenv(auth.EnvAPIKey, "")
	manager, _ := auth.NewMockManager()
	for _, account := range accounts {
		require.NoError(t, manager.Store(account))
	}
	return manager
}

func TestResolveCredentialsPrefersConfiguration(t *testing.T) {
	manager := credentialManager(t, &auth.Account{APIURL: "https://stored.example.edu", APIKey: "stored"})
	cfg := config.DefaultConfig()
	cfg.Canvas.APIURL = "https://canvas.example.edu"
	cfg.Canvas.APIKey = "configured"

	source, err := resolveCredentials(cfg, manager, "")
	require.NoError(t, err)
	assert.Equal(t, "configuration", source)
	assert.Equal(t, "configured", cfg.Canvas.APIKey)
}

func TestResolveCredentialsFallsBackToStore(t *testing.T) {
	manager := credentialManager(t, &auth.Account{APIURL: "https://stored.example.edu", APIKey: "stored"})

	cfg := config.DefaultConfig()
	source, err := resolveCredentials(cfg, manager, "")
	require.NoError(t, err)
	assert.Equal(t, "profile default", source)
	assert.Equal(t, "https://stored.example.edu", cfg.Canvas.APIURL)
	assert.Equal(t, "stored", cfg.Canvas.APIKey)

	// An explicit URL is kept; only the token comes from the store
	cfg = config.DefaultConfig()
	cfg.Canvas.APIURL = "https://flag.example.edu"
	_, err = resolveCredentials(cfg, manager, "")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.edu", cfg.Canvas.APIURL)
	assert.Equal(t, "stored", cfg.Canvas.APIKey)
}

func TestResolveCredentialsProfile(t *testing.T) {
	manager := credentialManager(t,
		&auth.Account{APIURL: "https://default.example.edu", APIKey: "one"},
		&auth.Account{Name: "summer", APIURL: "https://summer.example.edu", APIKey: "two"},
	)

	cfg := config.DefaultConfig()
	cfg.Canvas.APIURL = "https://configured.example.edu"
	cfg.Canvas.APIKey = "configured"

	source, err := resolveCredentials(cfg, manager, "summer")
	require.NoError(t, err)
	assert.Equal(t, "profile summer", source)
	assert.Equal(t, "https://summer.example.edu", cfg.Canvas.APIURL)
	assert.Equal(t, "two", cfg.Canvas.APIKey)

	_, err = resolveCredentials(config.DefaultConfig(), manager, "missing")
	assert.ErrorIs(t, err, auth.ErrCredentialsNotFound)
}

func TestResolveCredentialsNothingStored(t *testing.T) {
	manager := credentialManager(t)
	_, err := resolveCredentials(config.DefaultConfig(), manager, "")
	assert.ErrorIs(t, err, auth.ErrCredentialsNotFound)
}

func TestParseCourseIDs(t *testing.T) {
	ids, err := parseCourseIDs([]string{"12", "7"})
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 7}, ids)

	for _, bad := range []string{"abc", "0", "-3", "1.5"} {
		_, err := parseCourseIDs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestMaskedConfigLeavesOriginal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Canvas.APIKey = "1234~abcdefghijkl"

	display := maskedConfig(cfg)
	assert.Equal(t, "1234...ijkl", display.Canvas.APIKey)
	assert.Equal(t, "1234~abcdefghijkl", cfg.Canvas.APIKey)
}

func TestCheckConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.SavePath = filepath.Join(t.TempDir(), "courses")

	problems, warnings := checkConfig(cfg)
	assert.Empty(t, problems)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "credentials incomplete")

	cfg.Canvas.APIURL = "https://canvas.example.edu"
	cfg.Canvas.APIKey = "token"
	problems, warnings = checkConfig(cfg)
	assert.Empty(t, problems)
	assert.Empty(t, warnings)
}

func TestExampleConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvasdl.yaml")
	configFile = path
	t.Cleanup(func() { configFile = "" })

	cmd := initCmd
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, runConfigInit(cmd, nil))

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, "https://canvas.instructure.com", cfg.Canvas.APIURL)
	assert.Equal(t, "./courses", cfg.Output.SavePath)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, runConfigInit(cmd, nil), "existing file is not overwritten")
}

func TestPrompterDefaults(t *testing.T) {
	var out bytes.Buffer
	p := &prompter{in: bufio.NewReader(strings.NewReader("\nhttps://canvas.example.edu\n")), out: &out}

	answer, err := p.ask("Save path", "./courses")
	require.NoError(t, err)
	assert.Equal(t, "./courses", answer)

	answer, err = p.ask("Canvas URL", "")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", answer)
	assert.Contains(t, out.String(), "Save path [./courses]: ")

	_, err = p.ask("Anything", "")
	assert.Error(t, err, "reading past the end of input")
}

func TestPrompterDoesNotReadAhead(t *testing.T) {
	src := strings.NewReader("https://canvas.example.edu\nsecret-token\n")
	var out bytes.Buffer
	p := &prompter{in: bufio.NewReader(byteReader{r: src}), out: &out}

	answer, err := p.ask("Canvas URL", "")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", answer)
	assert.Equal(t, len("secret-token\n"), src.Len(), "the next line stays unread")

	token, err := p.secret("Access token")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}
