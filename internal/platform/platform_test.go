package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlatform(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writePlatform(t, `
name: remote
port_map:
  1: eth1
  2: eth2
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "remote", p.Name)
	assert.Equal(t, map[int]string{1: "eth1", 2: "eth2"}, p.PortMap)
	assert.False(t, p.RequiresPrivilege)
}

func TestLoadEmptyPortMapIsFatal(t *testing.T) {
	_, err := Load(writePlatform(t, "name: broken\nport_map: {}\n"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "port map is empty")
}

func TestLoadMissingPortMapIsFatal(t *testing.T) {
	_, err := Load(writePlatform(t, "name: broken\n"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestDefaultPlatform(t *testing.T) {
	p := Default()
	assert.Equal(t, "local", p.Name)
	assert.NotEmpty(t, p.PortMap)
	assert.True(t, p.RequiresPrivilege)
}

func TestCheckPrivilege(t *testing.T) {
	originalGeteuid := osGeteuid
	defer func() { osGeteuid = originalGeteuid }()

	p := &Platform{Name: "local", PortMap: map[int]string{1: "veth1"}, RequiresPrivilege: true}

	osGeteuid = func() int { return 0 }
	assert.NoError(t, p.CheckPrivilege(false))

	osGeteuid = func() int { return 1000 }
	var privErr *PrivilegeError
	require.ErrorAs(t, p.CheckPrivilege(false), &privErr)

	// Explicit override makes the check advisory.
	assert.NoError(t, p.CheckPrivilege(true))

	// Platforms without the requirement never check.
	p.RequiresPrivilege = false
	assert.NoError(t, p.CheckPrivilege(false))
}
