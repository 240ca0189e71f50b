package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := `# scheduler settings
APP_SECRET_KEY="file-secret"
export DATABASE_URL=postgres://localhost/scheduler
ALREADY_SET=from-file

not-a-pair
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ALREADY_SET", "from-env")
	os.Unsetenv("APP_SECRET_KEY")
	os.Unsetenv("DATABASE_URL")
	t.Cleanup(func() {
		os.Unsetenv("APP_SECRET_KEY")
		os.Unsetenv("DATABASE_URL")
	})

	LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, "file-secret", os.Getenv("APP_SECRET_KEY"))
	assert.Equal(t, "postgres://localhost/scheduler", os.Getenv("DATABASE_URL"))
	// The real environment always wins over file values.
	assert.Equal(t, "from-env", os.Getenv("ALREADY_SET"))
}
