package deploy

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePIDFile(t *testing.T) {
	tmpDir := t.TempDir()

	testCases := []struct {
		description string
		dir         string
		mode        os.FileMode
		expectedErr string
	}{
		{description: "write pid file", dir: tmpDir, mode: 0644},
		{description: "owner only", dir: tmpDir, mode: 0600},
		{description: "dir does not exist", dir: filepath.Join(tmpDir, "foo"), mode: 0644, expectedErr: "no such file or directory"},
	}

	for _, test := range testCases {
		pid, err := WritePIDFile(test.dir, test.mode)
		if test.expectedErr != "" {
			require.Error(t, err, test.description)
			assert.Contains(t, err.Error(), test.expectedErr, test.description)
			continue
		}
		require.NoError(t, err, test.description)

		filename := filepath.Join(test.dir, strconv.Itoa(pid)+".pid")
		content, err := os.ReadFile(filename)
		require.NoError(t, err, test.description)
		assert.Equal(t, strconv.Itoa(pid), string(content), test.description)

		stat, err := os.Stat(filename)
		require.NoError(t, err, test.description)
		assert.Equal(t, test.mode, stat.Mode(), test.description)
	}
}
