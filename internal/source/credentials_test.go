package source

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServiceAccount(t *testing.T) {
	keyJSON := `{"type":"service_account","client_email":"svc@example.iam.gserviceaccount.com"}`

	t.Run("inline_json_wins", func(t *testing.T) {
		got, err := LoadServiceAccount(keyJSON, "ignored", "ignored")
		require.NoError(t, err)
		assert.Equal(t, []byte(keyJSON), got)
	})

	t.Run("base64_decoded", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte(keyJSON))
		got, err := LoadServiceAccount("", encoded, "ignored")
		require.NoError(t, err)
		assert.Equal(t, []byte(keyJSON), got)
	})

	t.Run("invalid_base64", func(t *testing.T) {
		_, err := LoadServiceAccount("", "not base64!!", "ignored")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode service account b64")
	})

	t.Run("file_fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creds.json")
		require.NoError(t, os.WriteFile(path, []byte(keyJSON), 0600))

		got, err := LoadServiceAccount("", "", path)
		require.NoError(t, err)
		assert.Equal(t, []byte(keyJSON), got)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadServiceAccount("", "", filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
