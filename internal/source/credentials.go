package source

import (
	"encoding/base64"
	"fmt"
	"os"
)

// LoadServiceAccount resolves the service account key with the same
// precedence the dashboard has always used: inline JSON, then base64-encoded
// JSON, then a key file on disk.
func LoadServiceAccount(rawJSON, rawB64, file string) ([]byte, error) {
	if rawJSON != "" {
		return []byte(rawJSON), nil
	}
	if rawB64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(rawB64)
		if err != nil {
			return nil, fmt.Errorf("decode service account b64: %w", err)
		}
		return decoded, nil
	}
	data, err := os.ReadFile(file) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read service account file %s: %w", file, err)
	}
	return data, nil
}
