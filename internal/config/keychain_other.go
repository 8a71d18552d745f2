//go:build !darwin

package config

import (
	"fmt"
	"path/filepath"
)

func secretsFilePath() string {
	return filepath.Join(defaultDataDir(), "secrets.yaml")
}

func secretsFile() sectionFile {
	return sectionFile{path: secretsFilePath(), perm: 0o600}
}

func keychainGet(service, account string) ([]byte, error) {
	v, ok, err := secretsFile().get(service, account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no secret for %s/%s", service, account)
	}
	return []byte(fmt.Sprint(v)), nil
}

func keychainSet(service, account, value string) error {
	return secretsFile().set(service, account, value)
}
