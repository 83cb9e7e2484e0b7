// Package vault overlays secrets kept in HashiCorp Vault onto the viper
// configuration.
package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"

	"eventspot/logger"
)

type Vault struct {
	SecretPath string
	*api.Client
}

func New(token, address, secretPath string) (*Vault, error) {
	config := &api.Config{
		Address: address,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("new: error initializing vault: %w", err)
	}

	client.SetToken(token)
	return &Vault{SecretPath: secretPath, Client: client}, nil
}

// Secrets reads the key/value pairs stored at SecretPath. Both kv version 1
// and version 2 layouts are understood.
func (v *Vault) Secrets(ctx context.Context) (map[string]string, error) {
	secret, err := v.Logical().Read(v.SecretPath)
	if err != nil {
		return nil, fmt.Errorf("secrets: unable to read %s: %w", v.SecretPath, err)
	}
	if secret == nil || secret.Data == nil {
		logger.Warnf(ctx, "vault: nothing stored at %s", v.SecretPath)
		return map[string]string{}, nil
	}

	data := secret.Data
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	out := make(map[string]string, len(data))
	for k, val := range data {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out, nil
}

// SecretReader is anything that can list secrets.
type SecretReader interface {
	Secrets(ctx context.Context) (map[string]string, error)
}

// Overlay copies each of keys found in the reader into set. A key is looked
// up by its dotted name first and then with dots replaced by underscores.
func Overlay(ctx context.Context, r SecretReader, keys []string, set func(key string, value interface{})) (int, error) {
	secrets, err := r.Secrets(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, k := range keys {
		val, ok := secrets[k]
		if !ok {
			val, ok = secrets[strings.ReplaceAll(k, ".", "_")]
		}
		if !ok || val == "" {
			continue
		}
		set(k, val)
		n++
	}
	logger.Infof(ctx, "vault: %d secrets loaded", n)
	return n, nil
}
