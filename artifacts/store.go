// Package artifacts persists the identifiers captured during network
// setup. One file per identifier, keyed by a symbolic name, so that a
// restarted run can skip stages whose artifact already exists.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact names. Each maps to a file underneath the store's base
// directory holding a single trimmed identifier.
const (
	NCNPubkey    = "ncn/ncn_pubkey.txt"
	TokenAddress = "vault/token_address.txt"
	VaultAddress = "vault/vault_address.txt"
)

// OperatorPubkey returns the artifact name for the i-th operator (1-based).
func OperatorPubkey(i int) string {
	return fmt.Sprintf("operators/operator%d-pubkey.txt", i)
}

// Expected returns every artifact name the validation stage requires,
// given [numOperators] operators.
func Expected(numOperators int) []string {
	names := []string{NCNPubkey, TokenAddress, VaultAddress}
	for i := 1; i <= numOperators; i++ {
		names = append(names, OperatorPubkey(i))
	}
	return names
}

// Store is a file-backed identifier store rooted at a base directory.
// It is only ever written by the single orchestrator process.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Path returns the file backing [name].
func (s *Store) Path(name string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(name))
}

// Put writes [id] as the sole content of the file backing [name],
// creating parent directories as needed. Writing the same name twice
// overwrites.
func (s *Store) Put(name, id string) error {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(id)+"\n"), 0o644); err != nil {
		return fmt.Errorf("couldn't write artifact %q: %w", name, err)
	}
	return nil
}

// Get reads the identifier stored under [name], trimmed. A missing or
// empty file reports ok == false, not an error.
func (s *Store) Get(name string) (id string, ok bool, err error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("couldn't read artifact %q: %w", name, err)
	}
	id = strings.TrimSpace(string(data))
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// Has reports whether [name] holds a non-empty identifier.
func (s *Store) Has(name string) bool {
	_, ok, err := s.Get(name)
	return err == nil && ok
}
