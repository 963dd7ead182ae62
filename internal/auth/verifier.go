package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fzdarsky/srp6a/pkg/srp"
)

// VerifierRecord is what the responder stores for one user. Salt and
// Verifier are base64-encoded in JSON. Fingerprint identifies the N and g
// the verifier was computed with; see GroupFingerprint.
type VerifierRecord struct {
	Username    string `json:"username"`
	Salt        []byte `json:"salt"`
	Verifier    []byte `json:"verifier"`
	Group       string `json:"group"`
	Hash        string `json:"hash"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Validate checks that all required fields are present.
func (r *VerifierRecord) Validate() error {
	switch {
	case r.Username == "":
		return fmt.Errorf("username is required in verifier record")
	case len(r.Salt) == 0:
		return fmt.Errorf("salt is required in verifier record for %q", r.Username)
	case len(r.Verifier) == 0:
		return fmt.Errorf("verifier is required in verifier record for %q", r.Username)
	case r.Group == "":
		return fmt.Errorf("group is required in verifier record for %q", r.Username)
	}
	return nil
}

// NewVerifierRecord draws a fresh salt and computes the verifier for the
// given credentials. A non-positive saltLength selects srp.DefaultSaltLength.
func NewVerifierRecord(coord *srp.Coordinator, params srp.Params, username, password string, saltLength int) (VerifierRecord, error) {
	if username == "" {
		return VerifierRecord{}, fmt.Errorf("username is required")
	}

	salt, err := coord.GenerateSalt(saltLength)
	if err != nil {
		return VerifierRecord{}, err
	}

	return VerifierRecord{
		Username: username,
		Salt:     salt,
		Verifier: coord.ComputeVerifier(username, password, salt),
		Group:       params.Group.Name,
		Hash:        params.HashName,
		Fingerprint: GroupFingerprint(coord.Engine()),
	}, nil
}

// GroupFingerprint returns the hex SHA-256 digest of N followed by g padded
// to the length of N. Two custom groups with the same name but different
// parameters get different fingerprints.
func GroupFingerprint(engine *srp.Engine) string {
	g := make([]byte, engine.NBytes())
	engine.G().FillBytes(g)

	h := sha256.New()
	h.Write(engine.N().Bytes())
	h.Write(g)
	return hex.EncodeToString(h.Sum(nil))
}

// verifierFile is the on-disk layout.
type verifierFile struct {
	Users map[string]VerifierRecord `json:"users"`
}

// VerifierStore keeps verifier records in a JSON file. Every change is
// written to disk before it becomes visible.
type VerifierStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]VerifierRecord
}

// LoadVerifierStore loads the verifier file at path. A missing file yields
// an empty store that is created on the first Put.
func LoadVerifierStore(path string) (*VerifierStore, error) {
	store := &VerifierStore{
		path:    filepath.Clean(path),
		records: make(map[string]VerifierRecord),
	}

	data, err := os.ReadFile(store.path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read verifier file: %w", err)
	}

	var file verifierFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse verifier file: %w", err)
	}

	for name, rec := range file.Users {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if rec.Username != name {
			return nil, fmt.Errorf("verifier record %q is stored under %q", rec.Username, name)
		}
		store.records[name] = rec
	}

	return store, nil
}

// Path returns the file backing the store.
func (s *VerifierStore) Path() string {
	return s.path
}

// Lookup returns the record for username, or ErrUnknownUser.
func (s *VerifierStore) Lookup(username string) (VerifierRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[username]
	if !ok {
		return VerifierRecord{}, ErrUnknownUser
	}
	return rec, nil
}

// Usernames returns all enrolled usernames, sorted.
func (s *VerifierStore) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Put adds or replaces a record and saves the file.
func (s *VerifierStore) Put(rec VerifierRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.records[rec.Username]
	s.records[rec.Username] = rec
	if err := s.save(); err != nil {
		if existed {
			s.records[rec.Username] = previous
		} else {
			delete(s.records, rec.Username)
		}
		return err
	}
	return nil
}

// Delete removes a record and saves the file. Deleting an unknown user
// returns ErrUnknownUser.
func (s *VerifierStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.records[username]
	if !ok {
		return ErrUnknownUser
	}
	delete(s.records, username)
	if err := s.save(); err != nil {
		s.records[username] = previous
		return err
	}
	return nil
}

// save writes the records to a temporary file and renames it over the
// store path, so readers never observe a partial file. Caller holds s.mu.
func (s *VerifierStore) save() error {
	data, err := json.MarshalIndent(verifierFile{Users: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verifier file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create verifier directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".verifiers-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary verifier file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set verifier file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write verifier file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write verifier file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace verifier file: %w", err)
	}
	return nil
}
