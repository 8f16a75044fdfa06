package cipher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RowanDark/inop/internal/wheels"
)

// Profile is a named, reusable set of session settings and pipeline flags.
type Profile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Settings    Settings `json:"settings"`
	Flags       Flags    `json:"flags"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ProfileStore keeps profiles in memory and, when storePath is set, as one
// JSON file per profile. Profile files hold master keys and are written
// owner-readable only.
type ProfileStore struct {
	profiles  map[string]*Profile
	storePath string
	catalog   *wheels.Catalog
	mu        sync.RWMutex
}

// NewProfileStore creates a store. An empty storePath keeps profiles in
// memory only; a nil catalog validates against the built-in wheels.
func NewProfileStore(storePath string, catalog *wheels.Catalog) *ProfileStore {
	if catalog == nil {
		catalog = wheels.Default()
	}
	return &ProfileStore{
		profiles:  make(map[string]*Profile),
		storePath: storePath,
		catalog:   catalog,
	}
}

// Save validates and stores a profile.
func (ps *ProfileStore) Save(profile *Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := profile.Settings.Validate(ps.catalog); err != nil {
		return fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	if err := profile.Flags.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", profile.Name, err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	if profile.CreatedAt == "" {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	ps.profiles[profile.Name] = profile

	if ps.storePath != "" {
		return ps.persist(profile)
	}
	return nil
}

// Get retrieves a profile by name.
func (ps *ProfileStore) Get(name string) (*Profile, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profile, exists := ps.profiles[name]
	return profile, exists
}

// List returns all profiles ordered by name.
func (ps *ProfileStore) List() []*Profile {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profiles := make([]*Profile, 0, len(ps.profiles))
	for _, profile := range ps.profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

// Delete removes a profile from memory and disk.
func (ps *ProfileStore) Delete(name string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.profiles, name)

	if ps.storePath != "" {
		path := filepath.Join(ps.storePath, sanitizeFilename(name)+".json")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete profile file: %w", err)
		}
	}
	return nil
}

// Load reads every profile file from the store path. Files that no longer
// validate against the catalog are rejected.
func (ps *ProfileStore) Load() error {
	if ps.storePath == "" {
		return nil
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err := os.MkdirAll(ps.storePath, 0o700); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}
	entries, err := os.ReadDir(ps.storePath)
	if err != nil {
		return fmt.Errorf("failed to read profiles directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ps.storePath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read profile %s: %w", entry.Name(), err)
		}
		var profile Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("failed to parse profile %s: %w", entry.Name(), err)
		}
		if err := profile.Settings.Validate(ps.catalog); err != nil {
			return fmt.Errorf("profile %s: %w", entry.Name(), err)
		}
		ps.profiles[profile.Name] = &profile
	}
	return nil
}

// Search finds profiles whose name, description, suite or tags contain
// query, ignoring case.
func (ps *ProfileStore) Search(query string) []*Profile {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	q := strings.ToLower(query)
	match := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	results := make([]*Profile, 0)
	for _, profile := range ps.profiles {
		if match(profile.Name) || match(profile.Description) || match(profile.Settings.Suite) {
			results = append(results, profile)
			continue
		}
		for _, tag := range profile.Tags {
			if match(tag) {
				results = append(results, profile)
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func (ps *ProfileStore) persist(profile *Profile) error {
	if err := os.MkdirAll(ps.storePath, 0o700); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	path := filepath.Join(ps.storePath, sanitizeFilename(profile.Name)+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}

// sanitizeFilename keeps letters, digits, dash and underscore; spaces become
// underscores.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "profile"
	}
	return b.String()
}
