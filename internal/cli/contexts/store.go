// Package contexts keeps named idreconctl server connections so that
// --server does not have to be repeated on every call.
package contexts

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the directory under the XDG config home.
	DirName = "idreconctl"
	// FileName is the contexts file inside DirName.
	FileName = "contexts.yaml"

	filePermissions = 0600
	dirPermissions  = 0700
)

var (
	// ErrNoCurrentContext indicates no context is currently set.
	ErrNoCurrentContext = errors.New("no current context set")
	// ErrContextNotFound indicates the requested context doesn't exist.
	ErrContextNotFound = errors.New("context not found")
)

// Context is one idrecon server.
type Context struct {
	ServerURL string `yaml:"server_url" json:"server_url"`

	// Output overrides the default output format for this server.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

type file struct {
	Current  string              `yaml:"current"`
	Contexts map[string]*Context `yaml:"contexts"`
}

// Store reads and writes the contexts file.
type Store struct {
	path string
	data file
}

// Open loads the contexts file from the XDG config home. A missing file
// yields an empty store.
func Open() (*Store, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return OpenPath(filepath.Join(configHome, DirName, FileName))
}

// OpenPath loads the contexts file at path.
func OpenPath(path string) (*Store, error) {
	s := &Store{path: path, data: file{Contexts: make(map[string]*Context)}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.data.Contexts == nil {
		s.data.Contexts = make(map[string]*Context)
	}
	return s, nil
}

// Path returns the contexts file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	raw, err := yaml.Marshal(&s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, filePermissions)
}

// Current returns the active context and its name.
func (s *Store) Current() (string, *Context, error) {
	if s.data.Current == "" {
		return "", nil, ErrNoCurrentContext
	}
	ctx, ok := s.data.Contexts[s.data.Current]
	if !ok {
		return "", nil, ErrContextNotFound
	}
	return s.data.Current, ctx, nil
}

// Get returns a context by name.
func (s *Store) Get(name string) (*Context, error) {
	ctx, ok := s.data.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// Names returns all context names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.data.Contexts))
	for name := range s.data.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set creates or replaces a context. The first context becomes current.
func (s *Store) Set(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	serverURL, err := NormalizeURL(ctx.ServerURL)
	if err != nil {
		return err
	}
	ctx.ServerURL = serverURL

	s.data.Contexts[name] = ctx
	if s.data.Current == "" {
		s.data.Current = name
	}
	return s.save()
}

// Use switches the current context.
func (s *Store) Use(name string) error {
	if _, ok := s.data.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.data.Current = name
	return s.save()
}

// Delete removes a context, clearing the current one if it was removed.
func (s *Store) Delete(name string) error {
	if _, ok := s.data.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	delete(s.data.Contexts, name)
	if s.data.Current == name {
		s.data.Current = ""
	}
	return s.save()
}

// NormalizeURL checks that raw is an http(s) URL and strips a trailing
// slash. A bare host:port gets the http scheme.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("server URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
