package session

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// LibraryOptions holds library-specific settings, usually decoded from the
// "library.options" section of a config file.
type LibraryOptions map[string]any

// LibraryFactory creates a Library from its options.
// Each library registers its own factory function.
type LibraryFactory func(opts LibraryOptions) (Library, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]LibraryFactory)
)

// Register adds a library factory to the registry.
// Libraries should call this in their init() function.
// Panics if a library with the same name is already registered.
//
// Example:
//
//	func init() {
//	    session.Register("sim", func(opts session.LibraryOptions) (session.Library, error) {
//	        libOpts, err := optionsFrom(opts)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return NewLibrary(libOpts...), nil
//	    })
//	}
func Register(name string, factory LibraryFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("session library %q already registered", name))
	}
	registry[name] = factory
}

// Open creates a Library using the named factory.
// Returns ErrUnknownLibrary if the name is not registered.
func Open(name string, opts LibraryOptions) (Library, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLibrary, name)
	}
	return factory(opts)
}

// Available returns the names of all registered libraries, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a library is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[name]
	return ok
}

// Unregister removes a library from the registry.
// This is primarily useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, name)
}

// GetString retrieves a string option, returning defaultVal if not set.
func (o LibraryOptions) GetString(key, defaultVal string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return defaultVal
}

// GetBool retrieves a bool option, returning defaultVal if not set.
func (o LibraryOptions) GetBool(key string, defaultVal bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return defaultVal
}

// GetDuration retrieves a duration option. Accepted forms are a
// time.Duration, a string such as "250ms", or a whole number of
// milliseconds (as decoded from YAML, TOML or JSON). Anything else yields
// defaultVal.
func (o LibraryOptions) GetDuration(key string, defaultVal time.Duration) time.Duration {
	switch v := o[key].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case uint64:
		return time.Duration(v) * time.Millisecond
	case float64:
		if v == math.Trunc(v) {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultVal
}

// GetMap retrieves a nested map option, or nil.
func (o LibraryOptions) GetMap(key string) map[string]any {
	if v, ok := o[key].(map[string]any); ok {
		return v
	}
	return nil
}
