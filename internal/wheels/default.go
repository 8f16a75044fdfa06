package wheels

import "sync"

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the shared catalog holding the built-in wheel tables.
// The tables are validated on first use; a bad entry is a programming error
// and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Builtin()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Builtin builds a new catalog holding the built-in wheel tables.
func Builtin() (*Catalog, error) {
	c := NewCatalog()
	for _, def := range defaultRotors {
		if err := c.RegisterRotor(def); err != nil {
			return nil, err
		}
	}
	for _, def := range defaultReflectors {
		if err := c.RegisterReflector(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}
