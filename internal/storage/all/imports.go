// Package all wires the built-in storage backends into the storage
// factory. It exists purely for side effects: a blank import runs each
// backend's init, which registers its factory. Binaries that want
// database sinks import it once:
//
//	import _ "flightetl/internal/storage/all"
//
// making the kinds "sqlite" and "postgres" available through storage.New.
package all

import (
	_ "flightetl/internal/storage/postgres"
	_ "flightetl/internal/storage/sqlite"
)
