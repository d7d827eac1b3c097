// Package all wires the built-in storage backends into the storage factory.
//
// Importing it for side effects registers the "postgres", "mysql", "mssql"
// and "sqlite" kinds:
//
//	import _ "salesetl/internal/storage/all"
//
// A binary that needs only a subset can import the backend packages
// directly instead.
package all

import (
	_ "salesetl/internal/storage/mssql"
	_ "salesetl/internal/storage/mysql"
	_ "salesetl/internal/storage/postgres"
	_ "salesetl/internal/storage/sqlite"
)
