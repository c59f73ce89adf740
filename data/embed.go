// Package data embeds the SQL that initializes a fresh MariaDB for
// container-based runs. The service itself auto-migrates; these scripts
// exist so a database can be prepared before the service ever connects.
package data

import (
	_ "embed"
)

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string
