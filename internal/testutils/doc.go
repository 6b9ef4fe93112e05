// Package testutils holds fixtures shared by the package tests: valid
// block documents and memories, migrated SQLite databases and signed
// test tokens.
package testutils
