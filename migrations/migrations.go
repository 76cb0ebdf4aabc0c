// Package migrations содержит SQL-схему сервиса
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
