// Package database embed dosyası — migration SQL dosyalarını binary'ye gömer.
// Deploy edilen binary yanında migration dosyalarına ihtiyaç duymaz.
package database

import (
	"embed"
	"io/fs"
)

// EmbeddedMigrations, migrations/ dizinindeki SQL dosyalarını içerir.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS

// MigrationsFS, embedded migration'ları SQL dosyaları kökte olacak şekilde
// döner — New() bu kökte .sql dosyaları bekler.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(EmbeddedMigrations, "migrations")
	if err != nil {
		// go:embed pattern'i derlemede garanti eder; buraya düşülmez.
		panic(err)
	}
	return sub
}
