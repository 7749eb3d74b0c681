// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// MigrationsDir is the directory inside Migrations holding goose migrations for every driver.
const MigrationsDir = "migrations"

// MySQLMigrationsDir holds migrations applied only on MySQL, after MigrationsDir.
// Versions are numbered together with MigrationsDir.
const MySQLMigrationsDir = "migrations/mysql"

// Migrations contains all SQL migration files.
//
//go:embed migrations/*.sql migrations/mysql/*.sql
var Migrations embed.FS
