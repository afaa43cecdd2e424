//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const migrationsDir = "./internal/adapters/sqlite/migrations"

// Dbup runs dbmate to apply the journal migrations to $DB_PATH.
// The server also applies them on start, so this is only needed for
// databases managed outside the server.
func Dbup() error {
	if _, err := exec.LookPath("dbmate"); err != nil {
		fmt.Println(">> dbmate not found; install with:")
		fmt.Println("   go install github.com/amacneil/dbmate/v2@latest")
		return err
	}
	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		dsn = "churn.db"
	}
	fmt.Println(">> dbmate up", dsn)
	return sh.Run("dbmate", "--url", "sqlite:"+dsn, "--migrations-dir", migrationsDir, "--no-dump-schema", "up")
}

// Build tidies deps, then compiles to ./bin/churn-server.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building server binary...")
	return sh.Run("go", "build", "-o", "bin/churn-server", "./cmd/server")
}

// Run builds then executes the binary.
func Run() error {
	mg.Deps(Build)
	fmt.Println(">> Starting server on :8080 ...")
	return sh.Run("./bin/churn-server")
}

// Dev starts the server via go run against a local prediction backend.
func Dev() error {
	fmt.Println(">> Dev mode: go run ./cmd/server ...")
	cmd := exec.Command("go", "run", "./cmd/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PORT=8080", "DB_PATH=churn.db")
	return cmd.Run()
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.Run("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts and the local SQLite journal.
func Clean() error {
	fmt.Println(">> Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	if err := os.Remove("churn.db"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Install builds and installs the binary to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.Run("go", "install", "./cmd/server")
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
