package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

type migrationFile struct {
	name    string
	version string
	body    string
}

// ValidateDir checks every .sql file in dir: the version prefix must be a
// real UTC timestamp, versions must be unique, and the goose Up section must
// precede the Down section.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	files, err := readMigrationFiles(dir)
	if err != nil {
		return err
	}

	seen := make(map[string]string, len(files))
	for _, f := range files {
		if prev, ok := seen[f.version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", f.version, prev, f.name)
		}
		seen[f.version] = f.name

		if err := f.validate(); err != nil {
			return err
		}
	}
	return nil
}

func readMigrationFiles(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", e.Name(), err)
		}
		files = append(files, migrationFile{name: e.Name(), version: m[1], body: string(b)})
	}
	return files, nil
}

func (f migrationFile) validate() error {
	if _, err := time.Parse(versionLayout, f.version); err != nil {
		return fmt.Errorf("migration %q has version %s that is not a timestamp", f.name, f.version)
	}

	up := strings.Index(f.body, upMarker)
	down := strings.Index(f.body, downMarker)
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing %q", f.name, upMarker)
	case down < 0:
		return fmt.Errorf("migration %q missing %q", f.name, downMarker)
	case down < up:
		return fmt.Errorf("migration %q has %q before %q", f.name, downMarker, upMarker)
	}
	return nil
}
