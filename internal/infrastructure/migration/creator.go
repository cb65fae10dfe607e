package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const fileTemplate = `-- {{.Name}} ({{.Direction}})
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

var (
	upFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)
	nonWordRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// File is a created migration pair
type File struct {
	Version     uint64
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// Create writes the next numbered up/down pair into dir.
// Numbers continue from the highest existing version with six digits.
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	var next uint64 = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	mf := &File{
		Version:     next,
		Name:        slug,
		Description: description,
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	data := map[string]string{
		"Name":        slug,
		"Description": description,
		"Timestamp":   now.Format(time.RFC3339),
	}
	data["Direction"] = "up"
	if err := writeTemplate(mf.UpPath, data); err != nil {
		return nil, err
	}
	data["Direction"] = "down"
	if err := writeTemplate(mf.DownPath, data); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeTemplate(path string, data map[string]string) error {
	tmpl := template.Must(template.New("migration").Parse(fileTemplate))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases name and collapses everything else to underscores.
func sanitizeName(name string) string {
	return strings.Trim(nonWordRun.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// Entry is one migration found on disk
type Entry struct {
	Version uint64
	Name    string
}

// List returns the migrations in dir ordered by version
func List(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		match := upFilePattern.FindStringSubmatch(f.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Version: version, Name: match[2]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}
