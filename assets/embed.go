// assets/embed.go
//
// Embedded files the server ships with:
//   - migrations/*.sql: schema, applied in lexical order by internal/database.
//   - rules.txt: rules text served by GET /rules (blank and # lines skipped).

package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql rules.txt
var FS embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, "migrations")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			out = append(out, "migrations/"+e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Rules returns the rule lines, skipping blanks and # comments.
func Rules() ([]string, error) {
	f, err := FS.Open("rules.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
