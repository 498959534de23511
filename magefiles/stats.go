package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// Templates listing the absolute paths of a package's source files.
const (
	prodFilesTemplate = `{{range .GoFiles}}{{$.Dir}}/{{.}}{{"\n"}}{{end}}`
	testFilesTemplate = `{{range .TestGoFiles}}{{$.Dir}}/{{.}}{{"\n"}}{{end}}` +
		`{{range .XTestGoFiles}}{{$.Dir}}/{{.}}{{"\n"}}{{end}}`
)

// Stats prints one JSON record with Go line counts of the module packages
// (build tooling excluded) and the word count of the top-level Markdown files.
func Stats() error {
	prodLines, packages, err := countGoLines(prodFilesTemplate)
	if err != nil {
		return err
	}
	testLines, _, err := countGoLines(testFilesTemplate)
	if err != nil {
		return err
	}
	docWords, err := countWords("*.md")
	if err != nil {
		return err
	}

	line, err := json.Marshal(map[string]int{
		"go_packages": packages,
		"go_loc_prod": prodLines,
		"go_loc_test": testLines,
		"go_loc":      prodLines + testLines,
		"doc_wc":      docWords,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countGoLines sums the lines of the files go list prints for tmpl and
// reports how many packages contributed at least one file.
func countGoLines(tmpl string) (lines, packages int, err error) {
	out, err := sh.Output(binGo, "list", "-f", tmpl, "./...")
	if err != nil {
		return 0, 0, err
	}
	dirs := map[string]bool{}
	for path := range strings.SplitSeq(out, "\n") {
		if path == "" || strings.Contains(path, string(filepath.Separator)+"magefiles"+string(filepath.Separator)) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, 0, err
		}
		lines += bytes.Count(data, []byte{'\n'})
		dirs[filepath.Dir(path)] = true
	}
	return lines, len(dirs), nil
}

func countWords(pattern string) (int, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
