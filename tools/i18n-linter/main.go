// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the console's locale files against the source tree. It
// scans the Go code for message IDs, reports IDs missing from a locale and IDs
// no code refers to, and lists string literals that may need translating.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Location stores the file and line number of a found string.
type Location struct {
	Filepath string
	Line     int
}

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

// Report is the outcome of one lint run.
type Report struct {
	// Undefined holds IDs used in code but absent from the primary locale.
	Undefined []string
	// Orphaned holds primary-locale IDs no code refers to.
	Orphaned []string
	// Missing maps each secondary locale file to the primary IDs it lacks.
	Missing map[string][]string
	// Untranslated maps literals that look user-facing to where they occur.
	Untranslated map[string][]Location
}

// Failed reports whether the run found errors, as opposed to warnings.
func (r Report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	report, err := lint(projectRoot, filepath.Join(projectRoot, localesDir), primaryLocale)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	printReport(os.Stdout, report)
	if report.Failed() {
		os.Exit(1)
	}
}

func lint(root, locales, primary string) (Report, error) {
	report := Report{Missing: map[string][]string{}}

	usedKeys, usedPrefixes, err := findUsedKeys(root)
	if err != nil {
		return report, fmt.Errorf("error finding used keys: %w", err)
	}
	primaryKeys, err := loadKeysFromLocale(filepath.Join(locales, primary))
	if err != nil {
		return report, fmt.Errorf("error loading primary locale '%s': %w", primary, err)
	}

	for key := range usedKeys {
		if _, ok := primaryKeys[key]; !ok && !isPrefix(key, primaryKeys) {
			report.Undefined = append(report.Undefined, key)
		}
	}
	sort.Strings(report.Undefined)

	for key := range primaryKeys {
		if _, ok := usedKeys[key]; ok {
			continue
		}
		if coveredByPrefix(key, usedPrefixes) {
			continue
		}
		report.Orphaned = append(report.Orphaned, key)
	}
	sort.Strings(report.Orphaned)

	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return report, fmt.Errorf("error finding locale files: %w", err)
	}
	for _, file := range files {
		if filepath.Base(file) == primary {
			continue
		}
		secondary, err := loadKeysFromLocale(file)
		if err != nil {
			return report, fmt.Errorf("error loading %s: %w", file, err)
		}
		missing := []string{}
		for key := range primaryKeys {
			if _, ok := secondary[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		report.Missing[filepath.Base(file)] = missing
	}

	report.Untranslated, err = findUntranslatedStrings(root, primaryKeys)
	if err != nil {
		return report, fmt.Errorf("error finding untranslated strings: %w", err)
	}
	return report, nil
}

// isPrefix reports whether key names a group of IDs, like "feature.checkout"
// for "feature.checkout.done".
func isPrefix(key string, keys map[string]struct{}) bool {
	for k := range keys {
		if strings.HasPrefix(k, key+".") {
			return true
		}
	}
	return false
}

func coveredByPrefix(key string, prefixes map[string]struct{}) bool {
	for p := range prefixes {
		if strings.HasPrefix(key, p+".") {
			return true
		}
	}
	return false
}

func printReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "--- Checking for Undefined Keys (used in code but not in the primary locale) ---")
	listOrNone(w, "Undefined", r.Undefined)

	fmt.Fprintln(w, "--- Checking for Orphaned Keys (in primary locale but not used in code) ---")
	listOrNone(w, "Orphaned", r.Orphaned)

	fmt.Fprintln(w, "--- Checking for Missing Keys (in primary locale but not in others) ---")
	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(w, "Checking %s:\n", f)
		listOrNone(w, "Missing", r.Missing[f])
	}

	fmt.Fprintln(w, "--- Checking for Potentially Untranslated Strings ---")
	literals := make([]string, 0, len(r.Untranslated))
	for l := range r.Untranslated {
		literals = append(literals, l)
	}
	sort.Strings(literals)
	for _, l := range literals {
		loc := r.Untranslated[l][0]
		fmt.Fprintf(w, "  - Potential: %q (found in %s:%d)\n", l, loc.Filepath, loc.Line)
	}
	if len(literals) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}

	fmt.Fprintln(w, "\n--- Linter Finished ---")
	switch {
	case r.Failed():
		fmt.Fprintln(w, "❌ Found issues that need to be addressed.")
	case len(r.Orphaned) > 0:
		fmt.Fprintln(w, "⚠️  Found orphaned keys. Please consider removing them.")
	default:
		fmt.Fprintln(w, "✅ All translation files are consistent!")
	}
}

func listOrNone(w io.Writer, label string, keys []string) {
	for _, k := range keys {
		fmt.Fprintf(w, "  - %s: %s\n", label, k)
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}
	fmt.Fprintln(w)
}

// skipDir excludes the tools themselves and directories the Go tool ignores.
func skipDir(d fs.DirEntry, path, root string) bool {
	if path == root {
		return false
	}
	name := d.Name()
	return name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata"
}

var (
	// i18n.T("some.key") calls.
	callRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	// Other literals that look like message IDs or ID groups, e.g. in tables.
	idRe = regexp.MustCompile(`"([a-z]+(?:\.[a-z_]+)+)"`)
)

// findUsedKeys scans non-test .go files. IDs passed to i18n.T are returned as
// keys; other dotted literals are also returned as prefixes since the code
// composes IDs from a group name.
func findUsedKeys(root string) (keys, prefixes map[string]struct{}, err error) {
	keys = make(map[string]struct{})
	prefixes = make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d, path, root) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range callRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		for _, m := range idRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
			prefixes[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, prefixes, err
}

// findUntranslatedStrings scans for hardcoded strings that might need translation.
func findUntranslatedStrings(root string, allKeys map[string]struct{}) (map[string][]Location, error) {
	untranslated := make(map[string][]Location)
	// String literals passed to presenter-style calls.
	re := regexp.MustCompile(`\.(Info|Success|Warning|Error|Line|Confirm|Token)\("([^"]+)"`)
	keyRe := regexp.MustCompile(`^[a-z_]+\.[a-z\._]+$`)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d, path, root) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				literal := m[2]
				if _, ok := allKeys[literal]; ok || keyRe.MatchString(literal) || len(literal) < 4 {
					continue
				}
				untranslated[literal] = append(untranslated[literal], Location{Filepath: path, Line: i + 1})
			}
		}
		return nil
	})
	return untranslated, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into a flat map with dot-separated keys.
// Flat dotted keys pass through unchanged.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			newPrefix := k
			if prefix != "" {
				newPrefix = prefix + "." + k
			}
			flattenYAML(newPrefix, val, keys)
		}
	case []interface{}:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
