package addons

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrMalformedManifest is returned when a manifest directive cannot be parsed
var ErrMalformedManifest = errors.New("malformed manifest")

var (
	// colorResetRegex matches the ESO color reset token |r
	colorResetRegex = regexp.MustCompile(`\|r`)

	// colorStartRegex matches ESO color start tokens like |cFFAA00
	colorStartRegex = regexp.MustCompile(`\|c[0-9a-fA-F]{6}`)

	// trailingVersionRegex matches version numbers authors embed at the end of
	// titles, e.g. "v1.2.3" or "2.10"
	trailingVersionRegex = regexp.MustCompile(`(\s*v?\d{1,2}(\.\d{1,2}){1,3})+\s*$`)

	// dataFileRegex matches titles of manifests that only ship data for
	// another addon and are never managed on their own
	dataFileRegex = regexp.MustCompile(`(?i)\bdata\s*files?\b`)
)

// CleanTitle strips color codes and trailing embedded versions from a title.
// Removing a token can join its neighbours into a new one, so the
// replacements repeat until the title stops changing.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for {
		next := colorResetRegex.ReplaceAllString(title, "")
		next = colorStartRegex.ReplaceAllString(next, "")
		next = trailingVersionRegex.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == title {
			return title
		}
		title = next
	}
}

// IsDataFileTitle reports whether a raw title marks a data file manifest
func IsDataFileTitle(title string) bool {
	return dataFileRegex.MatchString(title)
}

// ParseManifest parses an ESO addon manifest (.txt) and extracts identity facts.
// It returns nil, nil when the manifest declares itself a data file.
func ParseManifest(manifestPath string, logger *log.Logger) (*InstalledAddon, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(filepath.Dir(manifestPath))
	addon := &InstalledAddon{
		Name:         name,
		Path:         NormalizePath(name),
		ManifestPath: manifestPath,
	}

	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)

		// Manifest directives start with ##
		if !strings.HasPrefix(line, "##") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "##"))

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			if IsDataFileTitle(value) {
				return nil, nil
			}
			addon.Title = CleanTitle(value)
		case "version":
			addon.VersionName = firstToken(value)
		case "addonversion":
			addon.Version = firstToken(value)
		case "islibrary":
			isLib, err := strconv.ParseBool(strings.ToLower(firstToken(value)))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: IsLibrary %q", ErrMalformedManifest, manifestPath, value)
			}
			addon.IsLibrary = isLib
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if addon.Title == "" && logger != nil {
		logger.Warn("Manifest has an empty title", "path", manifestPath)
	}

	return addon, nil
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
