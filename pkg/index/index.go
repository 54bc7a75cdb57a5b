package index

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cruciblepm/crucible/pkg/errors"
	"github.com/cruciblepm/crucible/pkg/fsutil"
)

const (
	// InitialPackageCapacity is the initial capacity for the packages slice.
	InitialPackageCapacity = 100
)

// NewIndex creates a new index with the current timestamp.
func NewIndex(formatVersion string) *Index {
	return &Index{
		FormatVersion: formatVersion,
		LastUpdate:    time.Now(),
		Packages:      make([]*Package, 0, InitialPackageCapacity),
	}
}

// GetFormatVersion returns the format version.
func (idx *Index) GetFormatVersion() string {
	return idx.FormatVersion
}

// GetLastUpdate returns the last update timestamp as string.
func (idx *Index) GetLastUpdate() string {
	return idx.LastUpdate.Format(time.RFC3339)
}

// GetPackages returns all packages.
func (idx *Index) GetPackages() []*Package {
	return idx.Packages
}

// ParseIndex parses an index from JSON data.
func ParseIndex(data []byte) (*Index, error) {
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, errors.Wrap(err, "failed to parse index")
	}

	// Validate format version
	if index.FormatVersion == "" {
		return nil, fmt.Errorf("missing format version in index")
	}

	return &index, nil
}

// ParseIndexFromReader parses an index from an io.Reader.
func ParseIndexFromReader(reader io.Reader) (*Index, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read index data")
	}

	return ParseIndex(data)
}

func ParseIndexFromFile(filePath string) (*Index, error) {
	file, err := os.Open(filePath)
	defer file.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open index file %s for parsing", filePath)
	}
	return ParseIndexFromReader(file)
}

// ToJSON converts the index to JSON bytes.
func (idx *Index) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal index to JSON")
	}
	return data, nil
}

func (idx *Index) FindPackages(name string) []*Package {
	packages := make([]*Package, 0, 5)
	for _, pkg := range idx.Packages {
		if pkg.Name == name {
			packages = append(packages, pkg)
		}
	}

	return packages
}

// AddPackage adds a pkg to the index.
func (idx *Index) AddPackage(pkg *Package) {
	// Remove existing pkg with same name if it exists
	for i := range idx.Packages {
		if idx.Packages[i].Name == pkg.Name {
			idx.Packages[i] = pkg
			idx.LastUpdate = time.Now()
			return
		}
	}

	// Add new pkg
	idx.Packages = append(idx.Packages, pkg)
	idx.LastUpdate = time.Now()
}

// RemovePackage removes a pkg from the index.
func (idx *Index) RemovePackage(name string) bool {
	for i := range idx.Packages {
		if idx.Packages[i].Name == name {
			idx.Packages = append(idx.Packages[:i], idx.Packages[i+1:]...)
			idx.LastUpdate = time.Now()
			return true
		}
	}
	return false
}

// FuzzySearchArtifacts returns every package whose name fuzzily matches
// query, ranked best match first; ties keep the index's original order.
// An empty query matches nothing.
func (idx *Index) FuzzySearchArtifacts(query string) []*Package {
	if query == "" {
		return nil
	}

	type scoredPackage struct {
		pkg   *Package
		score float64
	}

	matches := make([]scoredPackage, 0, len(idx.Packages))
	for _, pkg := range idx.Packages {
		if score := fuzzyMatchScore(query, pkg.Name); score > 0 {
			matches = append(matches, scoredPackage{pkg: pkg, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]*Package, len(matches))
	for i, m := range matches {
		results[i] = m.pkg
	}
	return results
}

// fuzzyMatchScore scores how well query matches target, case-insensitively:
// an exact match scores 1.0, a prefix match 0.9, any other substring match
// 0.7, and no match 0.0. An empty query is treated as a universal prefix
// match (callers that want "no query" to mean "no results" must guard for
// it themselves, as FuzzySearchArtifacts does).
func fuzzyMatchScore(query, target string) float64 {
	query = strings.ToLower(query)
	target = strings.ToLower(target)

	switch {
	case query == target:
		return 1.0
	case strings.HasPrefix(target, query):
		return 0.9
	case strings.Contains(target, query):
		return 0.7
	default:
		return 0.0
	}
}

// WriteIndexToFile serializes idx as indented JSON and writes it to
// filePath, overwriting any existing file.
func WriteIndexToFile(idx *Index, filePath string) error {
	data, err := idx.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrapf(err, "failed to write index to %s", filePath)
	}
	return nil
}
