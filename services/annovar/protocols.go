package annovar

import (
	"fmt"
	"io/ioutil"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"vapor/api/models/constants"
)

// defaultProtocolsYaml lists the reference databases each build
// is annotated against and the table_annovar operation class of
// each (g gene-based, r region-based, f filter-based). Operators
// can point VAPOR_ANNOVAR_PROTOCOLS at their own registry when
// their humandb carries different table versions.
const defaultProtocolsYaml = `
builds:
  hg19:
    - protocol: knownGene
      operation: g
    - protocol: tfbsConsSites
      operation: r
    - protocol: cytoBand
      operation: r
    - protocol: targetScanS
      operation: r
    - protocol: genomicSuperDups
      operation: r
    - protocol: esp6500siv2_all
      operation: f
    - protocol: 1000g2015aug_all
      operation: f
    - protocol: popfreq_all_20150413
      operation: f
    - protocol: clinvar_20161128
      operation: f
    - protocol: cosmic70
      operation: f
    - protocol: nci60
      operation: f
  hg38:
    - protocol: knownGene
      operation: g
    - protocol: cytoBand
      operation: r
    - protocol: genomicSuperDups
      operation: r
    - protocol: esp6500siv2_all
      operation: f
    - protocol: 1000g2015aug_all
      operation: f
    - protocol: clinvar_20161128
      operation: f
    - protocol: cosmic70
      operation: f
    - protocol: nci60
      operation: f
`

type ProtocolEntry struct {
	Protocol  string `yaml:"protocol"`
	Operation string `yaml:"operation"`
}

type ProtocolRegistry struct {
	Builds map[string][]ProtocolEntry `yaml:"builds"`
}

// LoadProtocols reads the registry from the given file, or the
// built-in defaults when the path is empty.
func LoadProtocols(path string) (*ProtocolRegistry, error) {
	contents := []byte(defaultProtocolsYaml)
	if path != "" {
		fileContents, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading protocol registry %s: %w", path, err)
		}
		contents = fileContents
	}

	var registry ProtocolRegistry
	if err := yaml.Unmarshal(contents, &registry); err != nil {
		return nil, fmt.Errorf("parsing protocol registry: %w", err)
	}
	if len(registry.Builds) == 0 {
		return nil, fmt.Errorf("protocol registry declares no builds")
	}
	return &registry, nil
}

// ForBuild returns the entries for one genome build.
func (r *ProtocolRegistry) ForBuild(build constants.GenomeBuild) ([]ProtocolEntry, error) {
	entries, found := r.Builds[string(build)]
	if !found || len(entries) == 0 {
		return nil, fmt.Errorf("no annovar protocols registered for build %s", build)
	}
	return entries, nil
}

// CommaLists renders the -protocol and -operation arguments.
func CommaLists(entries []ProtocolEntry) (string, string) {
	protocols := make([]string, 0, len(entries))
	operations := make([]string, 0, len(entries))
	for _, entry := range entries {
		protocols = append(protocols, entry.Protocol)
		operations = append(operations, entry.Operation)
	}
	return strings.Join(protocols, ","), strings.Join(operations, ",")
}
