package annovar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"vapor/api/models"
	genomeBuild "vapor/api/models/constants/genome-build"
)

func TestLoadProtocols(t *testing.T) {
	t.Run("should carry built-in defaults for both builds", func(t *testing.T) {
		registry, err := LoadProtocols("")
		assert.Nil(t, err)

		hg19, err := registry.ForBuild(genomeBuild.HG19)
		assert.Nil(t, err)
		assert.Equal(t, 11, len(hg19))
		assert.Equal(t, ProtocolEntry{Protocol: "knownGene", Operation: "g"}, hg19[0])

		hg38, err := registry.ForBuild(genomeBuild.HG38)
		assert.Nil(t, err)
		assert.True(t, len(hg38) > 0)
	})

	t.Run("should load a custom registry file", func(t *testing.T) {
		contents := "builds:\n  hg19:\n    - protocol: refGene\n      operation: g\n"
		path := filepath.Join(t.TempDir(), "protocols.yaml")
		assert.Nil(t, os.WriteFile(path, []byte(contents), 0644))

		registry, err := LoadProtocols(path)
		assert.Nil(t, err)

		entries, err := registry.ForBuild(genomeBuild.HG19)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(entries))
		assert.Equal(t, "refGene", entries[0].Protocol)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := LoadProtocols("/nonexistent/protocols.yaml")
		assert.NotNil(t, err)
	})

	t.Run("should fail on a registry without builds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "protocols.yaml")
		assert.Nil(t, os.WriteFile(path, []byte("builds: {}\n"), 0644))

		_, err := LoadProtocols(path)
		assert.NotNil(t, err)
	})
}

func TestForBuild(t *testing.T) {
	t.Run("should refuse a build with no protocols", func(t *testing.T) {
		registry, err := LoadProtocols("")
		assert.Nil(t, err)

		_, err = registry.ForBuild("hg17")
		assert.NotNil(t, err)
	})
}

func TestCommaLists(t *testing.T) {
	t.Run("should keep protocols and operations aligned", func(t *testing.T) {
		protocols, operations := CommaLists([]ProtocolEntry{
			{Protocol: "knownGene", Operation: "g"},
			{Protocol: "cytoBand", Operation: "r"},
			{Protocol: "cosmic70", Operation: "f"},
		})
		assert.Equal(t, "knownGene,cytoBand,cosmic70", protocols)
		assert.Equal(t, "g,r,f", operations)
	})
}

func TestAnnovarRunner(t *testing.T) {
	registry, registryErr := LoadProtocols("")
	assert.Nil(t, registryErr)

	t.Run("should be unavailable without an install path", func(t *testing.T) {
		cfg := &models.Config{}
		runner := NewAnnovarRunner(cfg, registry, zap.NewNop())
		assert.False(t, runner.Available())

		_, annotateErr := runner.Annotate(context.Background(), "/data/input.vcf", genomeBuild.HG19, "/data/out")
		assert.NotNil(t, annotateErr)

		downloadErr := runner.DownloadDatabases(context.Background(), genomeBuild.HG19)
		assert.NotNil(t, downloadErr)
	})

	t.Run("should be available with an install path", func(t *testing.T) {
		cfg := &models.Config{}
		cfg.Annovar.Path = "/opt/annovar"

		runner := NewAnnovarRunner(cfg, registry, zap.NewNop())
		assert.True(t, runner.Available())
		assert.Equal(t, "/opt/annovar/humandb", runner.HumanDbPath)
	})
}
