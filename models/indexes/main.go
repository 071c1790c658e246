package indexes

// Annotation is the typed core of a stored annotation document.
// Documents travel the pipeline as open maps so remote fields
// survive untouched; this struct is the decoded view of the
// fields Vapor itself understands (mapstructure tags match the
// stored keys).
type Annotation struct {
	HgvsId string `json:"hgvs_id" mapstructure:"hgvs_id"`

	Chr   string `json:"chr,omitempty" mapstructure:"chr"`
	Start int    `json:"start,omitempty" mapstructure:"start"`
	End   int    `json:"end,omitempty" mapstructure:"end"`
	Ref   string `json:"ref,omitempty" mapstructure:"ref"`
	Alt   string `json:"alt,omitempty" mapstructure:"alt"`

	FuncKnownGene       string `json:"func_knowngene,omitempty" mapstructure:"func_knowngene"`
	GeneKnownGene       string `json:"gene_knowngene,omitempty" mapstructure:"gene_knowngene"`
	ExonicFuncKnownGene string `json:"exonicfunc_knowngene,omitempty" mapstructure:"exonicfunc_knowngene"`
	Cytoband            string `json:"cytoband,omitempty" mapstructure:"cytoband"`
	GenomicSuperDups    string `json:"genomic_superdups,omitempty" mapstructure:"genomic_superdups"`

	ThousandGenomesFreq float64 `json:"1000g2015aug_all,omitempty" mapstructure:"1000g2015aug_all"`
	Esp6500Freq         float64 `json:"esp6500siv2_all,omitempty" mapstructure:"esp6500siv2_all"`
	Cosmic70            string  `json:"cosmic70,omitempty" mapstructure:"cosmic70"`
	Nci60               float64 `json:"nci60,omitempty" mapstructure:"nci60"`

	Samples                 []Sample          `json:"samples,omitempty" mapstructure:"samples"`
	GenotypeSubclassByClass map[string]string `json:"genotype_subclass_by_class,omitempty" mapstructure:"genotype_subclass_by_class"`

	// NotFound marks a minimal document for an identifier the
	// remote service had no record of (basic mode only).
	NotFound bool `json:"notfound,omitempty" mapstructure:"notfound"`
}

type Sample struct {
	SampleId                string    `json:"sample_id" mapstructure:"sample_id"`
	Genotype                string    `json:"genotype" mapstructure:"genotype"`
	FilterPassingReadsCount int       `json:"filter_passing_reads_count,omitempty" mapstructure:"filter_passing_reads_count"`
	GenotypeLikelihoods     []float64 `json:"genotype_likelihoods,omitempty" mapstructure:"genotype_likelihoods"`
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_LONG = map[string]interface{}{"type": "long"}
var MAPPING_FLOAT64 = map[string]interface{}{"type": "double"}
var MAPPING_BOOL = map[string]interface{}{"type": "boolean"}

// Only the core fields are mapped explicitly; everything the
// remote service contributes beyond them stays dynamically
// mapped. Samples are nested so per-sample genotype queries
// pair sample_id with its own genotype.
var ANNOTATION_INDEX_MAPPING = map[string]interface{}{
	"dynamic": true,
	"properties": map[string]interface{}{
		"hgvs_id":              MAPPING_TEXT,
		"chr":                  MAPPING_TEXT,
		"start":                MAPPING_LONG,
		"end":                  MAPPING_LONG,
		"ref":                  MAPPING_TEXT,
		"alt":                  MAPPING_TEXT,
		"func_knowngene":       MAPPING_TEXT,
		"gene_knowngene":       MAPPING_TEXT,
		"exonicfunc_knowngene": MAPPING_TEXT,
		"cytoband":             MAPPING_TEXT,
		"genomic_superdups":    MAPPING_TEXT,
		"1000g2015aug_all":     MAPPING_FLOAT64,
		"esp6500siv2_all":      MAPPING_FLOAT64,
		"cosmic70":             MAPPING_TEXT,
		"nci60":                MAPPING_FLOAT64,
		"notfound":             MAPPING_BOOL,
		"samples": map[string]interface{}{
			"type": "nested",
			"properties": map[string]interface{}{
				"sample_id":                  MAPPING_TEXT,
				"genotype":                   MAPPING_TEXT,
				"filter_passing_reads_count": MAPPING_LONG,
				"genotype_likelihoods":       MAPPING_FLOAT64,
			},
		},
		"cadd": map[string]interface{}{
			"properties": map[string]interface{}{
				"phred": MAPPING_FLOAT64,
			},
		},
	},
}
