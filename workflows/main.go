package workflows

import (
	c "vapor/api/models/constants"
	gb "vapor/api/models/constants/genome-build"
)

type WorkflowSchema map[string]interface{}

var WORKFLOW_ANNOTATION_SCHEMA WorkflowSchema = map[string]interface{}{
	"annotation": map[string]interface{}{
		"vcf_basic": map[string]interface{}{
			"name":        "VCF Annotation",
			"description": "This annotation workflow will identify the variants of a VCF and store their web-service annotations into Elasticsearch.",
			"data_type":   "annotation",
			"tags":        []string{"annotation"},
			"file":        "vcf_basic.wdl",
			"type":        "annotation",
			"inputs": []map[string]interface{}{
				{
					"id":       "vcf_file_name",
					"type":     "file",
					"required": true,
					"pattern":  "^.*\\.vcf(\\.gz)?$",
				},
				{
					"id":       "genome_build",
					"type":     "enum",
					"required": true,
					"values":   []c.GenomeBuild{gb.HG19, gb.HG38},
				},
				{
					"id":       "database",
					"type":     "string",
					"required": true,
				},
				{
					"id":       "collection",
					"type":     "string",
					"required": true,
				},
			},
		},
		"vcf_detailed": map[string]interface{}{
			"name":        "VCF Annotation with Local Enrichment",
			"description": "This annotation workflow will run the local annotation tool over a VCF and merge its output with web-service annotations into Elasticsearch.",
			"data_type":   "annotation",
			"tags":        []string{"annotation"},
			"file":        "vcf_detailed.wdl",
			"type":        "annotation",
			"inputs": []map[string]interface{}{
				{
					"id":       "vcf_file_name",
					"type":     "file",
					"required": true,
					"pattern":  "^.*\\.vcf(\\.gz)?$",
				},
				{
					"id":       "genome_build",
					"type":     "enum",
					"required": true,
					"values":   []c.GenomeBuild{gb.HG19, gb.HG38},
				},
				{
					"id":       "database",
					"type":     "string",
					"required": true,
				},
				{
					"id":       "collection",
					"type":     "string",
					"required": true,
				},
				{
					"id":       "run_annovar",
					"type":     "boolean",
					"required": false,
				},
			},
		},
	},
	"analysis": map[string]interface{}{},
	"export":   map[string]interface{}{},
}
