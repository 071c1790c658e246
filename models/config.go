package models

type Config struct {
	Debug          bool   `envconfig:"VAPOR_DEBUG" default:"false"`
	SemVer         string `envconfig:"VAPOR_SEMVER" default:"0.1.0"`
	ServiceContact string `envconfig:"VAPOR_SERVICE_CONTACT" default:"mailto:support@vapor.bio"`

	Api struct {
		Port string `envconfig:"VAPOR_API_INTERNAL_PORT" default:"5000"`
	}
	Log struct {
		Level string `envconfig:"VAPOR_LOG_LEVEL" default:"info"`
		// File enables rotated file output alongside stdout
		// when set.
		File string `envconfig:"VAPOR_LOG_FILE"`
	}
	Elasticsearch struct {
		Url      string `envconfig:"VAPOR_ES_URL" default:"http://localhost:9200"`
		Username string `envconfig:"VAPOR_ES_USERNAME"`
		Password string `envconfig:"VAPOR_ES_PASSWORD"`
	}
	Annotation struct {
		ChunkSize          int    `envconfig:"VAPOR_ANNOTATION_CHUNK_SIZE" default:"2000"`
		BasicWorkers       int    `envconfig:"VAPOR_ANNOTATION_BASIC_WORKERS" default:"8"`
		DetailedWorkers    int    `envconfig:"VAPOR_ANNOTATION_DETAILED_WORKERS" default:"4"`
		DefaultGenomeBuild string `envconfig:"VAPOR_DEFAULT_GENOME_BUILD" default:"hg19"`
	}
	MyVariant struct {
		Url            string `envconfig:"VAPOR_MYVARIANT_URL" default:"https://myvariant.info/v1"`
		MaxAttempts    int    `envconfig:"VAPOR_MYVARIANT_MAX_ATTEMPTS" default:"5"`
		TimeoutSeconds int    `envconfig:"VAPOR_MYVARIANT_TIMEOUT_SECONDS" default:"30"`
	}
	Sanitation struct {
		// RunRetentionHours is how long finished run records stay
		// visible before the janitor clears them out.
		RunRetentionHours int `envconfig:"VAPOR_RUN_RETENTION_HOURS" default:"24"`
	}
	Annovar struct {
		// Path points at the ANNOVAR install directory holding
		// table_annovar.pl; empty disables the runner endpoints.
		Path string `envconfig:"VAPOR_ANNOVAR_PATH"`
		// ProtocolsFile overrides the built-in per-build
		// protocol registry when set.
		ProtocolsFile string `envconfig:"VAPOR_ANNOVAR_PROTOCOLS"`
	}
}
