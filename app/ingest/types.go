package ingest

// Source kinds supported by the ingestion pipeline.
const (
	SourceTypeNewsAPI = "newsapi"
	SourceTypeRSS     = "rss"
)

// SourceConfig is one ingestion source definition, loaded from a YAML file
// in the sources directory. The file name (without extension) is the source
// name.
type SourceConfig struct {
	Name     string         `yaml:"-"`
	Type     string         `yaml:"type"`
	URL      string         `yaml:"url"`      // rss only
	Category string         `yaml:"category"` // newsapi top-headlines
	Query    string         `yaml:"query"`    // newsapi everything
	Country  string         `yaml:"country"`
	PageSize int            `yaml:"page_size"`
	Settings SourceSettings `yaml:"settings"`
}

type SourceSettings struct {
	Enabled        bool `yaml:"enabled"`
	Timeout        int  `yaml:"timeout"` // seconds
	ExtractContent bool `yaml:"extract_content"`
}
