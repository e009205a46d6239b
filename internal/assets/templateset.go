package assets

// TemplateSet holds the HTML templates rendered by the generator and server.
type TemplateSet struct {
	Name   string // Set name, the directory under templates/
	Report string // Standalone report document (html/template, pipeline.Page fields)
	Index  string // Control panel page
	Result string // Report page of the web interface
}

// Template file names inside a set directory, in the order they are checked.
const (
	ReportTemplateFile = "report.html"
	IndexTemplateFile  = "index.html"
	ResultTemplateFile = "result.html"
)

var templateFiles = []string{ReportTemplateFile, IndexTemplateFile, ResultTemplateFile}

// newTemplateSet assigns file contents keyed by file name.
func newTemplateSet(name string, files map[string]string) *TemplateSet {
	return &TemplateSet{
		Name:   name,
		Report: files[ReportTemplateFile],
		Index:  files[IndexTemplateFile],
		Result: files[ResultTemplateFile],
	}
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in report style.
const DefaultStyleName = "default"

// AppStyleName is the name of the built-in web interface style.
const AppStyleName = "app"
