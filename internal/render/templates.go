package render

// Template is a string-based enum naming page templates.
type Template string

const (
	// TemplateMain corresponds to templates/main.html (every listing).
	TemplateMain     Template = "main"
	TemplatePackage  Template = "package"
	TemplateKeywords Template = "keywords"
	TemplateLicenses Template = "licenses"
	TemplateStats    Template = "stats"
	TemplateAbout    Template = "about"
	TemplateNotFound Template = "404"
	TemplateError    Template = "error"
)

var pageTemplates = []Template{
	TemplateMain,
	TemplatePackage,
	TemplateKeywords,
	TemplateLicenses,
	TemplateStats,
	TemplateAbout,
	TemplateNotFound,
	TemplateError,
}
