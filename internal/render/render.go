// Package render turns page data into HTML.
//
// Every page template is parsed together with the shared layout from the
// embedded templates/ directory. Templates get the sprig function set plus
// a few catalog helpers (commafy, cannedTitle).
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/spf13/cast"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is what handlers hand to the renderer.
type Page struct {
	Template Template
	Title    string
	Status   int
	Data     interface{}

	// Redirect, when set, is answered with a 302 to that URL instead of
	// rendering the page.
	Redirect string

	// SiteName is filled in by the Renderer.
	SiteName string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[Template]*template.Template
	siteName  string
}

// New parses every page template. It fails on any template error so a
// broken page is caught at startup.
func New(siteName string) (*Renderer, error) {
	base, err := template.New("layout.html").
		Funcs(FuncMap()).
		ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse layout template")
	}

	templates := make(map[Template]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clone layout for %s", name)
		}

		if _, err := tmpl.ParseFS(templateFS, fmt.Sprintf("templates/%s.html", name)); err != nil {
			return nil, errors.Wrapf(err, "failed to parse page template %s", name)
		}
		templates[name] = tmpl
	}

	return &Renderer{templates: templates, siteName: siteName}, nil
}

// Render executes the layout of the named page with data.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[Template(name)]
	if !ok {
		return errors.Errorf("unknown template %s", name)
	}

	if page, ok := data.(*Page); ok && page.SiteName == "" {
		page.SiteName = r.siteName
	}

	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return errors.Wrapf(err, "failed to execute template %s", name)
	}
	return nil
}

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded at compile time, so the subtree always exists.
		panic(err)
	}
	return sub
}

// FuncMap returns the template functions: sprig plus catalog helpers.
func FuncMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["commafy"] = Commafy
	funcs["cannedTitle"] = repository.CannedTitle
	funcs["cannedNames"] = func() []string { return repository.CannedNames }
	return funcs
}

// Commafy formats a number with thousands separators: 1234567 -> "1,234,567".
func Commafy(v interface{}) string {
	return humanize.Comma(cast.ToInt64(v))
}
