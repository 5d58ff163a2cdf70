package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/basel-ax/archaeo/internal/app"
	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/i18n"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/module"
	"github.com/basel-ax/archaeo/internal/slider"
)

//go:embed templates/*.html
var templateFS embed.FS

// Markdown renders assistant text answers as sanitized HTML
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdown creates a renderer with GitHub-flavoured tables and lists
func NewMarkdown() *Markdown {
	return &Markdown{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts src to safe HTML. Unparseable input is shown escaped.
func (m *Markdown) Render(src string) template.HTML {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
}

// pageData is the root value of every template
type pageData struct {
	T           i18n.Translator
	Lang        i18n.Lang
	Toggle      i18n.Lang
	Credential  app.CredentialState
	Nav         []navView
	Active      domain.ModuleType
	Module      *moduleView
	FrigatedURL string
	Notice      string
	// Refresh is the meta-refresh interval in seconds, 0 for none
	Refresh int
	// ReturnTo is the module whose request asked for a new key, if any
	ReturnTo domain.ModuleType
}

type navView struct {
	ID          domain.ModuleType
	Icon        string
	Label       string
	Description string
	Active      bool
}

type moduleView struct {
	ID           domain.ModuleType
	Title        string
	Subtitle     string
	Label        string
	Button       string
	ResultTitle  string
	Input        string
	Loading      bool
	Failed       bool
	Permission   bool
	Error        string
	Comparison   *slider.View
	ResultImage  string
	ResultText   template.HTML
	Downloadable bool
	// translation
	Target string
	// mosaic
	Context string
}

func (s *Server) parseTemplates() error {
	funcs := template.FuncMap{
		"src": imageSrc,
	}
	t, err := template.New("_root").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	s.tmpl = t
	return nil
}

// imageSrc marks encoded images as safe for <img src>
func imageSrc(s string) template.URL {
	if _, err := domain.ParseEncodedImage(s); err != nil || !strings.HasPrefix(s, "data:image/") {
		return ""
	}
	return template.URL(s)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Entry(r.Context()).WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// page builds the template data for the session's current screen
func (s *Server) page(sess *session) pageData {
	shell := sess.app
	lang := shell.Lang()
	tr := i18n.Translator{Lang: lang}
	data := pageData{
		T:           tr,
		Lang:        lang,
		Toggle:      lang.Toggle(),
		Credential:  shell.CredentialState(),
		Active:      shell.Active(),
		FrigatedURL: s.cfg.FrigatedURL,
	}

	for _, item := range domain.NavItems() {
		data.Nav = append(data.Nav, navView{
			ID:          item.ID,
			Icon:        item.Icon,
			Label:       tr.T(item.LabelKey),
			Description: tr.T(item.DescriptionKey),
			Active:      item.ID == data.Active,
		})
	}

	switch data.Credential {
	case app.Checking:
		data.Refresh = 1
		return data
	case app.Gated:
		return data
	}

	if m, ok := shell.Module(data.Active); ok {
		data.Module = s.moduleView(m, lang)
		if data.Module.Loading {
			data.Refresh = 2
		}
	}
	return data
}

func (s *Server) moduleView(m *module.Shell, lang i18n.Lang) *moduleView {
	tr := i18n.Translator{Lang: lang}
	out := m.Outcome()
	v := &moduleView{
		ID:          m.ID(),
		Title:       tr.T(m.Key("title")),
		Subtitle:    tr.T(m.Key("subtitle")),
		Label:       tr.T(m.Key("label")),
		Button:      tr.T(m.Key("button")),
		ResultTitle: tr.T(m.Key("result")),
		Input:       string(m.Input()),
		Loading:     out.Status == domain.StatusLoading,
		Failed:      out.Status == domain.StatusFailure,
		Permission:  out.PermissionDenied(),
		Target:      m.TargetLanguage(lang),
		Context:     m.Context(),
	}
	if v.Failed {
		v.Error = tr.T(out.MessageKey)
	}
	if out.Status != domain.StatusSuccess {
		return v
	}

	v.Downloadable = true
	if view, ok := m.Comparison(lang); ok {
		v.Comparison = &view
		v.ResultImage = view.After
		return v
	}
	v.ResultText = s.markdown.Render(out.Payload.Text)
	return v
}
