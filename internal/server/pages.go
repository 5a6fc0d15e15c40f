package server

import (
	"html/template"
	"net/http"
	"net/url"

	"diderot/internal/archive"
	"diderot/internal/core"
	"diderot/internal/render"
)

// pageData is rendered by pageTemplate
type pageData struct {
	Date        string
	Today       string
	Force       bool
	GeneratedAt string
	Headlines   int
	Content     template.HTML
	Notice      string
	Error       string
}

// handleHomePage shows the report for ?date= (default today) without generating it.
func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	today := s.now().Format(core.DateLayout)
	date := r.URL.Query().Get("date")
	if date == "" {
		date = today
	}

	data := pageData{Date: date, Today: today}
	if msg := r.URL.Query().Get("error"); msg != "" {
		data.Error = msg
	}

	state, report, err := s.reports.Lookup(date, false)
	switch {
	case err != nil:
		data.Error = err.Error()
		s.renderPage(w, statusFor(err), data)
		return
	case state != archive.StateCached:
		data.Notice = "No report found for " + date + ". Use Generate to create it."
	default:
		data.GeneratedAt = report.GeneratedAt.Format("2006-01-02 15:04 MST")
		data.Headlines = report.TotalHeadlines
		data.Content = renderMarkdown(render.Markdown(date, report))
	}

	s.renderPage(w, http.StatusOK, data)
}

// handleGenerateForm runs generation from the page form, then redirects back to it.
func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	date := r.PostFormValue("date")
	force := r.PostFormValue("force") == "on"

	target := url.Values{"date": {date}}
	if _, _, err := s.reports.Get(r.Context(), date, force); err != nil {
		s.log.Error("Generation from web page failed", "date", date, "error", err)
		target.Set("error", err.Error())
	}
	http.Redirect(w, r, "/?"+target.Encode(), http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("Failed to render page", "error", err)
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Daily News Report - {{.Date}}</title>
<style>
body { font-family: Georgia, serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
form { display: flex; gap: 1rem; align-items: center; padding: 1rem; background: #f4f4f4; border-radius: 6px; }
.banner { color: #555; font-style: italic; }
.notice { padding: 1rem; background: #fff8e1; }
.error { padding: 1rem; background: #fdecea; color: #b71c1c; }
#status { display: none; color: #555; }
h2 { border-top: 1px solid #ddd; padding-top: 1rem; }
</style>
</head>
<body>
<h1>Daily News Report</h1>
<form method="get" action="/">
  <label>Date <input type="date" name="date" value="{{.Date}}" max="{{.Today}}" onchange="this.form.submit()"></label>
</form>
<form method="post" action="/generate" onsubmit="document.getElementById('status').style.display='block'; this.querySelector('button').disabled=true;">
  <input type="hidden" name="date" value="{{.Date}}">
  <label><input type="checkbox" name="force"{{if .Force}} checked{{end}}> Force regenerate</label>
  <button type="submit">Generate</button>
  <span id="status">Generating report, this can take several minutes...</span>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
{{if .GeneratedAt}}<p class="banner">Generated {{.GeneratedAt}} · {{.Headlines}} headlines</p>{{end}}
<main>{{.Content}}</main>
</body>
</html>
`
