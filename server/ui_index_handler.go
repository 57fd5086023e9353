package server

import (
	"net/http"
)

type feature struct {
	Icon  string
	Title string
	Desc  string
}

var features = []feature{
	{Icon: "check-circle", Title: "Submit Work", Desc: "Upload assignments before deadlines with confirmation"},
	{Icon: "file-text", Title: "Receive Feedback", Desc: "Get grades and comments from instructors"},
	{Icon: "clipboard-list", Title: "Track Assignments", Desc: "Monitor submissions and assignment deadlines."},
}

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"AppName":       s.config.GetAppName(),
			"Features":      features,
			"Authenticated": s.session.Snapshot().Authenticated(),
		}
		renderHTML(w, http.StatusOK, tmpl, data)
	}
}
