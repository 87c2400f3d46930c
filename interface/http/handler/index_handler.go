package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/application/usecase"
)

const indexTemplateName = "index.html"

// IndexTemplate renders the button listing. Register it on the engine with
// SetHTMLTemplate.
var IndexTemplate = template.Must(template.New(indexTemplateName).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Buttons</title></head>
<body>
<h1>Buttons</h1>
<table>
<tr><th>Button</th><th>Push</th><th>Delete</th><th>Initialise</th></tr>
{{- range .items}}
<tr>
<td>{{.Label}}</td>
<td><a href="{{.PushURL}}">push</a></td>
<td><a href="{{.DeleteURL}}">delete</a></td>
<td><a href="{{.InitialiseURL}}">initialise</a></td>
</tr>
{{- else}}
<tr><td colspan="4">No button has been loaded yet.</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type IndexLister interface {
	Execute(tok string) ([]usecase.IndexEntry, error)
}

type IndexHandler struct {
	index  IndexLister
	errors *ErrorResponder
}

func NewIndexHandler(index IndexLister, errors *ErrorResponder) *IndexHandler {
	return &IndexHandler{index: index, errors: errors}
}

func (h *IndexHandler) Index(c *gin.Context) {
	entries, err := h.index.Execute(c.Param("token"))
	if err != nil {
		h.errors.Respond(c, "index", err)
		return
	}
	c.HTML(http.StatusOK, indexTemplateName, gin.H{"items": entries})
}
