package http

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

const apiDocsJSONPath = "/swagger/doc.json"

// apiDocs serves the hand-kept YAML catalogue contract as JSON. The converted
// document is reused until the file's modification time changes.
type apiDocs struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	doc     []byte
}

func (d *apiDocs) load() ([]byte, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc != nil && info.ModTime().Equal(d.modTime) {
		return d.doc, nil
	}
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	doc, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, err
	}
	d.doc, d.modTime = doc, info.ModTime()
	return doc, nil
}

func (d *apiDocs) serve(c echo.Context) error {
	doc, err := d.load()
	if err != nil {
		c.Logger().Errorf("api docs %s: %v", d.path, err)
		return c.JSON(http.StatusServiceUnavailable, util.Error("api documentation unavailable"))
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, doc)
}

// RegisterSwagger mounts the Swagger UI under /swagger, pointed at the JSON
// rendering of the YAML document at specPath.
func RegisterSwagger(e *echo.Echo, specPath string) {
	docs := &apiDocs{path: specPath}
	e.GET(apiDocsJSONPath, docs.serve)
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL(apiDocsJSONPath)))
}
