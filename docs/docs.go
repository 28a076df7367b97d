// Package docs publishes the console's API description to swagger UI.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var doc string

type document struct{}

func (document) ReadDoc() string { return doc }

func init() {
	swag.Register(swag.Name, document{})
}
