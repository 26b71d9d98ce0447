// Package openapi embeds the OpenAPI document for the warehouse API.
package openapi

import _ "embed"

//go:embed openapi.yaml
var YAML []byte
