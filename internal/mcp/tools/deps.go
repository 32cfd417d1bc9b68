package tools

import (
	"github.com/phototype/evidence-mcp/internal/config"
	"github.com/phototype/evidence-mcp/internal/extract"
	"github.com/phototype/evidence-mcp/internal/query"
	"github.com/phototype/evidence-mcp/internal/schema"
	"github.com/phototype/evidence-mcp/internal/store"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Extractor *extract.Extractor
	Query     *query.Engine
	Schema    *schema.Validator
}

// MimeJSON is the MIME type used for JSON resource contents.
const MimeJSON = "application/json"
