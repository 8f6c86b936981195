package commands

import (
	"wikipen/internal/confluence"
	"wikipen/pkg/logger"
)

// newWikiClient is a package-level variable to allow test injection of a mock.
// Production code uses the real client constructor; tests can override this.
var newWikiClient = func(baseURI, username, password string, log *logger.Logger) confluence.API {
	return confluence.NewClient(baseURI, username, password, log)
}
