// Package extractors imports all extractor packages to trigger their init()
// registration. Import this package for side effects only.
package extractors

import (
	// Import all extractor packages to register them with the registry.
	_ "uld_ingest/internal/extractors/allocation"
	_ "uld_ingest/internal/extractors/morning"
	_ "uld_ingest/internal/extractors/uldrows"
)
