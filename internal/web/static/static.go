package static

import "embed"

// FS holds the single-page client served under /static/.
//
//go:embed *.html *.css *.js
var FS embed.FS
