// ABOUTME: Embeds the HTML templates and the CSS/JS assets served by the web UI.
// ABOUTME: Static files are served under /static/; templates are parsed once by NewRenderer.
package web

import "embed"

//go:embed templates/*.html templates/partials/*.html static/css/*.css static/js/*.js
var ContentFS embed.FS
