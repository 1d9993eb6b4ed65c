package display

import (
	"bytes"
	"html/template"
	"time"
)

var pageTemplate = template.Must(template.New("auto-refresh").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { background: #111; color: #0f0; font-family: monospace; margin: 2em; }
  pre { font-size: 15px; line-height: 1.2; }
  .status { color: #888; font-size: 12px; }
</style>
</head>
<body>
<pre id="display">Loading...</pre>
<div class="status" id="status"></div>
<script>
  async function refresh() {
    try {
      const res = await fetch({{.Source}}, { cache: "no-store" });
      document.getElementById("display").textContent = await res.text();
      document.getElementById("status").textContent = "";
    } catch (err) {
      document.getElementById("status").textContent = "connection lost: " + err;
    }
  }
  refresh();
  setInterval(refresh, {{.IntervalMillis}});
</script>
</body>
</html>
`))

// PageOptions configure the auto-refresh page.
type PageOptions struct {
	Title    string
	Source   string        // path of the text endpoint
	Interval time.Duration // poll period
}

// Page renders an HTML page that polls Source every Interval and shows its text.
func Page(opts PageOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = title
	}
	if opts.Source == "" {
		opts.Source = "/display"
	}
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title          string
		Source         string
		IntervalMillis int64
	}{opts.Title, opts.Source, opts.Interval.Milliseconds()})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
