package web

// indexHTML is the fallback page for non-API routes: the inventory report
// plus a live unpublished-changes badge driven by /api/events.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Inkwell</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border-bottom: 1px solid #ddd; padding: .25rem .75rem; text-align: left; }
.badge { display: inline-block; padding: .1rem .5rem; border-radius: .5rem; background: #fde68a; }
.error { color: #b91c1c; }
</style>
</head>
<body data-signals='{"dirty": {{if .Dirty}}true{{else}}false{{end}}}' data-on-load="@get('/api/events')">
<p><span class="badge" data-show="$dirty">Unpublished changes</span></p>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}{{.Report}}{{end}}
</body>
</html>
`
