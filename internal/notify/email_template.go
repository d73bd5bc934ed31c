package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>AIPS today {{.Date}}</title>
  <style>
    body { margin: 0; padding: 16px; font-family: Helvetica, Arial, sans-serif; font-size: 14px; color: #1f2937; }
    h1 { margin: 0 0 4px; font-size: 20px; }
    td { padding: 4px 12px 4px 0; vertical-align: top; }
    .muted { color: #6b7280; }
    .id-tag { display: inline-block; margin: 0 4px 4px 0; padding: 2px 8px; font-family: monospace; background: #eef2ff; border-radius: 3px; }
    .id-tag.new { background: #fde68a; font-weight: bold; }
  </style>
</head>
<body>
  <h1>AIPS export {{.Date}}</h1>
  <p class="muted">{{len .Identifiers}} authorizations dated today{{if .New}}, {{len .New}} new since last run{{end}}.</p>

  <table>
    <tr><td class="muted">File</td><td>{{.OutputPath}}</td></tr>
    <tr><td class="muted">Upload</td><td>{{if .Uploaded}}done{{else if .UploadErr}}failed: {{.UploadErr}}{{else}}skipped{{end}}</td></tr>
  </table>

  <p>
  {{range .Identifiers}}<span class="id-tag{{if $.IsNew .}} new{{end}}">{{.}}</span>{{else}}No identifiers for today.{{end}}
  </p>
</body>
</html>`
