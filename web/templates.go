package web

import (
	"html/template"
	"time"
)

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"eq":                 func(a, b string) bool { return a == b },
		"formatOptionalTime": formatOptionalTime,
	}
	return template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.Format("2006-01-02 15:04:05")
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  {{if .AnyRunning}}<meta http-equiv="refresh" content="3">{{end}}
  <title>Blueprint{{if .ProjectName}} · {{.ProjectName}}{{end}}</title>
  <style>
    :root {
      color-scheme: light;
    }
    body {
      margin: 0;
      font-family: "Charter", "Georgia", serif;
      color: #2b2520;
      background: radial-gradient(circle at top left, #f4efe3 0%, #fcfaf6 55%, #f6f2e8 100%);
    }
    header {
      padding: 16px 24px;
      border-bottom: 1px solid #d7cdbd;
      background: rgba(255, 255, 255, 0.72);
      backdrop-filter: blur(6px);
      display: flex;
      justify-content: space-between;
      align-items: baseline;
    }
    header h1 {
      margin: 0;
      font-size: 20px;
      letter-spacing: 0.02em;
    }
    main {
      display: flex;
      gap: 18px;
      padding: 18px 24px 28px;
    }
    .pane {
      background: #ffffff;
      border: 1px solid #d7cdbd;
      border-radius: 14px;
      box-shadow: 0 8px 24px rgba(60, 45, 30, 0.08);
    }
    .list-pane {
      width: 35%;
      min-width: 260px;
      padding: 16px;
      display: flex;
      flex-direction: column;
      gap: 12px;
    }
    .detail-pane {
      flex: 1;
      padding: 18px 22px 22px;
      min-width: 0;
    }
    .item-list {
      list-style: none;
      padding: 0;
      margin: 0;
      display: flex;
      flex-direction: column;
      gap: 8px;
    }
    .list-item {
      display: flex;
      align-items: center;
      gap: 8px;
      padding: 8px 10px;
      border-radius: 10px;
      border: 1px solid transparent;
    }
    .list-item.active {
      border-color: #c7baa8;
      background: #f6f0e6;
    }
    .list-item a {
      flex: 1;
      text-decoration: none;
      color: inherit;
    }
    .item-title {
      font-weight: 600;
      display: block;
    }
    .item-meta {
      color: #72685f;
      font-size: 12px;
    }
    .status-running { color: #8a6d00; }
    .status-completed { color: #2c6e35; }
    .status-failed { color: #a33a2e; }
    .field {
      display: flex;
      flex-direction: column;
      gap: 6px;
      margin-bottom: 12px;
    }
    input[type="text"],
    textarea {
      width: 100%;
      padding: 8px 10px;
      border-radius: 8px;
      border: 1px solid #cbbfae;
      font-family: inherit;
      font-size: 14px;
      background: #fffdf9;
      box-sizing: border-box;
    }
    textarea {
      min-height: 180px;
      resize: vertical;
    }
    .actions {
      display: flex;
      flex-wrap: wrap;
      gap: 10px;
      margin-top: 16px;
    }
    button {
      padding: 8px 14px;
      border-radius: 8px;
      border: 1px solid #bfb3a2;
      background: #efe6d7;
      font-family: inherit;
      cursor: pointer;
    }
    button.small {
      padding: 4px 10px;
      font-size: 13px;
    }
    button.danger {
      background: #f4d7d2;
      border-color: #d7a7a1;
    }
    .button-link {
      display: inline-block;
      padding: 6px 12px;
      border-radius: 8px;
      border: 1px solid #cbbfae;
      background: #f7f2e8;
      text-decoration: none;
      color: #2b2520;
      font-size: 14px;
    }
    .error {
      padding: 10px 12px;
      border-radius: 8px;
      background: #f7d9d6;
      border: 1px solid #d9a7a2;
      margin-bottom: 12px;
      color: #5b1d17;
    }
    .muted {
      color: #72685f;
    }
    .tools {
      border-top: 1px solid #e5ddcf;
      padding-top: 10px;
      font-size: 13px;
    }
    .tools ul {
      list-style: none;
      padding: 0;
      margin: 6px 0 0;
      display: flex;
      flex-direction: column;
      gap: 4px;
    }
    .result {
      margin-top: 14px;
      font-size: 15px;
      line-height: 1.5;
    }
    .result pre,
    pre.code {
      background: #fcf8f1;
      border: 1px solid #e0d6c6;
      border-radius: 8px;
      padding: 12px;
      overflow-x: auto;
      font-family: "Menlo", "Consolas", monospace;
      font-size: 13px;
      white-space: pre-wrap;
    }
    @media (max-width: 900px) {
      main {
        flex-direction: column;
      }
      .list-pane {
        width: auto;
      }
    }
  </style>
</head>
<body>
  <header>
    <h1>Blueprint Studio</h1>
    {{if .Initialized}}<span class="muted">{{.ProjectName}}</span>{{end}}
  </header>
  <main>
    {{if .Initialized}}
      <section class="pane list-pane">
        <strong>Analyses</strong>
        <ul class="item-list">
          {{range .Slots}}
            <li class="list-item {{if eq .Kind $.SelectedKind}}active{{end}}">
              <a href="/web/?kind={{.Kind}}">
                <span class="item-title">{{.Title}}</span>
                <span class="item-meta status-{{.Status}}">{{.Status}}{{if .FinishedAt}} · {{formatOptionalTime .FinishedAt}}{{end}}</span>
              </a>
              <form method="post" action="/web/start?kind={{.Kind}}">
                <button class="small" type="submit" {{if .Running}}disabled{{end}}>{{if .HasResult}}Re-run{{else}}Start{{end}}</button>
              </form>
            </li>
          {{end}}
        </ul>
        <div class="actions">
          <form method="post" action="/web/clear">
            <button class="danger" type="submit">Clear all</button>
          </form>
        </div>
        <div class="tools">
          <strong>Tool servers</strong>
          <ul>
            {{range .Tools}}
              <li>
                {{.Name}} ·
                {{if .Disabled}}<span class="muted">disabled</span>
                {{else if .Connected}}<span class="status-completed">{{.ToolCount}} tools</span>
                {{else}}<span class="status-failed">down</span>{{end}}
              </li>
            {{else}}
              <li class="muted">No tool servers.</li>
            {{end}}
          </ul>
        </div>
      </section>
      <section class="pane detail-pane">
        {{if .FormError}}<div class="error">{{.FormError}}</div>{{end}}
        {{if .ResultErr}}<div class="error">{{.ResultErr}}</div>{{end}}
        {{if .ResultHTML}}
          <h2>{{.ResultTitle}}</h2>
          <div class="actions">
            <a class="button-link" href="/web/download?kind={{.SelectedKind}}">Download</a>
          </div>
          <div class="result">{{.ResultHTML}}</div>
        {{else if .SelectedKind}}
          <h2>{{.ResultTitle}}</h2>
          <p class="muted">No result yet.</p>
        {{else}}
          <p class="muted">Select an analysis to view its result.</p>
        {{end}}
      </section>
    {{else}}
      <section class="pane detail-pane">
        {{if .FormError}}<div class="error">{{.FormError}}</div>{{end}}
        <h2>New Project</h2>
        <form method="post" action="/web/initialize">
          <div class="field">
            <label for="project-name">Project name</label>
            <input id="project-name" type="text" name="project_name" value="{{.ProjectName}}" required>
          </div>
          <div class="field">
            <label for="requirements">Requirements</label>
            <textarea id="requirements" name="requirements" required>{{.Requirements}}</textarea>
          </div>
          <div class="actions">
            <button type="submit">Initialize</button>
          </div>
        </form>
      </section>
    {{end}}
  </main>
</body>
</html>
`
