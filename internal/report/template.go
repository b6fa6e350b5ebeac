package report

// ReportTemplate is the HTML template for the statement report.
// It is embedded as a Go constant.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }

  .kpis { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 12px; }
  .kpi { background: var(--section-bg); border: 1px solid var(--border); border-radius: 6px; padding: 12px; }
  .kpi .label { color: var(--muted); font-size: 0.8rem; text-transform: uppercase; }
  .kpi .value { font-size: 1.25rem; font-weight: 700; }

  .up { color: var(--green); }
  .down { color: var(--red); }
  .flat { color: var(--muted); }

  table { width: 100%; border-collapse: collapse; margin-bottom: 12px; font-size: 0.9rem; }
  th, td { padding: 6px 8px; border-bottom: 1px solid var(--border); }
  th { background: var(--section-bg); text-align: left; }
  td.num, th.num { text-align: right; font-variant-numeric: tabular-nums; }
  tr.total td { font-weight: 700; border-top: 2px solid var(--text); }
  tr.section td { background: var(--section-bg); font-weight: 600; }

  .notes { background: var(--section-bg); border-left: 3px solid var(--accent); padding: 4px 16px; }
  .charts { display: flex; flex-wrap: wrap; gap: 16px; align-items: flex-start; }
  .chart svg { max-width: 100%; height: auto; }

  @page { size: A4; margin: 15mm 10mm; }
  @media print {
    body { max-width: none; padding: 0; }
    .chart { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<div class="header">
  <h1>{{.Title}}</h1>
  <div class="muted">
    {{.StatementTitle}} &middot; {{.Period}}{{if .PreviousPeriod}} vs {{.PreviousPeriod}}{{end}} &middot; Generated {{.GeneratedAt}}
  </div>
</div>

<h2>Key Figures</h2>
<div class="kpis">
  {{range .KPIs}}
  <div class="kpi">
    <div class="label">{{.Label}}</div>
    <div class="value">{{.Value}}</div>
    {{if .Change}}<div class="{{.ChangeClass}}">{{.Arrow}} {{.Change}}</div>{{else}}<div class="flat">&mdash;</div>{{end}}
  </div>
  {{end}}
  <div class="kpi">
    <div class="label">Net Margin</div>
    <div class="value">{{.NetMargin}}</div>
  </div>
</div>

<h2>Statement</h2>
<table>
  <thead>
    <tr>
      <th>Line item</th>
      <th class="num">{{.Period}}</th>
      <th class="num">{{if .PreviousPeriod}}{{.PreviousPeriod}}{{else}}Previous{{end}}</th>
      <th class="num">Change</th>
      <th class="num">% of revenue</th>
    </tr>
  </thead>
  <tbody>
  {{range .Sections}}
    <tr class="section"><td colspan="5">{{.Title}}</td></tr>
    {{range .Rows}}
    <tr>
      <td{{if .Tooltip}} title="{{.Tooltip}}"{{end}}>{{.Name}}</td>
      <td class="num">{{.Value}}</td>
      <td class="num">{{if .Previous}}{{.Previous}}{{else}}&mdash;{{end}}</td>
      <td class="num {{.ChangeClass}}">{{if .Change}}{{.Arrow}} {{.Change}}{{else}}&mdash;{{end}}</td>
      <td class="num">{{.Share}}</td>
    </tr>
    {{end}}
    {{with .Total}}
    <tr class="total">
      <td>{{.Name}}</td>
      <td class="num">{{.Value}}</td>
      <td class="num">{{if .Previous}}{{.Previous}}{{else}}&mdash;{{end}}</td>
      <td class="num {{.ChangeClass}}">{{if .Change}}{{.Arrow}} {{.Change}}{{else}}&mdash;{{end}}</td>
      <td class="num">{{.Share}}</td>
    </tr>
    {{end}}
  {{end}}
  </tbody>
</table>

{{if .NotesHTML}}
<h2>Notes</h2>
<div class="notes">{{.NotesHTML}}</div>
{{end}}

<h2>Charts</h2>
<div class="charts">
  <div class="chart">{{.TrendChartSVG}}</div>
  <div class="chart">{{.SectionBarSVG}}</div>
  <div class="chart">{{.MarginGaugeSVG}}</div>
  {{if .PieChartSVG}}<div class="chart">{{.PieChartSVG}}</div>{{end}}
</div>

</body>
</html>
`
