package server

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: system-ui, sans-serif; background: #0e1117; color: #e6e6e6; }
  header { padding: 16px 24px; display: flex; align-items: center; gap: 16px; border-bottom: 1px solid #262a33; }
  header h1 { font-size: 1.4rem; margin: 0; }
  #lottie { width: 150px; height: 150px; }
  nav { display: flex; gap: 4px; padding: 0 24px; border-bottom: 1px solid #262a33; }
  nav a { padding: 10px 14px; color: #9aa4b2; text-decoration: none; border-bottom: 2px solid transparent; }
  nav a.active { color: #fff; border-color: #ff4b4b; }
  .layout { display: flex; }
  aside { width: 280px; padding: 16px 24px; border-right: 1px solid #262a33; min-height: 80vh; }
  main { flex: 1; padding: 16px 24px; }
  section.tab { display: none; }
  section.tab.active { display: block; }
  .kpis { display: flex; gap: 16px; margin-bottom: 16px; }
  .kpi { background: #161a23; padding: 12px 16px; border-radius: 8px; min-width: 140px; }
  .kpi b { display: block; font-size: 1.4rem; }
  .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(480px, 1fr)); gap: 16px; }
  figure { margin: 0; background: #fff; border-radius: 8px; padding: 4px; }
  figure img { width: 100%; display: block; }
  figcaption { color: #333; font-size: .85rem; padding: 4px 8px; }
  table { border-collapse: collapse; width: 100%; margin: 12px 0; }
  td, th { border-bottom: 1px solid #262a33; padding: 4px 8px; text-align: left; }
  label { display: block; margin: 10px 0 4px; font-size: .85rem; color: #9aa4b2; }
  input, select, button { background: #161a23; color: #e6e6e6; border: 1px solid #303643; border-radius: 4px; padding: 4px 6px; }
  .channels { max-height: 220px; overflow-y: auto; border: 1px solid #303643; padding: 6px; border-radius: 4px; }
  .channels label { display: flex; gap: 6px; margin: 2px 0; color: #e6e6e6; }
  .warn { color: #f5c451; }
  a { color: #6cb4ff; }
</style>
</head>
<body>
<header>
  {{if .Lottie}}<div id="lottie"></div>{{end}}
  <div>
    <h1>{{.Title}} Dashboard</h1>
    <p>Dive into YouTube trending insights.</p>
  </div>
</header>
<nav>
  <a href="#dashboard" data-tab="dashboard" class="active">Dashboard</a>
  <a href="#explorer" data-tab="explorer">Interactive Video Explorer</a>
  <a href="#pro" data-tab="pro">Pro Insights</a>
  <a href="#about" data-tab="about">About</a>
</nav>
<div class="layout">
<aside>
  <form method="post" action="/upload" enctype="multipart/form-data">
    <label for="file">Upload YouTube trending CSV</label>
    <input id="file" type="file" name="file" accept=".csv,.tsv,text/csv" required>
    <button type="submit">Upload</button>
  </form>
  {{if .HasData}}
  <form method="get" action="/">
    <input type="hidden" name="channels" value="none">
    {{if .HasChannel}}
    <label>Channels</label>
    <div class="channels">
      {{range .Channels}}<label><input type="checkbox" name="channel" value="{{.Name}}"{{if .Selected}} checked{{end}}>{{.Name}}</label>{{end}}
    </div>
    {{end}}
    {{if .HasTrending}}
    <label>Trending date</label>
    <input type="date" name="trending_from" value="{{.TrendingFrom}}">
    <input type="date" name="trending_to" value="{{.TrendingTo}}">
    {{end}}
    {{if .HasPublish}}
    <label>Publish date</label>
    <input type="date" name="publish_from" value="{{.PublishFrom}}">
    <input type="date" name="publish_to" value="{{.PublishTo}}">
    {{end}}
    {{if .HasViews}}
    <label>Views</label>
    <input type="number" name="min_views" value="{{.MinViews}}" placeholder="min">
    <input type="number" name="max_views" value="{{.MaxViews}}" placeholder="max">
    {{end}}
    <p><button type="submit">Apply filters</button> <a href="/">Reset</a></p>
  </form>
  {{end}}
</aside>
<main>
<section id="tab-dashboard" class="tab active">
  {{if .HasData}}
  <div class="kpis">
    <div class="kpi"><b>{{.Rows}}</b>rows of {{.Total}}</div>
    {{if .HasViews}}<div class="kpi"><b>{{num .TotalViews}}</b>total views</div>{{end}}
    {{if .HasEngagement}}<div class="kpi"><b>{{pct .AvgEngagement}}</b>avg engagement</div>{{end}}
  </div>
  {{range .Warnings}}<p class="warn">{{.}}</p>{{end}}
  <p><a href="{{.DownloadURL}}">Download filtered data</a></p>
  <div class="grid">
    {{range .Dashboard}}<figure><img src="{{.Src}}" alt="{{.Title}}"><figcaption>{{.Title}}</figcaption></figure>{{end}}
  </div>
  {{if .TopChannels}}
  <h3>Top channels</h3>
  <table><tr><th>Channel</th><th>Trending entries</th></tr>
  {{range .TopChannels}}<tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>{{end}}
  </table>
  {{end}}
  {{else}}
  <p>Upload a YouTube trending CSV to begin.</p>
  {{end}}
</section>
<section id="tab-explorer" class="tab">
  {{if .Videos}}
  <form method="get" action="/#explorer">
    {{range .FilterParams}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">{{end}}
    <label for="video">Select a video</label>
    <select id="video" name="video" onchange="this.form.submit()">
      {{range .Videos}}<option value="{{.ID}}"{{if eq .ID $.SelectedVideo}} selected{{end}}>{{.ID}}</option>{{end}}
    </select>
  </form>
  {{if .EmbedURL}}
  <p><iframe width="640" height="360" src="{{.EmbedURL}}" title="{{.SelectedVideo}}" allowfullscreen></iframe></p>
  <p><a href="{{.WatchURL}}" target="_blank" rel="noopener">Open on YouTube</a></p>
  {{end}}
  {{else}}
  <p>No video ids available in the current data.</p>
  {{end}}
</section>
<section id="tab-pro" class="tab">
  {{if .HasData}}
  <div class="grid">
    {{range .Pro}}<figure><img src="{{.Src}}" alt="{{.Title}}"><figcaption>{{.Title}}</figcaption></figure>{{end}}
  </div>
  {{if .Words}}
  <h3>Most frequent title words</h3>
  <p>{{range $i, $w := .Words}}{{if $i}}, {{end}}{{$w.Word}} ({{$w.Count}}){{end}}</p>
  {{end}}
  {{if .Summaries}}
  <h3>Numeric summary</h3>
  <table><tr><th>Column</th><th>Count</th><th>Mean</th><th>Median</th><th>Min</th><th>Max</th></tr>
  {{range .Summaries}}<tr><td>{{.Column}}</td><td>{{.Count}}</td><td>{{printf "%.4g" .Mean}}</td><td>{{printf "%.4g" .Median}}</td><td>{{printf "%.4g" .Min}}</td><td>{{printf "%.4g" .Max}}</td></tr>{{end}}
  </table>
  {{end}}
  {{else}}
  <p>Upload a dataset to see advanced insights.</p>
  {{end}}
</section>
<section id="tab-about" class="tab">
  <h3>About</h3>
  <p>Explore YouTube trending exports: filter by channel, trending and publish dates and views,
  inspect engagement, correlations and title vocabulary, and download the filtered rows as CSV.</p>
</section>
</main>
</div>
<script>
(function () {
  function show(name) {
    document.querySelectorAll("section.tab").forEach(function (s) { s.classList.toggle("active", s.id === "tab-" + name); });
    document.querySelectorAll("nav a").forEach(function (a) { a.classList.toggle("active", a.dataset.tab === name); });
  }
  document.querySelectorAll("nav a").forEach(function (a) {
    a.addEventListener("click", function () { show(a.dataset.tab); });
  });
  if (location.hash) { show(location.hash.slice(1)); }
})();
</script>
{{if .Lottie}}
<script src="https://cdnjs.cloudflare.com/ajax/libs/lottie-web/5.12.2/lottie.min.js"></script>
<script>
lottie.loadAnimation({
  container: document.getElementById("lottie"),
  renderer: "svg", loop: true, autoplay: true,
  animationData: {{.Lottie.Data}}
});
</script>
{{end}}
</body>
</html>
`
