package main

// starterConfig is the til.yaml written by init. Missing keys fall back to
// built-in defaults, so the file only spells out the knobs people actually
// reach for.
const starterConfig = `# til configuration. Missing keys fall back to built-in defaults.
notes_dir: notes
base_url: ""

site:
  title: Today I Learned
  description: ""
  output_dir: public
  theme_dir: theme

lint:
  # Rule IDs: markdown/parse, link/url, fence/lang, frontmatter/schema,
  # note/title. Severities: off, warning, error.
  rules: {}
  schemes: [http, https, mailto]

storage:
  # memory, sqlite, or postgres. Database drivers need a dsn.
  driver: memory
  dsn: ""

watch:
  debounce: 250ms

logging:
  provider: console
  level: info
`

// starterTheme maps theme-relative paths to the files init scaffolds. The
// template names match the builder's fallbacks, so no theme manifest is
// required.
var starterTheme = map[string]string{
	"index.html":       starterHomeTemplate,
	"category.html":    starterCategoryTemplate,
	"note.html":        starterNoteTemplate,
	"assets/style.css": starterStylesheet,
}

const starterHomeTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .Helpers.WithBaseURL "/assets/style.css" }}">
</head>
<body>
  <header>
    <h1><a href="{{ .Helpers.WithBaseURL "/" }}">{{ .Site.Title }}</a></h1>
    {{ if .Site.Description }}<p>{{ .Site.Description }}</p>{{ end }}
  </header>
  <nav>
    <ul>
      {{ range .Nav.Items }}
      <li{{ if .Active }} class="active"{{ end }}><a href="{{ .URL }}">{{ .Label }}</a>{{ if .Count }} <span class="count">{{ .Count }}</span>{{ end }}</li>
      {{ end }}
    </ul>
  </nav>
  <main>
    {{ range .Page.Notes }}
    <article>
      <h2><a href="{{ .URL }}">{{ .Note.Title }}</a></h2>
      <p class="meta">{{ .Note.Category }} &middot; {{ formatDate .Note.UpdatedAt "Jan 2, 2006" }}</p>
      {{ if .Excerpt }}<p>{{ .Excerpt }}</p>{{ end }}
    </article>
    {{ end }}
  </main>
  <footer>
    <p>Generated {{ formatDate .Build.GeneratedAt "Jan 2, 2006" }}</p>
  </footer>
</body>
</html>
`

const starterCategoryTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Page.Title }} &middot; {{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .Helpers.WithBaseURL "/assets/style.css" }}">
</head>
<body>
  <header>
    <h1><a href="{{ .Helpers.WithBaseURL "/" }}">{{ .Site.Title }}</a></h1>
  </header>
  <nav>
    <ul>
      {{ range .Nav.Items }}
      <li{{ if .Active }} class="active"{{ end }}><a href="{{ .URL }}">{{ .Label }}</a>{{ if .Count }} <span class="count">{{ .Count }}</span>{{ end }}</li>
      {{ end }}
    </ul>
  </nav>
  <main>
    <h2>{{ .Page.Title }}</h2>
    {{ range .Page.Notes }}
    <article>
      <h3><a href="{{ .URL }}">{{ .Note.Title }}</a></h3>
      <p class="meta">{{ formatDate .Note.UpdatedAt "Jan 2, 2006" }}</p>
      {{ if .Excerpt }}<p>{{ .Excerpt }}</p>{{ end }}
    </article>
    {{ end }}
  </main>
</body>
</html>
`

const starterNoteTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Page.Title }} &middot; {{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .Helpers.WithBaseURL "/assets/style.css" }}">
</head>
<body>
  <header>
    <h1><a href="{{ .Helpers.WithBaseURL "/" }}">{{ .Site.Title }}</a></h1>
  </header>
  <nav>
    <ul>
      {{ range .Nav.Items }}
      <li{{ if .Active }} class="active"{{ end }}><a href="{{ .URL }}">{{ .Label }}</a></li>
      {{ end }}
    </ul>
  </nav>
  <main>
    <article>
      <h2>{{ .Page.Note.Note.Title }}</h2>
      <p class="meta">
        {{ .Page.Note.Note.Category }} &middot; {{ formatDate .Page.Note.Note.UpdatedAt "Jan 2, 2006" }}
        {{ range .Page.Note.Note.Tags }}<span class="tag">{{ . }}</span>{{ end }}
      </p>
      {{ safeHTML .Page.Note.HTML }}
    </article>
  </main>
</body>
</html>
`

const starterStylesheet = `body {
  max-width: 46rem;
  margin: 0 auto;
  padding: 0 1rem 4rem;
  font-family: system-ui, sans-serif;
  line-height: 1.6;
  color: #1a1a1a;
}

header h1 a {
  color: inherit;
  text-decoration: none;
}

nav ul {
  list-style: none;
  padding: 0;
  display: flex;
  flex-wrap: wrap;
  gap: 0.75rem;
}

nav li.active a {
  font-weight: 600;
}

nav .count {
  color: #777;
  font-size: 0.85em;
}

article .meta {
  color: #777;
  font-size: 0.9em;
}

article .tag {
  margin-left: 0.5rem;
  padding: 0.1rem 0.4rem;
  background: #eee;
  border-radius: 3px;
  font-size: 0.8em;
}

pre {
  padding: 0.75rem;
  background: #f6f6f6;
  border-radius: 4px;
  overflow-x: auto;
}

code {
  font-family: ui-monospace, monospace;
  font-size: 0.95em;
}
`
