// Package templates provides a template manager with dynamic reload support.
package templates

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"townbeat/internal/domain"
)

// Manager handles template loading and caching
type Manager struct {
	dir     string
	debug   bool
	cache   map[string]*template.Template
	mu      sync.RWMutex
	funcMap template.FuncMap
}

// NewManager creates a new template manager
// If debug is true, templates are reloaded on every request
// If debug is false, templates are cached in memory
func NewManager(dir string, debug bool) (*Manager, error) {
	cleanDir := filepath.Clean(dir)
	if _, err := os.Stat(cleanDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("template directory does not exist: %s", cleanDir)
	}

	m := &Manager{
		dir:   cleanDir,
		debug: debug,
		cache: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"formatDate":       formatDate,
			"formatTime":       formatTime,
			"formatMoney":      formatMoney,
			"safeHTML":         safeHTML,
			"add":              add,
			"sub":              sub,
			"tierLabel":        tierLabel,
			"eventStatusLabel": domain.EventStatusLabel,
		},
	}

	// If not in debug mode, pre-load all templates
	if !debug {
		if err := m.loadTemplates(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// loadTemplates loads all templates from the directory
func (m *Manager) loadTemplates() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layoutPath := filepath.Join(m.dir, "layouts", "base.html")
	layoutContent, err := os.ReadFile(layoutPath)
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}

	// Walk through the pages directory and parse each page with the layout
	pagesDir := filepath.Join(m.dir, "pages")
	err = filepath.Walk(pagesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}

		cleanPath := filepath.Clean(path)
		if !isSubPath(m.dir, cleanPath) {
			return fmt.Errorf("invalid template path detected: %s", path)
		}

		pageContent, err := os.ReadFile(cleanPath)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}

		relPath, err := filepath.Rel(m.dir, cleanPath)
		if err != nil {
			return err
		}
		templateName := filepath.ToSlash(relPath)

		tmpl := template.New("base").Funcs(m.funcMap)

		if _, err = tmpl.Parse(string(layoutContent)); err != nil {
			return fmt.Errorf("failed to parse layout for %s: %w", templateName, err)
		}
		if _, err = tmpl.Parse(string(pageContent)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", templateName, err)
		}

		m.cache[templateName] = tmpl
		return nil
	})

	return err
}

// Render renders a template with the given data
func (m *Manager) Render(w io.Writer, name string, data interface{}) error {
	if m.debug {
		// In debug mode, reload template on every request
		if err := m.loadSingle(name); err != nil {
			return fmt.Errorf("failed to reload templates: %w", err)
		}
	}

	m.mu.RLock()
	tmpl, ok := m.cache[name]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// loadSingle loads a single template (used in debug mode)
func (m *Manager) loadSingle(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layoutPath := filepath.Join(m.dir, "layouts", "base.html")
	layoutContent, err := os.ReadFile(layoutPath)
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}

	pagePath := filepath.Join(m.dir, name)
	pageContent, err := os.ReadFile(pagePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl := template.New("base").Funcs(m.funcMap)

	if _, err = tmpl.Parse(string(layoutContent)); err != nil {
		return fmt.Errorf("failed to parse layout: %w", err)
	}
	if _, err = tmpl.Parse(string(pageContent)); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	m.cache[name] = tmpl
	return nil
}

// isSubPath checks if child is a subpath of parent
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return !filepath.IsAbs(rel) && rel != ".." && len(rel) > 0 && rel[0] != '.'
}

// Template helper functions

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("3:04 PM")
}

// formatMoney renders an amount in cents
func formatMoney(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func add(a, b int) int { return a + b }
func sub(a, b int) int { return a - b }

func tierLabel(tier string) string {
	switch tier {
	case domain.TierFeatured:
		return "Featured"
	case domain.TierStandard:
		return "Standard"
	case domain.TierBasic:
		return "Basic"
	}
	return tier
}
