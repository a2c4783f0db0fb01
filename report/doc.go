// Package report renders run records for people: Markdown, sanitized HTML
// (gomarkdown + bluemonday) and styled terminal output (lipgloss).
package report
