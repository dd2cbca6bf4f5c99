// Package markdown renders content bodies to HTML and reads Markdown drafts
// with YAML front matter for the import command.
package markdown
