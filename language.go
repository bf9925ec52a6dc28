package main

import (
	"strings"
)

// NoExtension is the Extension Key of files whose name has no suffix.
const NoExtension = "_"

// textExtensions is the fixed allow-list of extensions known to hold
// human-readable text. Anything missing from it is treated as binary.
var textExtensions = newExtensionSet(
	// Programming languages and templates
	"rs", "py", "js", "ts", "gleam", "java", "cpp", "c", "h", "cs", "go", "rb", "php",
	"swift", "kt", "groovy", "scala", "jsx", "tsx", "ps1", "rsbuild", "cson", "coffee",
	"ue4game", "uex", "graphql", "gql", "pug", "jade", "handlebars", "hbs", "mustache", "hjson",
	"elm", "clj", "cljs", "cljc", "mjml", "wxml", "swig", "twig", "jinja",
	"d", "glam",

	// Shell scripts
	"sh", "bash", "zsh", "fish", "bat", "cmd", "btn", "vbs",

	// Configuration
	"cfg", "config", "ini", "toml", "env", "conf", "rc", "vim", "bashrc", "zshrc",
	"fishconfig", "gitconfig", "gitignore",

	// Documentation and markup
	"rst", "adoc", "asciidoc", "md", "markdown",
	"mdown", "mkdown", "mkdn", "mkd", "mdwn", "mmd", "mdbase", "mdtext", "mdoc",

	// Web
	"html", "htm", "xml", "xhtml", "xsd", "xsl", "css", "sass", "scss", "less",

	// Data and misc text
	"csv", "tsv", "log", "sql", "pl", "pm",
	"yaml", "yml", "json", "txt", "text",
)

type extensionSet map[string]struct{}

func newExtensionSet(exts ...string) extensionSet {
	set := make(extensionSet, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func (s extensionSet) contains(ext string) bool {
	_, ok := s[ext]
	return ok
}

// isTextExtension reports whether ext is in the text allow-list.
// The lookup is case-insensitive and a leading dot is tolerated.
func isTextExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return false
	}
	return textExtensions.contains(ext)
}

// extensionKey returns the lowercased suffix after the last '.' in name, or
// NoExtension. A leading dot alone (".bashrc") does not start an extension.
func extensionKey(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return NoExtension
	}
	return strings.ToLower(name[i+1:])
}

// parseExtensions turns a comma-separated allow-list into normalized keys.
// Tokens are trimmed, lowercased and stripped of a leading dot; empty and
// duplicate tokens are dropped. A nil result means no allow-list.
func parseExtensions(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var exts []string
	seen := make(map[string]bool)
	for _, tok := range strings.Split(list, ",") {
		tok = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tok), "."))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		exts = append(exts, tok)
	}
	return exts
}
