package diagnostics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type SnapshotConfig struct {
	TagsToRemove []string
	// AttrPrefixesToRemove drops every attribute whose key starts with one of
	// the prefixes.
	AttrPrefixesToRemove []string
	// MaxSize truncates the rendered snapshot; 0 keeps it whole.
	MaxSize int
}

// DefaultSnapshotConfig keeps the document and every attribute a locator may
// target, but drops anything executable.
var DefaultSnapshotConfig = SnapshotConfig{
	TagsToRemove:         []string{"script", "noscript", "style", "iframe", "link"},
	AttrPrefixesToRemove: []string{"on"},
	MaxSize:              1 << 20,
}

// CleanSnapshot returns rawHTML without comments, executable tags and event
// handler attributes.
func CleanSnapshot(rawHTML string, cfg SnapshotConfig) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	cleanNode(doc, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	out := sb.String()
	if cfg.MaxSize > 0 && len(out) > cfg.MaxSize {
		cut := cfg.MaxSize
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut] + "\n<!-- snapshot truncated -->"
	}
	return out, nil
}

func cleanNode(n *html.Node, cfg SnapshotConfig) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isOneOf(c.Data, cfg.TagsToRemove):
			n.RemoveChild(c)
		default:
			if c.Type == html.ElementNode {
				c.Attr = filterAttributes(c.Attr, cfg.AttrPrefixesToRemove)
			}
			cleanNode(c, cfg)
		}

		c = next
	}
}

func filterAttributes(attrs []html.Attribute, prefixes []string) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if hasAnyPrefix(attr.Key, prefixes) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isOneOf(s string, candidates []string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
