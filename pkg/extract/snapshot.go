// Package extract turns raw page state into typed records. Every entity is
// extracted by a fixed ordered list of independent strategies whose partial
// results are merged first-non-null; all strategies operate on an immutable
// PageSnapshot so they stay pure and testable without a browser.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NetworkCapture is one JSON response recorded during page load
type NetworkCapture struct {
	URL  string
	Body []byte
}

// PageSnapshot is everything captured from one loaded page: the final URL
// and title, the rendered markup, any in-page state objects the page
// exposed, and JSON responses captured off the wire.
type PageSnapshot struct {
	URL      string
	Title    string
	HTML     string
	State    []interface{}
	Captures []NetworkCapture

	doc *goquery.Document
}

// NewPageSnapshot builds a snapshot over rendered markup
func NewPageSnapshot(url, title, html string) *PageSnapshot {
	return &PageSnapshot{URL: url, Title: title, HTML: html}
}

// Document lazily parses the snapshot markup
func (s *PageSnapshot) Document() *goquery.Document {
	if s.doc == nil {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.HTML))
		if err != nil {
			// An unparseable snapshot yields an empty document; strategies
			// simply find nothing.
			doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
		}
		s.doc = doc
	}
	return s.doc
}

// apiPathTokens mark captured responses worth searching for entity fields
var apiPathTokens = []string{"/voyager/", "/graphql", "/api/"}

// APICaptures returns the captures whose URLs look like data-API responses
func (s *PageSnapshot) APICaptures() []NetworkCapture {
	var out []NetworkCapture
	for _, capture := range s.Captures {
		for _, token := range apiPathTokens {
			if strings.Contains(capture.URL, token) {
				out = append(out, capture)
				break
			}
		}
	}
	return out
}

// maxSearchDepth bounds the recursive field search through captured JSON
const maxSearchDepth = 10

// searchJSON finds the first value under any of the given keys, walking
// maps and arrays recursively up to maxSearchDepth.
func searchJSON(node interface{}, keys []string, depth int) interface{} {
	if depth > maxSearchDepth || node == nil {
		return nil
	}

	switch v := node.(type) {
	case map[string]interface{}:
		for _, key := range keys {
			if val, ok := v[key]; ok && val != nil {
				return val
			}
		}
		for _, child := range v {
			if found := searchJSON(child, keys, depth+1); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, child := range v {
			if found := searchJSON(child, keys, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

// asString coerces a JSON leaf to a non-empty string
func asString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// asInt coerces a JSON leaf to an int, accepting numbers and numeric strings
func asInt(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case json.Number:
		if f, err := n.Float64(); err == nil {
			i := int(f)
			return &i
		}
	case string:
		return ParseApproxCount(n)
	}
	return nil
}
