// Package richtext holds the structured model behind text blocks.
//
// A Document is a list of lines (paragraphs, headings or list items), each a
// run of spans carrying inline marks. Editing happens through Commands that
// return a new Document; the stored form is a small HTML subset produced by
// HTML and read back by Parse, which drops any markup outside that subset.
package richtext
