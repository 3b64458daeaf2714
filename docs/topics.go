// Package docs holds the user manual, one markdown file per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed *.md
var manual embed.FS

// index is the page listing the topics, it is not a topic itself.
const index = "readme.md"

// GetTopic returns the page of a topic. "*" returns the whole manual.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		all, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(all...)
	}
	page, err := manual.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("no manual page for %q: %w", topic, err)
	}
	return string(page), nil
}

// GetTopics joins the pages of topics, separated by a blank line.
func GetTopics(topics ...string) (string, error) {
	pages := make([]string, 0, len(topics))
	for _, topic := range topics {
		page, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		pages = append(pages, page)
	}
	return strings.Join(pages, "\n"), nil
}

// GetAllTopics lists the topics of the manual, in alphabetical order.
func GetAllTopics() ([]string, error) {
	files, err := fs.Glob(manual, "*.md")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(files))
	for _, f := range files {
		if f != index {
			topics = append(topics, strings.TrimSuffix(f, ".md"))
		}
	}
	return topics, nil
}

// Index returns the list of topics with their summary.
func Index() (string, error) {
	page, err := manual.ReadFile(index)
	return string(page), err
}
