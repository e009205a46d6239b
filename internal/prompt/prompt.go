// Package prompt builds the completion prompts for the two report modes.
package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/physiomath/go-physiomath/internal/locale"
)

// DefaultTopic is used by Mine when the topic is blank.
const DefaultTopic = "Neuro-Immune Interaction"

// MaxTopicLength bounds the topic accepted by both builders, in runes.
const MaxTopicLength = 500

var (
	ErrEmptyTopic    = errors.New("topic is required")
	ErrTopicTooLong  = errors.New("topic too long")
	ErrPromptExecute = errors.New("prompt template failed")
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl"))

type mineData struct {
	Topic      string
	Language   string
	Researcher bool
}

type articleData struct {
	Topic       string
	Language    string
	Theorems    []string
	TheoremRefs string
}

// Mine builds the "mine unknown theories" prompt. A blank topic falls back
// to DefaultTopic. Researcher mode asks for assumptions and a refutation
// experiment.
func Mine(topic string, lang locale.Language, researcher bool) (string, error) {
	topic, err := normalizeTopic(topic)
	if err != nil {
		return "", err
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return execute("mine.tmpl", mineData{
		Topic:      topic,
		Language:   lang.Name(),
		Researcher: researcher,
	})
}

// Article builds the scientific article prompt. The topic is required. Each
// theorem contributes one "title: description" line in lang.
func Article(topic string, lang locale.Language, theorems []locale.Theorem) (string, error) {
	topic, err := normalizeTopic(topic)
	if err != nil {
		return "", err
	}
	if topic == "" {
		return "", ErrEmptyTopic
	}

	lines := make([]string, 0, len(theorems))
	for _, th := range theorems {
		lines = append(lines, th.Title.In(lang)+": "+th.Description.In(lang))
	}
	return execute("article.tmpl", articleData{
		Topic:       topic,
		Language:    lang.Name(),
		Theorems:    lines,
		TheoremRefs: theoremRefs(theorems),
	})
}

// theoremRefs turns ids like thm_4, thm_5 into "Thm 4, 5".
func theoremRefs(theorems []locale.Theorem) string {
	if len(theorems) == 0 {
		return "the theorems"
	}
	nums := make([]string, 0, len(theorems))
	for _, th := range theorems {
		_, n, ok := strings.Cut(th.ID, "_")
		if !ok {
			n = th.ID
		}
		nums = append(nums, n)
	}
	return "Thm " + strings.Join(nums, ", ")
}

func normalizeTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if n := len([]rune(topic)); n > MaxTopicLength {
		return "", fmt.Errorf("%w: %d characters (max %d)", ErrTopicTooLong, n, MaxTopicLength)
	}
	return topic, nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPromptExecute, name, err)
	}
	return buf.String(), nil
}
