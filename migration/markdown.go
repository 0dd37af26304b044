package migration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/theimaginaryfoundation/convo-md/migration/normalize"
	"gopkg.in/yaml.v3"
)

// Labels holds the fixed strings used when rendering a conversation.
type Labels struct {
	Untitled           string
	EmptyQuestion      string
	UnlabelledQuestion string
	Answer             string
	EmptyAnswer        string
	NothingToExport    string
}

var labelSets = map[string]Labels{
	"en": {
		Untitled:           "Untitled conversation",
		EmptyQuestion:      "(empty question)",
		UnlabelledQuestion: "(unlabelled question)",
		Answer:             "Answer",
		EmptyAnswer:        "(no answer content)",
		NothingToExport:    "(no question/answer content to export)",
	},
	"zh": {
		Untitled:           "未命名会话",
		EmptyQuestion:      "（空问题）",
		UnlabelledQuestion: "（未标注问题）",
		Answer:             "回答",
		EmptyAnswer:        "（无回答内容）",
		NothingToExport:    "（无可导出的问答内容）",
	},
}

// DefaultLanguage is the label language used when none is requested.
const DefaultLanguage = "en"

// LabelsFor returns the label set for lang ("" selects DefaultLanguage).
func LabelsFor(lang string) (Labels, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	l, ok := labelSets[strings.ToLower(lang)]
	if !ok {
		return Labels{}, fmt.Errorf("LabelsFor: unsupported language %q (want en or zh)", lang)
	}
	return l, nil
}

// MarkdownOptions controls RenderMarkdown.
type MarkdownOptions struct {
	Labels Labels

	// FrontMatter prepends a YAML block describing the conversation.
	FrontMatter bool

	// Source is recorded in the front matter (typically the input file name).
	Source string
}

type frontMatter struct {
	Title          string `yaml:"title"`
	Source         string `yaml:"source,omitempty"`
	Turns          int    `yaml:"turns"`
	UserTurns      int    `yaml:"user_turns"`
	AssistantTurns int    `yaml:"assistant_turns"`
}

// RenderMarkdown renders conv as a Markdown document: the title as H1, each user turn as an H2
// question heading and each assistant turn under an H3 answer label with its own headings
// demoted one level. The result ends with exactly one newline.
func RenderMarkdown(conv normalize.Conversation, opts MarkdownOptions) (string, error) {
	var lines []string
	if opts.FrontMatter {
		fm, err := renderFrontMatter(conv, opts.Source)
		if err != nil {
			return "", err
		}
		lines = append(lines, fm)
	}
	lines = append(lines, "# "+conv.Title, "")

	if qa := qaLines(conv.Turns, opts.Labels); len(qa) > 0 {
		lines = append(lines, qa...)
	} else {
		lines = append(lines, opts.Labels.NothingToExport, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n") + "\n", nil
}

// HasQA reports whether turns contain any question or answer RenderMarkdown would print.
func HasQA(turns []normalize.Turn) bool {
	for _, t := range turns {
		if t.Role.Exported() && strings.TrimSpace(t.Text) != "" {
			return true
		}
	}
	return false
}

func renderFrontMatter(conv normalize.Conversation, source string) (string, error) {
	user, assistant := countTurns(conv.Turns)
	b, err := yaml.Marshal(frontMatter{
		Title:          conv.Title,
		Source:         source,
		Turns:          len(conv.Turns),
		UserTurns:      user,
		AssistantTurns: assistant,
	})
	if err != nil {
		return "", fmt.Errorf("renderFrontMatter: %w", err)
	}
	return "---\n" + string(b) + "---\n", nil
}

func countTurns(turns []normalize.Turn) (user, assistant int) {
	for _, t := range turns {
		switch t.Role {
		case normalize.RoleUser:
			user++
		case normalize.RoleAssistant:
			assistant++
		}
	}
	return user, assistant
}

func qaLines(turns []normalize.Turn, labels Labels) []string {
	var lines []string
	haveQuestion := false
	for _, t := range turns {
		body := strings.TrimSpace(t.Text)
		if body == "" {
			continue
		}
		switch t.Role {
		case normalize.RoleUser:
			lines = append(lines, "## "+questionHeading(body, labels), "")
			haveQuestion = true
		case normalize.RoleAssistant:
			if !haveQuestion {
				lines = append(lines, "## "+labels.UnlabelledQuestion, "")
				haveQuestion = true
			}
			answer := DemoteHeadings(body)
			if answer == "" {
				answer = labels.EmptyAnswer
			}
			lines = append(lines, "### "+labels.Answer, answer, "")
		}
	}
	return lines
}

func questionHeading(body string, labels Labels) string {
	if h := strings.Join(strings.Fields(body), " "); h != "" {
		return h
	}
	return labels.EmptyQuestion
}

var (
	fenceLine   = regexp.MustCompile("^\\s*```")
	headingLine = regexp.MustCompile(`^(\s*)(#{1,6})(\s+.*)$`)
)

// DemoteHeadings pushes every ATX heading in markdown down one level (capped at 6), leaving
// fenced code blocks untouched. The result is trimmed.
func DemoteHeadings(markdown string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	lines := strings.Split(markdown, "\n")
	inFence := false
	for i, line := range lines {
		if fenceLine.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := min(6, len(m[2])+1)
		lines[i] = m[1] + strings.Repeat("#", level) + m[3]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
