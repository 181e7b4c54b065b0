// Package resume extracts text and contact details from uploaded resumes.
package resume

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Result is what the parse endpoint returns.
type Result struct {
	Filename string   `json:"filename"`
	FileType string   `json:"fileType"`
	Size     int64    `json:"size"`
	Text     string   `json:"text"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Skills   []string `json:"skills"`
}

var skillKeywords = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript",
	"React", "Vue", "Angular", "Node.js", "Docker", "Kubernetes",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "AWS", "Azure", "GCP",
	"GraphQL", "REST", "Microservices", "Git", "CI/CD", "SQL",
	"Spring", "Django", ".NET", "PHP", "Salesforce", "SAP",
	"Machine Learning", "Data Science", "DevOps", "Selenium",
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-().]{8,}\d`)
	wordBoundary = regexp.MustCompile(`[A-Za-z0-9+#]`)
)

// Converter turns a stored document into plain text.
type Converter func(path string) (string, error)

func docconvText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// Parser stores uploads under a scratch directory, converts them and removes
// the copy once the text is extracted.
type Parser struct {
	dir     string
	convert Converter
}

// NewParser returns a Parser writing scratch files to dir.
func NewParser(dir string) *Parser {
	return &Parser{dir: dir, convert: docconvText}
}

// Parse reads r, named filename by the client, and extracts its contents.
func (p *Parser) Parse(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt":
	default:
		return nil, shared.Invalid("Unsupported file type: %s", ext)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(p.dir, uuid.NewString()+ext)
	size, err := save(path, r)
	defer os.Remove(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var text string
	if ext == ".txt" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read text file: %w", err)
		}
		text = string(raw)
	} else {
		text, err = p.convert(path)
		if err != nil {
			return nil, shared.Invalid("Could not read document: %v", err)
		}
	}
	text = strings.TrimSpace(text)
	return &Result{
		Filename: filepath.Base(filename),
		FileType: strings.TrimPrefix(ext, "."),
		Size:     size,
		Text:     text,
		Email:    FirstEmail(text),
		Phone:    FirstPhone(text),
		Skills:   MatchSkills(text),
	}, nil
}

func save(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create scratch file: %w", err)
	}
	defer f.Close()
	n, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("save upload: %w", err)
	}
	return n, nil
}

// FirstEmail returns the first email address in text.
func FirstEmail(text string) string {
	return emailPattern.FindString(text)
}

// FirstPhone returns the first run of at least ten digits that looks like a
// phone number, with surrounding whitespace trimmed.
func FirstPhone(text string) string {
	for _, m := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 10 && digits <= 15 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// MatchSkills returns the known skill keywords present in text as whole words.
func MatchSkills(text string) []string {
	lower := strings.ToLower(text)
	out := make([]string, 0)
	for _, skill := range skillKeywords {
		if containsWord(lower, strings.ToLower(skill)) {
			out = append(out, skill)
		}
	}
	return out
}

func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		before := i == 0 || !wordBoundary.MatchString(text[i-1:i])
		after := end == len(text) || !wordBoundary.MatchString(text[end:end+1])
		if before && after {
			return true
		}
		start = i + 1
	}
}
