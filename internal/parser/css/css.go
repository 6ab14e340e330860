package css

import (
	"errors"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.parseCSS(string(content)), nil
}

// ParseDeclarations parses the body of a style attribute
func (p *Parser) ParseDeclarations(block string) []*Declaration {
	return parseDeclarations(removeComments(block))
}

func (p *Parser) parseCSS(content string) *Stylesheet {
	stylesheet := &Stylesheet{}

	for _, ruleStr := range splitRules(removeComments(content)) {
		// @page, @media, @font-face and friends do not apply to a single
		// fixed-width capture.
		if strings.HasPrefix(ruleStr, "@") {
			continue
		}
		rule, err := p.parseRule(ruleStr)
		if err != nil {
			continue
		}
		stylesheet.Rules = append(stylesheet.Rules, rule)
	}

	return stylesheet
}

// parseRule parses a single CSS rule
func (p *Parser) parseRule(ruleStr string) (*Rule, error) {
	selectorStr, body, ok := strings.Cut(ruleStr, "{")
	if !ok {
		return nil, errors.New("invalid rule format")
	}

	selectors := parseSelectors(strings.TrimSpace(selectorStr))
	if len(selectors) == 0 {
		return nil, errors.New("no selectors found")
	}

	body = strings.TrimSuffix(strings.TrimSpace(body), "}")
	return &Rule{
		Selectors:    selectors,
		Declarations: parseDeclarations(body),
	}, nil
}

// parseSelectors parses CSS selectors
func parseSelectors(selectorStr string) []string {
	selectors := strings.Split(selectorStr, ",")
	result := make([]string, 0, len(selectors))

	for _, selector := range selectors {
		selector = strings.Join(strings.Fields(selector), " ")
		if selector != "" {
			result = append(result, selector)
		}
	}

	return result
}

// parseDeclarations splits on semicolons that are not inside parentheses or
// quotes, so url(data:image/png;base64,...) survives intact.
func parseDeclarations(declarationsStr string) []*Declaration {
	var result []*Declaration

	for _, declStr := range splitTopLevel(declarationsStr, ';') {
		declStr = strings.TrimSpace(declStr)
		if declStr == "" {
			continue
		}

		property, value, ok := strings.Cut(declStr, ":")
		if !ok {
			continue
		}

		property = strings.ToLower(strings.TrimSpace(property))
		value = strings.TrimSpace(value)

		important := false
		if strings.HasSuffix(value, "!important") {
			important = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		}
		if property == "" || value == "" {
			continue
		}

		result = append(result, &Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}

	return result
}

// splitTopLevel splits s on sep outside of (), "" and ''
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// removeComments removes CSS comments
func removeComments(content string) string {
	var result strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			result.WriteString(content)
			break
		}
		result.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			break
		}
		content = content[start+2+end+2:]
	}
	return result.String()
}

// splitRules splits CSS content into top-level rules, keeping nested
// at-rule blocks together so they can be skipped as a unit.
func splitRules(content string) []string {
	var rules []string
	var currentRule strings.Builder
	braceCount := 0

	for i := 0; i < len(content); i++ {
		char := content[i]

		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				currentRule.WriteByte(char)
				rules = append(rules, strings.TrimSpace(currentRule.String()))
				currentRule.Reset()
				continue
			}
			if braceCount < 0 {
				braceCount = 0
				continue
			}
		case ';':
			// statement at-rules such as @import url(...);
			if braceCount == 0 {
				currentRule.Reset()
				continue
			}
		}

		currentRule.WriteByte(char)
	}

	return rules
}
