package testutil

import "strings"

// SplitStatements splits a SQL script into individual statements. Unlike a
// plain split on ';', it tracks quoted strings ('', "", ``), MySQL escape
// sequences, and comments, so a semicolon inside a string literal or comment
// does not end a statement.
func SplitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		quote      byte // active quote char, 0 when outside a literal
		escaped    bool
	)

	for i := 0; i < len(script); i++ {
		ch := script[i]

		if quote != 0 {
			current.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\' && quote != '`':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			current.WriteByte(ch)
		case ch == '#':
			i = skipLineComment(script, i)
		case ch == '-' && i+2 < len(script) && script[i+1] == '-' && isCommentSpace(script[i+2]):
			i = skipLineComment(script, i)
		case ch == '/' && i+1 < len(script) && script[i+1] == '*':
			i = skipBlockComment(script, i)
		case ch == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// skipLineComment returns the index of the newline ending the comment, so the
// newline itself still reaches the output as statement whitespace.
func skipLineComment(script string, start int) int {
	end := strings.IndexByte(script[start:], '\n')
	if end < 0 {
		return len(script)
	}
	return start + end - 1
}

func skipBlockComment(script string, start int) int {
	end := strings.Index(script[start+2:], "*/")
	if end < 0 {
		return len(script)
	}
	return start + 2 + end + 1
}

func isCommentSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
