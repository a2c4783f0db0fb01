package tool

import (
	"strings"
	"unicode"
)

// writeKeywords may not appear anywhere in a read-only statement, which
// also catches writable CTEs and SELECT ... INTO.
var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true, "INTO": true,
	"DROP": true, "CREATE": true, "ALTER": true, "TRUNCATE": true,
	"GRANT": true, "REVOKE": true, "ATTACH": true, "DETACH": true,
	"VACUUM": true, "REINDEX": true, "PRAGMA": true,
}

// readKeywords are the allowed first words of a statement.
var readKeywords = map[string]bool{
	"SELECT": true, "WITH": true, "EXPLAIN": true, "VALUES": true, "SHOW": true, "TABLE": true,
}

// IsReadOnlyQuery reports whether every statement in query only reads data.
// Keywords inside string literals, quoted identifiers and comments are ignored.
func IsReadOnlyQuery(query string) bool {
	statements := 0
	for _, stmt := range sqlStatements(query) {
		if len(stmt) == 0 {
			continue
		}
		statements++
		if !readKeywords[stmt[0]] {
			return false
		}
		for _, word := range stmt {
			if writeKeywords[word] {
				return false
			}
		}
	}
	return statements > 0
}

// sqlStatements splits query into statements of upper-cased bare words.
func sqlStatements(query string) [][]string {
	var (
		statements [][]string
		current    []string
		word       strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			current = append(current, strings.ToUpper(word.String()))
			word.Reset()
		}
	}

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			flush()
			i = skipQuoted(runes, i, r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			flush()
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			flush()
			i += 2
			for i+1 < len(runes) && (runes[i] != '*' || runes[i+1] != '/') {
				i++
			}
			i++
		case r == ';':
			flush()
			statements = append(statements, current)
			current = nil
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return append(statements, current)
}

// skipQuoted returns the index of the quote closing the literal opened at start.
// A doubled quote is an escaped quote.
func skipQuoted(runes []rune, start int, quote rune) int {
	for i := start + 1; i < len(runes); i++ {
		if runes[i] != quote {
			continue
		}
		if i+1 < len(runes) && runes[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(runes)
}
