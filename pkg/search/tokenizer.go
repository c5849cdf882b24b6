package search

import (
	"strings"
)

// TokenType 查询词类型
type TokenType string

const (
	TokenInclude  TokenType = "include"
	TokenExclude  TokenType = "exclude"
	TokenOr       TokenType = "or"
	TokenWildcard TokenType = "wildcard"
	TokenExact    TokenType = "exact"
	TokenText     TokenType = "text"
)

// Token is one parsed unit of a search query.
type Token struct {
	Type  TokenType `json:"type"`
	Value string    `json:"value"`
}

func isOperator(r rune) bool {
	return r == '+' || r == '-' || r == '*'
}

func operatorType(r rune) TokenType {
	switch r {
	case '+':
		return TokenInclude
	case '-':
		return TokenExclude
	default:
		return TokenWildcard
	}
}

// orAt reports whether runes[i:] starts with an OR operator: "OR" in any case,
// one space, then a non-space operand.
func orAt(runes []rune, i int) bool {
	if i+3 >= len(runes) {
		return false
	}
	return (runes[i] == 'O' || runes[i] == 'o') &&
		(runes[i+1] == 'R' || runes[i+1] == 'r') &&
		runes[i+2] == ' ' &&
		runes[i+3] != ' '
}

// Tokenize splits a query into tokens in a single left-to-right scan.
//
//	'a b'  exact phrase (unterminated quote falls back to text)
//	+w     include        -w  exclude        *w  wildcard
//	a OR b text a, or b
//
// Operators count only at the start of the query or right after a space.
// Tokens that trim to empty are dropped. In exact match mode plain text
// tokens become exact tokens.
// Tokenize 单次扫描解析查询字符串
func Tokenize(query string, mode MatchMode) []Token {
	runes := []rune(query)
	n := len(runes)
	tokens := make([]Token, 0, 4)

	var buf strings.Builder
	emit := func(t TokenType, v string) {
		if strings.TrimSpace(v) == "" {
			return
		}
		if t == TokenText && mode == MatchExact {
			t = TokenExact
		}
		tokens = append(tokens, Token{Type: t, Value: v})
	}
	flush := func() {
		if buf.Len() > 0 {
			emit(TokenText, buf.String())
			buf.Reset()
		}
	}

	for i := 0; i < n; {
		r := runes[i]
		boundary := i == 0 || runes[i-1] == ' '

		switch {
		case r == ' ':
			flush()
			i++

		case r == '\'' && boundary:
			end := -1
			for j := i + 1; j < n; j++ {
				if runes[j] == '\'' {
					end = j
					break
				}
			}
			if end < 0 {
				// 引号未闭合，剩余内容作为普通文本
				buf.WriteString(string(runes[i+1:]))
				i = n
				continue
			}
			emit(TokenExact, string(runes[i+1:end]))
			i = end + 1

		case isOperator(r) && boundary:
			j := i + 1
			for j < n && runes[j] != ' ' && !isOperator(runes[j]) {
				j++
			}
			emit(operatorType(r), string(runes[i+1:j]))
			i = j

		case boundary && orAt(runes, i):
			j := i + 3
			for j < n && runes[j] != ' ' {
				j++
			}
			emit(TokenOr, string(runes[i+3:j]))
			i = j

		default:
			buf.WriteRune(r)
			i++
		}
	}
	flush()

	return tokens
}

// Serialize renders tokens back into query syntax. When operand values are
// plain words (no spaces, quotes or operator characters) and exact values hold
// no quote, Tokenize(Serialize(t)) yields t again.
func Serialize(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t.Type {
		case TokenInclude:
			parts = append(parts, "+"+t.Value)
		case TokenExclude:
			parts = append(parts, "-"+t.Value)
		case TokenWildcard:
			parts = append(parts, "*"+t.Value)
		case TokenExact:
			parts = append(parts, "'"+t.Value+"'")
		case TokenOr:
			parts = append(parts, "OR "+t.Value)
		default:
			parts = append(parts, t.Value)
		}
	}
	return strings.Join(parts, " ")
}
