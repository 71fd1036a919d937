package token

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ErrUnexpectedEOF is returned by ExpectToken when the end of the input has
// been reached.
var ErrUnexpectedEOF = errors.New("unexpected end of file")

// Scanner reads characters from a source and groups them into tokens. It
// keeps a single current token for lookahead and a put-back stack so that a
// character read one past the end of a token can be restored.
type Scanner struct {
	source   *bufio.Reader
	putBacks []rune
	token    Token
}

// NewScanner creates a Scanner over the given character source.
// GetToken returns nil until ScanToken is called for the first time.
func NewScanner(source io.Reader) *Scanner {
	return &Scanner{source: bufio.NewReader(source)}
}

// GetToken returns the token scanned by the most recent call to ScanToken.
// It is nil if ScanToken has never been called, or if the end of the input
// has been reached.
func (s *Scanner) GetToken() Token {
	return s.token
}

// ExpectToken returns the current token, failing with ErrUnexpectedEOF if
// the end of the input has been reached.
func (s *Scanner) ExpectToken() (Token, error) {
	if s.token == nil {
		return nil, ErrUnexpectedEOF
	}
	return s.token, nil
}

// ScanToken advances to the next token in the input and returns it. A nil
// token (with a nil error) means the end of the input was reached.
func (s *Scanner) ScanToken() (Token, error) {
	for {
		first, ok, err := s.nextNonSpaceChar()
		if err != nil {
			return nil, err
		}
		if !ok {
			s.token = nil
			return nil, nil
		}

		switch {
		case unicode.IsDigit(first):
			s.putBack(first)
			s.token, err = s.scanIntegerLiteral()
		case unicode.IsLetter(first) || first == '_':
			s.putBack(first)
			s.token, err = s.scanIdentifierOrKeyword()
		default:
			if first == '/' {
				second, ok, err := s.nextChar()
				if err != nil {
					return nil, err
				}
				if ok && second == '/' {
					if err := s.skipLineComment(); err != nil {
						return nil, err
					}
					continue
				}
				if ok {
					s.putBack(second)
				}
			}

			s.putBack(first)
			s.token, err = s.scanOperatorOrSeparator()
		}
		if err != nil {
			return nil, err
		}

		return s.token, nil
	}
}

// nextChar reads the next character to use for constructing tokens. The
// second return value is false once the end of the input is reached.
func (s *Scanner) nextChar() (rune, bool, error) {
	if n := len(s.putBacks); n > 0 {
		c := s.putBacks[n-1]
		s.putBacks = s.putBacks[:n-1]
		return c, true, nil
	}

	c, _, err := s.source.ReadRune()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error while reading source: %w", err)
	}
	return c, true, nil
}

// putBack restores a character returned by nextChar, essentially unreading
// it. The character is pushed onto a stack which nextChar pops from first.
func (s *Scanner) putBack(c rune) {
	s.putBacks = append(s.putBacks, c)
}

// nextNonSpaceChar reads characters until encountering one which is not
// whitespace.
func (s *Scanner) nextNonSpaceChar() (rune, bool, error) {
	for {
		c, ok, err := s.nextChar()
		if err != nil || !ok {
			return 0, false, err
		}
		if !unicode.IsSpace(c) {
			return c, true, nil
		}
	}
}

// skipLineComment reads characters until the next newline or the end of the
// input, leaving the scanner ready to resume token scanning.
func (s *Scanner) skipLineComment() error {
	for {
		c, ok, err := s.nextChar()
		if err != nil {
			return err
		}
		if !ok || c == '\n' {
			return nil
		}
	}
}

// scanIntegerLiteral scans a base-10 integer literal. The first non-digit
// character encountered is put back for the next token.
func (s *Scanner) scanIntegerLiteral() (Token, error) {
	value := int32(0)
	for {
		c, ok, err := s.nextChar()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if c < '0' || c > '9' {
			s.putBack(c)
			break
		}
		// Shift left by one place value and add the new digit
		value = value*10 + int32(c-'0')
	}

	return IntegerLiteral{Value: value}, nil
}

// scanIdentifierOrKeyword scans a word, which can contain digits after the
// first character, and produces either the matching keyword token or an
// Identifier.
func (s *Scanner) scanIdentifierOrKeyword() (Token, error) {
	var word strings.Builder
	for {
		c, ok, err := s.nextChar()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			s.putBack(c)
			break
		}
		word.WriteRune(c)
	}

	if keyword, found := exactMatch(word.String()); found {
		return keyword, nil
	}
	return Identifier{Name: word.String()}, nil
}

// scanOperatorOrSeparator scans an operator or separator token using a
// maximal-munch approach: characters are consumed as long as the accumulated
// content is a prefix of some basic token, then the content is backtracked
// one character at a time until it matches a basic token exactly. Given the
// input "===", the first token munched is "==" rather than "=".
func (s *Scanner) scanOperatorOrSeparator() (Token, error) {
	first, _, err := s.nextChar()
	if err != nil {
		return nil, err
	}

	munch := []rune{}
	c, ok := first, true
	for ok {
		munch = append(munch, c)
		if !hasPrefixMatch(string(munch)) {
			// The character just read cannot possibly be part of the token
			s.putBack(c)
			munch = munch[:len(munch)-1]
			break
		}

		c, ok, err = s.nextChar()
		if err != nil {
			return nil, err
		}
	}

	// Backtrack if needed until the content forms a valid token. This loop is
	// usually skipped, but would matter if, say, "." and "..." were tokens
	// but ".." was not: for the input "..=", the munch would be "..", and we
	// would have to backtrack to "." before matching.
	matched, found := exactMatch(string(munch))
	for !found && len(munch) > 0 {
		s.putBack(munch[len(munch)-1])
		munch = munch[:len(munch)-1]
		matched, found = exactMatch(string(munch))
	}

	if !found {
		return nil, fmt.Errorf("unexpected character %q", first)
	}
	return matched, nil
}
