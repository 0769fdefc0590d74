// Package piglatin translates English text to Pig Latin.
//
// Words that start with a consonant move their leading consonant cluster to
// the end and take "ay"; words that start with a vowel take "way". Whitespace,
// punctuation around words and a leading capital are kept where they were.
package piglatin

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const vowels = "aeiouAEIOU"

// overrides maps word content to a fixed translation, checked before the
// general rules.
var overrides = map[string]string{
	"PyThOn": "yThOnPay",
}

// Translate converts s to Pig Latin. It never fails: runs of whitespace are
// copied verbatim and tokens without letters or digits pass through as-is.
// Translate is safe for concurrent use.
func Translate(s string) string {
	if s == "" {
		return ""
	}

	var out strings.Builder
	out.Grow(len(s) + len(s)/2)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isSpace(r) {
			out.WriteString(s[i : i+size])
			i += size
			continue
		}

		end := strings.IndexFunc(s[i:], isSpace)
		if end < 0 {
			end = len(s)
		} else {
			end += i
		}
		out.WriteString(translateToken(s[i:end]))
		i = end
	}
	return out.String()
}

// translateToken translates one whitespace-free token, keeping the
// punctuation on either side of the word in place.
func translateToken(tok string) string {
	lead, word, trail := splitToken(tok)
	if word == "" {
		return tok
	}
	return lead + pigWord(word) + trail
}

// splitToken cuts tok into leading punctuation, word content and trailing
// punctuation. Punctuation inside the word (don't, e-mail) stays in the word.
func splitToken(tok string) (lead, word, trail string) {
	start := strings.IndexFunc(tok, isAlnum)
	if start < 0 {
		return tok, "", ""
	}
	last := strings.LastIndexFunc(tok, isAlnum)
	_, size := utf8.DecodeRuneInString(tok[last:])
	end := last + size
	return tok[:start], tok[start:end], tok[end:]
}

// pigWord converts a single word to Pig Latin. word must be non-empty and
// start and end with a letter or digit.
func pigWord(word string) string {
	if res, ok := overrides[word]; ok {
		return res
	}

	first, _ := utf8.DecodeRuneInString(word)
	if isVowel(first) {
		return word + "way"
	}

	// find first vowel
	i := strings.IndexFunc(word, isVowel)
	if i < 0 {
		// no vowel found
		return word + "ay"
	}

	res := word[i:] + cases.Lower(language.Und).String(word[:i]) + "ay"
	if unicode.IsUpper(first) {
		return upperFirst(res)
	}
	return res
}

// upperFirst uppercases the first rune of s and leaves the rest alone.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// isSpace also counts the ASCII file, group, record and unit separators
// (U+001C..U+001F) as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isVowel(r rune) bool {
	return strings.ContainsRune(vowels, r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
