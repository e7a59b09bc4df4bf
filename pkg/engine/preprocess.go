package engine

import "strings"

// preprocessSource rewrites sketch source into something zygomys accepts.
// Outside string literals it:
//
//   - turns `:name` keywords into the string "__kw_name", so keywords never
//     collide with user symbols;
//   - turns kebab-case identifiers into underscores (equal-length becomes
//     equal_length), since zygomys reads a bare hyphen as subtraction;
//   - turns `;` and `;;` line comments into `//` comments.
//
// String literals, `:=` and numeric minus signs pass through untouched.
func preprocessSource(source string) string {
	p := preprocessor{src: source}
	p.out.Grow(len(source) + len(source)/4)
	for p.pos < len(p.src) {
		p.step()
	}
	return p.out.String()
}

type preprocessor struct {
	src string
	pos int
	out strings.Builder
}

func (p *preprocessor) step() {
	c := p.src[p.pos]
	switch {
	case c == '"':
		p.quoted('"', true)
	case c == '`':
		p.quoted('`', false)
	case c == ';':
		p.comment()
	case c == ':' && p.at(p.pos+1) == '=':
		p.copy(2)
	case c == ':' && isLetter(p.at(p.pos+1)):
		p.keyword()
	case c == '-' && p.pos > 0 && isIdentChar(p.src[p.pos-1]) && isIdentStartChar(p.at(p.pos+1)):
		p.out.WriteByte('_')
		p.pos++
	default:
		p.copy(1)
	}
}

// at returns the byte at i, or 0 past the end.
func (p *preprocessor) at(i int) byte {
	if i < len(p.src) {
		return p.src[i]
	}
	return 0
}

func (p *preprocessor) copy(n int) {
	end := min(p.pos+n, len(p.src))
	p.out.WriteString(p.src[p.pos:end])
	p.pos = end
}

// quoted copies a literal delimited by q, including both delimiters.
func (p *preprocessor) quoted(q byte, escapes bool) {
	p.copy(1)
	for p.pos < len(p.src) && p.src[p.pos] != q {
		if escapes && p.src[p.pos] == '\\' {
			p.copy(2)
			continue
		}
		p.copy(1)
	}
	p.copy(1)
}

func (p *preprocessor) comment() {
	p.out.WriteString("//")
	for p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
	}
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		end = len(p.src) - p.pos
	}
	p.copy(end)
}

func (p *preprocessor) keyword() {
	start := p.pos + 1
	end := start
	for end < len(p.src) && isKWChar(p.src[end]) {
		end++
	}
	p.out.WriteByte('"')
	p.out.WriteString(kwPrefix)
	p.out.WriteString(p.src[start:end])
	p.out.WriteByte('"')
	p.pos = end
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isKWChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isIdentStartChar(c byte) bool { return isLetter(c) }
