package markdown

import (
	"regexp"
	"strings"
)

// Mode selects how matched markup is rewritten.
type Mode int

const (
	// ModeStrip removes markup delimiters, leaving only styled text.
	ModeStrip Mode = iota
	// ModeKeep styles the text but leaves the delimiters visible, so the
	// output can still be read (or re-parsed) as markup.
	ModeKeep
)

// SGR fragments. Inline rules close with the specific off-code rather than a
// full reset so they nest inside line-level styles without clobbering them.
const (
	sgrReset = "\x1b[0m"

	sgrBold      = "\x1b[1m"
	sgrBoldOff   = "\x1b[22m"
	sgrFaint     = "\x1b[2m"
	sgrItalic    = "\x1b[3m"
	sgrItalicOff = "\x1b[23m"
	sgrUnder     = "\x1b[4m"
	sgrUnderOff  = "\x1b[24m"
	sgrStrike    = "\x1b[9m"
	sgrStrikeOff = "\x1b[29m"

	sgrGreen  = "\x1b[32m"
	sgrYellow = "\x1b[33m"
	sgrBlue   = "\x1b[34m"
	sgrCyan   = "\x1b[36m"
	sgrFgOff  = "\x1b[39m"

	sgrH1 = "\x1b[1;4;36m"
	sgrH2 = "\x1b[1;36m"
	sgrH3 = "\x1b[1m"
	sgrH4 = "\x1b[4m"
)

// Escaped punctuation is masked into the Unicode private use area before any
// other rule runs, so a \* can never act as an emphasis delimiter, and
// restored after the last rule. Masked runes are invisible to every pattern
// in the table.
const escMaskBase = 0xE000

var escapeRe = regexp.MustCompile("\\\\([\\\\*_~`#>\\[\\]()!:-])")

func maskEscaped(ch byte) string {
	return string(rune(escMaskBase) + rune(ch))
}

func unmaskEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= escMaskBase && r < escMaskBase+0x80 {
			b.WriteByte(byte(r - escMaskBase))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// rule pairs one compiled pattern with its two rewrite forms. Both forms are
// built from the same submatches, which keeps the strip and keep outputs
// aligned on the same match boundaries.
type rule struct {
	name  string
	re    *regexp.Regexp
	strip func(m []string) string
	keep  func(m []string) string
}

func (r rule) apply(line string, mode Mode) string {
	return r.re.ReplaceAllStringFunc(line, func(match string) string {
		m := r.re.FindStringSubmatch(match)
		if mode == ModeKeep {
			return r.keep(m)
		}
		return r.strip(m)
	})
}

// newRules builds the rule table. Order matters: each rule sees the output
// of the previous one, and earlier rules consume the text later rules would
// otherwise rematch. Line-level rules anchor on ^ because rules are applied
// to one line at a time.
func newRules(width func() int) []rule {
	headingStyle := func(level int) string {
		switch level {
		case 1:
			return sgrH1
		case 2:
			return sgrH2
		case 3:
			return sgrH3
		default:
			return sgrH4
		}
	}

	return []rule{
		{
			name: "escape",
			re:   escapeRe,
			strip: func(m []string) string {
				return maskEscaped(m[1][0])
			},
			keep: func(m []string) string {
				return maskEscaped('\\') + maskEscaped(m[1][0])
			},
		},
		{
			name: "strikethrough",
			re:   regexp.MustCompile(`~~([^~\n]+)~~`),
			strip: func(m []string) string {
				return sgrStrike + m[1] + sgrStrikeOff
			},
			keep: func(m []string) string {
				return sgrStrike + "~~" + m[1] + "~~" + sgrStrikeOff
			},
		},
		{
			name: "bold",
			re:   regexp.MustCompile(`\*\*([^*\n](?:[^\n]*?[^*\n])?)\*\*`),
			strip: func(m []string) string {
				return sgrBold + m[1] + sgrBoldOff
			},
			keep: func(m []string) string {
				return sgrBold + "**" + m[1] + "**" + sgrBoldOff
			},
		},
		{
			// The guard group keeps ** sequences, already consumed or
			// not, from reading as italic delimiters. RE2 has no
			// lookbehind, so the guard character is re-emitted.
			name: "italic-star",
			re:   regexp.MustCompile(`(^|[^*])\*([^*\n]+)\*`),
			strip: func(m []string) string {
				return m[1] + sgrItalic + m[2] + sgrItalicOff
			},
			keep: func(m []string) string {
				return m[1] + sgrItalic + "*" + m[2] + "*" + sgrItalicOff
			},
		},
		{
			name: "italic-under",
			re:   regexp.MustCompile(`(^|[^_\w])_([^_\n]+)_`),
			strip: func(m []string) string {
				return m[1] + sgrItalic + m[2] + sgrItalicOff
			},
			keep: func(m []string) string {
				return m[1] + sgrItalic + "_" + m[2] + "_" + sgrItalicOff
			},
		},
		{
			name: "code",
			re:   regexp.MustCompile("`([^`\n]+)`"),
			strip: func(m []string) string {
				return sgrYellow + m[1] + sgrFgOff
			},
			keep: func(m []string) string {
				return sgrYellow + "`" + m[1] + "`" + sgrFgOff
			},
		},
		{
			name: "heading",
			re:   regexp.MustCompile(`^(#{1,4})[ \t]+(.*)$`),
			strip: func(m []string) string {
				return headingStyle(len(m[1])) + m[2] + sgrReset
			},
			keep: func(m []string) string {
				return headingStyle(len(m[1])) + m[1] + " " + m[2] + sgrReset
			},
		},
		{
			name: "blockquote",
			re:   regexp.MustCompile(`^(\s*)>[ \t]?(.*)$`),
			strip: func(m []string) string {
				return m[1] + sgrGreen + "┃" + sgrFgOff + " " + m[2]
			},
			keep: func(m []string) string {
				return m[1] + sgrGreen + ">" + sgrFgOff + " " + m[2]
			},
		},
		{
			name: "task",
			re:   regexp.MustCompile(`^(\s*)[-*+] \[([ xX])\] (.*)$`),
			strip: func(m []string) string {
				box := sgrFaint + "☐" + sgrReset
				if m[2] != " " {
					box = sgrGreen + "☑" + sgrFgOff
				}
				return listIndent(m[1]) + box + " " + m[3]
			},
			keep: func(m []string) string {
				return m[1] + sgrCyan + "- [" + m[2] + "]" + sgrFgOff + " " + m[3]
			},
		},
		{
			name: "list",
			re:   regexp.MustCompile(`^(\s*)([-*+]|\d{1,3}[.)])[ \t]+(.*)$`),
			strip: func(m []string) string {
				marker := "•"
				if m[2] != "-" && m[2] != "*" && m[2] != "+" {
					marker = m[2]
				}
				return listIndent(m[1]) + sgrCyan + marker + sgrFgOff + " " + m[3]
			},
			keep: func(m []string) string {
				return m[1] + sgrCyan + m[2] + sgrFgOff + " " + m[3]
			},
		},
		{
			name: "hr",
			re:   regexp.MustCompile(`^[ \t]*(-{3,}|\*{3,}|_{3,})[ \t]*$`),
			strip: func(m []string) string {
				w := width()
				if w <= 0 {
					w = 80
				}
				return sgrFaint + strings.Repeat("─", w) + sgrReset
			},
			keep: func(m []string) string {
				return sgrFaint + m[0] + sgrReset
			},
		},
		{
			name: "link",
			re:   regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\n]+)\)`),
			strip: func(m []string) string {
				return hyperlink(m[2], sgrUnder+sgrBlue+m[1]+sgrFgOff+sgrUnderOff)
			},
			keep: func(m []string) string {
				return hyperlink(m[2], sgrUnder+sgrBlue+"["+m[1]+"]("+m[2]+")"+sgrFgOff+sgrUnderOff)
			},
		},
		{
			name: "emoji",
			re:   regexp.MustCompile(`:([a-z0-9_+-]+):`),
			strip: func(m []string) string {
				if e, ok := emojiShortcodes[m[1]]; ok {
					return e
				}
				return m[0]
			},
			keep: func(m []string) string {
				return m[0]
			},
		},
	}
}

// hyperlink wraps text in an OSC 8 terminal hyperlink.
func hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\a" + text + "\x1b]8;;\a"
}

// listIndent normalizes a list item's leading whitespace to two spaces per
// nesting level. Depth comes from the whitespace count rather than the
// absolute column, so nesting stays stable whatever the marker width was.
func listIndent(lead string) string {
	cols := 0
	for _, r := range lead {
		if r == '\t' {
			cols += 4
		} else {
			cols++
		}
	}
	return strings.Repeat("  ", cols/2)
}

// applyRules runs the full table against one line, then restores any masked
// escapes.
func applyRules(rules []rule, line string, mode Mode) string {
	out := line
	for _, r := range rules {
		out = r.apply(out, mode)
	}
	return unmaskEscapes(out)
}
