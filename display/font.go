package display

import "unicode"

const (
	// GlyphWidth is the horizontal advance of one character, including
	// one column of spacing.
	GlyphWidth = 4
	// GlyphHeight is the line height of the font, including one row of
	// spacing below the glyph.
	GlyphHeight = 6
	glyphRows   = 5
	glyphCols   = 3
)

// Glyph bitmaps for a 3x5 pixel font in a 4x6 cell. Lower case letters
// are drawn with their upper case glyph.
var glyphSource = map[rune][glyphRows]string{
	' ':  {"...", "...", "...", "...", "..."},
	'!':  {".#.", ".#.", ".#.", "...", ".#."},
	'"':  {"#.#", "#.#", "...", "...", "..."},
	'#':  {"#.#", "###", "#.#", "###", "#.#"},
	'$':  {".##", "##.", ".#.", ".##", "##."},
	'%':  {"#.#", "..#", ".#.", "#..", "#.#"},
	'&':  {".#.", "#.#", ".#.", "#.#", ".##"},
	'\'': {".#.", ".#.", "...", "...", "..."},
	'(':  {"..#", ".#.", ".#.", ".#.", "..#"},
	')':  {"#..", ".#.", ".#.", ".#.", "#.."},
	'*':  {"...", "#.#", ".#.", "#.#", "..."},
	'+':  {"...", ".#.", "###", ".#.", "..."},
	',':  {"...", "...", "...", ".#.", "#.."},
	'-':  {"...", "...", "###", "...", "..."},
	'.':  {"...", "...", "...", "...", ".#."},
	'/':  {"..#", "..#", ".#.", "#..", "#.."},
	'0':  {"###", "#.#", "#.#", "#.#", "###"},
	'1':  {".#.", "##.", ".#.", ".#.", "###"},
	'2':  {"###", "..#", "###", "#..", "###"},
	'3':  {"###", "..#", ".##", "..#", "###"},
	'4':  {"#.#", "#.#", "###", "..#", "..#"},
	'5':  {"###", "#..", "###", "..#", "###"},
	'6':  {"###", "#..", "###", "#.#", "###"},
	'7':  {"###", "..#", ".#.", ".#.", ".#."},
	'8':  {"###", "#.#", "###", "#.#", "###"},
	'9':  {"###", "#.#", "###", "..#", "###"},
	':':  {"...", ".#.", "...", ".#.", "..."},
	';':  {"...", ".#.", "...", ".#.", "#.."},
	'<':  {"..#", ".#.", "#..", ".#.", "..#"},
	'=':  {"...", "###", "...", "###", "..."},
	'>':  {"#..", ".#.", "..#", ".#.", "#.."},
	'?':  {"###", "..#", ".#.", "...", ".#."},
	'@':  {".#.", "#.#", "###", "#..", ".##"},
	'A':  {".#.", "#.#", "###", "#.#", "#.#"},
	'B':  {"##.", "#.#", "##.", "#.#", "##."},
	'C':  {".##", "#..", "#..", "#..", ".##"},
	'D':  {"##.", "#.#", "#.#", "#.#", "##."},
	'E':  {"###", "#..", "##.", "#..", "###"},
	'F':  {"###", "#..", "##.", "#..", "#.."},
	'G':  {".##", "#..", "#.#", "#.#", ".##"},
	'H':  {"#.#", "#.#", "###", "#.#", "#.#"},
	'I':  {"###", ".#.", ".#.", ".#.", "###"},
	'J':  {"..#", "..#", "..#", "#.#", ".#."},
	'K':  {"#.#", "#.#", "##.", "#.#", "#.#"},
	'L':  {"#..", "#..", "#..", "#..", "###"},
	'M':  {"#.#", "###", "###", "#.#", "#.#"},
	'N':  {"#.#", "###", "###", "###", "#.#"},
	'O':  {".#.", "#.#", "#.#", "#.#", ".#."},
	'P':  {"##.", "#.#", "##.", "#..", "#.."},
	'Q':  {".#.", "#.#", "#.#", "###", ".##"},
	'R':  {"##.", "#.#", "###", "##.", "#.#"},
	'S':  {".##", "#..", ".#.", "..#", "##."},
	'T':  {"###", ".#.", ".#.", ".#.", ".#."},
	'U':  {"#.#", "#.#", "#.#", "#.#", ".##"},
	'V':  {"#.#", "#.#", "#.#", ".#.", ".#."},
	'W':  {"#.#", "#.#", "###", "###", "#.#"},
	'X':  {"#.#", "#.#", ".#.", "#.#", "#.#"},
	'Y':  {"#.#", "#.#", ".#.", ".#.", ".#."},
	'Z':  {"###", "..#", ".#.", "#..", "###"},
	'[':  {"###", "#..", "#..", "#..", "###"},
	'\\': {"#..", "#..", ".#.", "..#", "..#"},
	']':  {"###", "..#", "..#", "..#", "###"},
	'^':  {".#.", "#.#", "...", "...", "..."},
	'_':  {"...", "...", "...", "...", "###"},
	'`':  {"#..", ".#.", "...", "...", "..."},
	'{':  {".##", ".#.", "#..", ".#.", ".##"},
	'|':  {".#.", ".#.", ".#.", ".#.", ".#."},
	'}':  {"##.", ".#.", "..#", ".#.", "##."},
	'~':  {"...", "..#", "###", "#..", "..."},
}

// glyph holds one bitmask per row, bit 2 is the leftmost column.
type glyph [glyphRows]uint8

var glyphs = compileGlyphs(glyphSource)

func compileGlyphs(src map[rune][glyphRows]string) map[rune]glyph {
	ret := make(map[rune]glyph, len(src))
	for r, rows := range src {
		var g glyph
		for y, row := range rows {
			for x := 0; x < glyphCols && x < len(row); x++ {
				if row[x] == '#' {
					g[y] |= 1 << (glyphCols - 1 - x)
				}
			}
		}
		ret[r] = g
	}
	return ret
}

func lookupGlyph(r rune) glyph {
	if g, ok := glyphs[unicode.ToUpper(r)]; ok {
		return g
	}
	return glyphs['?']
}

// TextWidth returns the number of columns text occupies when drawn.
func TextWidth(text string) int {
	return len([]rune(text)) * GlyphWidth
}
