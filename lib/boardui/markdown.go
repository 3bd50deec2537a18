// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// postParser is initialized once and reused. The goldmark Parser is
// safe to share; each Parse call creates its own state.
var (
	postParser     goldmark.Markdown
	postParserOnce sync.Once
)

func getPostParser() goldmark.Markdown {
	postParserOnce.Do(func() {
		postParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return postParser
}

// renderPostMarkdown renders a post body as styled terminal text at
// the given width. Soft line breaks within paragraphs become spaces so
// hard-wrapped source reflows at any terminal width; fenced code
// blocks keep their formatting and get chroma highlighting.
func renderPostMarkdown(body string, theme Theme, width int) string {
	if body == "" {
		return ""
	}
	source := []byte(body)
	document := getPostParser().Parser().Parse(text.NewReader(source))

	// Force ANSI256: this output is always for the bubbletea screen,
	// so bypass profile auto-detection (which yields plain text in
	// test environments with no TTY).
	lip := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lip.SetColorProfile(termenv.ANSI256)

	walker := &postRenderer{
		source: source,
		theme:  theme,
		width:  width,
		lip:    lip,
	}
	ast.Walk(document, walker.walk)

	return strings.TrimRight(walker.output.String(), "\n")
}

// postRenderer walks a goldmark AST and accumulates styled terminal
// text. A direct ast.Walk fits better than goldmark's renderer
// interface because terminal output needs accumulate-then-wrap
// semantics: inline content collects in a buffer and is word-wrapped
// as a unit when the containing block closes.
type postRenderer struct {
	source []byte
	theme  Theme
	width  int
	lip    *lipgloss.Renderer

	output strings.Builder

	// Inline accumulator, flushed with word-wrap when the containing
	// paragraph or heading closes.
	inline strings.Builder

	// Prefix stack for nested containers (blockquotes, list bodies).
	prefixes    []prefixEntry
	prefix      string
	prefixWidth int

	// pendingBullet replaces the prefix for the next emitted line
	// only (the first line of a list item).
	pendingBullet string

	// Inline style depth. Counters rather than booleans so nested
	// emphasis unwinds correctly.
	boldDepth   int
	italicDepth int
	strikeDepth int

	lists []listLevel

	// Trailing newline count at the end of output, for blank line
	// management between blocks.
	trailing int
}

type prefixEntry struct {
	text  string
	width int
}

type listLevel struct {
	ordered bool
	counter int
	tight   bool
}

func (r *postRenderer) style() lipgloss.Style {
	return r.lip.NewStyle()
}

// contentWidth is the wrap width after nesting prefixes, clamped so
// deep nesting cannot produce degenerate single-character columns.
func (r *postRenderer) contentWidth() int {
	width := r.width - r.prefixWidth
	if width < 10 {
		width = 10
	}
	return width
}

func (r *postRenderer) pushPrefix(text string, width int) {
	r.prefixes = append(r.prefixes, prefixEntry{text: text, width: width})
	r.prefix += text
	r.prefixWidth += width
}

func (r *postRenderer) popPrefix() {
	if len(r.prefixes) == 0 {
		return
	}
	top := r.prefixes[len(r.prefixes)-1]
	r.prefixes = r.prefixes[:len(r.prefixes)-1]
	r.prefix = r.prefix[:len(r.prefix)-len(top.text)]
	r.prefixWidth -= top.width
}

func (r *postRenderer) inTightList() bool {
	return len(r.lists) > 0 && r.lists[len(r.lists)-1].tight
}

func (r *postRenderer) write(s string) {
	if s == "" {
		return
	}
	r.output.WriteString(s)

	count := 0
	allNewlines := true
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			count++
		} else {
			allNewlines = false
			break
		}
	}
	if allNewlines {
		r.trailing += count
	} else {
		r.trailing = count
	}
}

func (r *postRenderer) newline() {
	if r.trailing < 1 {
		r.write("\n")
	}
}

func (r *postRenderer) blankLine() {
	for r.trailing < 2 {
		r.write("\n")
	}
}

// takePrefix returns the prefix for the current line, consuming the
// pending bullet if one is queued.
func (r *postRenderer) takePrefix() string {
	if r.pendingBullet != "" {
		bullet := r.pendingBullet
		r.pendingBullet = ""
		return bullet
	}
	return r.prefix
}

// prefixed prepends the line prefix to every line of content; the
// first line gets the pending bullet when set.
func (r *postRenderer) prefixed(content string) string {
	lines := strings.Split(content, "\n")
	var out strings.Builder
	for i, line := range lines {
		if i == 0 {
			out.WriteString(r.takePrefix())
		} else {
			out.WriteString(r.prefix)
		}
		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// flushInline wraps the accumulated inline content to the current
// width, applies prefixes, and resets the buffer.
func (r *postRenderer) flushInline() string {
	content := r.inline.String()
	r.inline.Reset()
	if content == "" {
		return ""
	}
	content = ansi.Wrap(content, r.contentWidth(), " ,.;-+|")
	return r.prefixed(content)
}

func (r *postRenderer) styledText(content string) string {
	style := r.style().Foreground(r.theme.NormalText)
	if r.boldDepth > 0 {
		style = style.Bold(true)
	}
	if r.italicDepth > 0 {
		style = style.Italic(true)
	}
	if r.strikeDepth > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// inlineContent renders a node's children into a string, saving and
// restoring the inline buffer and style depth around the recursion.
func (r *postRenderer) inlineContent(node ast.Node) string {
	savedInline := r.inline.String()
	savedBold, savedItalic, savedStrike := r.boldDepth, r.italicDepth, r.strikeDepth

	r.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, r.walk)
	}
	result := r.inline.String()

	r.inline.Reset()
	r.inline.WriteString(savedInline)
	r.boldDepth, r.italicDepth, r.strikeDepth = savedBold, savedItalic, savedStrike
	return result
}

// highlight runs chroma over a code block. Unknown languages and
// highlighter errors fall back to faint plain text.
func (r *postRenderer) highlight(code, language string) string {
	if language == "" {
		return r.style().Foreground(r.theme.FaintText).Render(code)
	}
	var buf strings.Builder
	if err := quick.Highlight(&buf, code, language, "terminal256", "monokai"); err != nil {
		return r.style().Foreground(r.theme.FaintText).Render(code)
	}
	return buf.String()
}

func (r *postRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			r.inline.Reset()
		} else {
			flushed := r.flushInline()
			if flushed != "" {
				r.write(flushed)
				r.newline()
				if !r.inTightList() {
					r.blankLine()
				}
			}
		}

	case ast.KindHeading:
		if entering {
			r.inline.Reset()
		} else {
			r.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			r.renderFencedCode(node.(*ast.FencedCodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			r.renderIndentedCode(node.(*ast.CodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			r.pushPrefix("│ ", 2)
		} else {
			r.popPrefix()
			r.blankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			r.lists = append(r.lists, listLevel{
				ordered: list.IsOrdered(),
				counter: start,
				tight:   list.IsTight,
			})
		} else {
			if len(r.lists) > 0 {
				r.lists = r.lists[:len(r.lists)-1]
			}
			if !r.inTightList() {
				r.blankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			r.enterListItem()
		} else {
			r.popPrefix()
			if r.inTightList() {
				r.newline()
			} else {
				r.blankLine()
			}
		}

	case ast.KindThematicBreak:
		if entering {
			rule := r.style().Foreground(r.theme.BorderColor).
				Render(strings.Repeat("─", r.contentWidth()))
			r.blankLine()
			r.write(r.prefixed(rule))
			r.newline()
			r.blankLine()
		}

	case ast.KindHTMLBlock:
		if entering {
			r.renderHTMLBlock(node.(*ast.HTMLBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			r.handleText(node.(*ast.Text))
		}

	case ast.KindString:
		if entering {
			r.inline.WriteString(r.styledText(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			r.boldDepth += delta
		} else {
			r.italicDepth += delta
		}

	case ast.KindCodeSpan:
		if entering {
			r.renderCodeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			display := r.inlineContent(node)
			r.inline.WriteString(display)
			if url := string(node.(*ast.Link).Destination); url != "" {
				urlStyle := r.style().Foreground(r.theme.LinkForeground)
				r.inline.WriteString(" " + urlStyle.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(r.source))
			r.inline.WriteString(r.style().Foreground(r.theme.LinkForeground).Render(url))
		}

	case ast.KindImage:
		if entering {
			alt := r.inlineContent(node)
			faint := r.style().Foreground(r.theme.FaintText)
			r.inline.WriteString(faint.Render("[" + alt + "]"))
			if url := string(node.(*ast.Image).Destination); url != "" {
				r.inline.WriteString(" " + faint.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			raw := node.(*ast.RawHTML)
			var html strings.Builder
			for i := 0; i < raw.Segments.Len(); i++ {
				segment := raw.Segments.At(i)
				html.Write(segment.Value(r.source))
			}
			if stripped := StripHTMLTags(html.String()); stripped != "" {
				r.inline.WriteString(r.style().Foreground(r.theme.FaintText).Render(stripped))
			}
		}

	case extast.KindStrikethrough:
		if entering {
			r.strikeDepth++
		} else {
			r.strikeDepth--
		}

	case extast.KindTable:
		if entering {
			r.renderTable(node.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				done := r.style().Foreground(r.theme.AccentTag)
				r.inline.WriteString(done.Render("[x]") + " ")
			} else {
				r.inline.WriteString(r.styledText("[ ] "))
			}
		}
	}

	return ast.WalkContinue, nil
}

func (r *postRenderer) leaveHeading(heading *ast.Heading) {
	// Headings carry their own style; strip the inline styling that
	// styledText already applied to the collected text.
	content := ansi.Strip(r.inline.String())
	r.inline.Reset()
	if content == "" {
		return
	}

	style := r.style().Bold(true)
	if heading.Level <= 2 {
		style = style.Foreground(r.theme.HeaderForeground)
	} else {
		style = style.Foreground(r.theme.NormalText)
	}

	wrapped := ansi.Wrap(style.Render(content), r.contentWidth(), " ,.;-+|")
	r.blankLine()
	r.write(r.prefixed(wrapped))
	r.newline()
	r.blankLine()
}

func (r *postRenderer) renderFencedCode(node *ast.FencedCodeBlock) {
	language := string(node.Language(r.source))
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(r.source))
	}

	highlighted := r.highlight(code.String(), language)
	r.blankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		r.write(r.takePrefix() + line)
		r.newline()
	}
	r.blankLine()
}

func (r *postRenderer) renderIndentedCode(node *ast.CodeBlock) {
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(r.source))
	}

	faint := r.style().Foreground(r.theme.FaintText)
	r.blankLine()
	for _, line := range strings.Split(strings.TrimRight(code.String(), "\n"), "\n") {
		r.write(r.takePrefix() + faint.Render(line))
		r.newline()
	}
	r.blankLine()
}

func (r *postRenderer) renderHTMLBlock(node *ast.HTMLBlock) {
	var html strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		html.Write(segment.Value(r.source))
	}
	stripped := strings.TrimSpace(StripHTMLTags(html.String()))
	if stripped != "" {
		faint := r.style().Foreground(r.theme.FaintText)
		r.write(r.prefixed(faint.Render(stripped)))
		r.newline()
		r.blankLine()
	}
}

func (r *postRenderer) enterListItem() {
	if len(r.lists) == 0 {
		return
	}
	top := &r.lists[len(r.lists)-1]

	var bullet string
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	} else {
		bullet = "- "
	}

	width := len(bullet) // ASCII bullets: byte length equals visual width.
	// The bullet replaces the whole prefix for the item's first line.
	r.pendingBullet = r.prefix + bullet
	r.pushPrefix(strings.Repeat(" ", width), width)
}

func (r *postRenderer) handleText(node *ast.Text) {
	value := string(node.Segment.Value(r.source))
	r.inline.WriteString(r.styledText(value))

	if node.SoftLineBreak() {
		// Soft breaks become spaces so hard-wrapped source reflows.
		r.inline.WriteString(" ")
	}
	if node.HardLineBreak() {
		r.inline.WriteString("\n")
	}
}

func (r *postRenderer) renderCodeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			code.Write(child.Segment.Value(r.source))
		case *ast.String:
			code.Write(child.Value)
		}
	}
	codeStyle := r.style().Foreground(r.theme.AccentTag)
	r.inline.WriteString(codeStyle.Render(code.String()))
}

func (r *postRenderer) renderTable(table *extast.Table) {
	alignments := table.Alignments

	var header []string
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			header = r.collectRow(child)
		case extast.KindTableRow:
			rows = append(rows, r.collectRow(child))
		}
	}

	columns := len(header)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return
	}

	widths := make([]int, columns)
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < columns {
				if w := lipgloss.Width(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	// Shrink proportionally when the table exceeds the content width,
	// with a floor of 3 characters per column.
	const gap = "  "
	total := len(gap) * (columns - 1)
	for _, w := range widths {
		total += w
	}
	if available := r.contentWidth(); total > available {
		usable := available - len(gap)*(columns-1)
		if usable < columns*3 {
			usable = columns * 3
		}
		for i := range widths {
			widths[i] = (widths[i] * usable) / total
			if widths[i] < 3 {
				widths[i] = 3
			}
		}
	}

	r.blankLine()

	if len(header) > 0 {
		bold := r.style().Bold(true).Foreground(r.theme.HeaderForeground)
		r.write(r.takePrefix() + r.formatRow(header, widths, alignments, bold))
		r.newline()

		var parts []string
		for _, w := range widths {
			parts = append(parts, strings.Repeat("─", w))
		}
		border := r.style().Foreground(r.theme.BorderColor)
		r.write(r.prefix + border.Render(strings.Join(parts, gap)))
		r.newline()
	}

	for _, row := range rows {
		r.write(r.prefix + r.formatRow(row, widths, alignments, r.style()))
		r.newline()
	}

	r.blankLine()
}

func (r *postRenderer) collectRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, r.inlineContent(cell))
		}
	}
	return cells
}

func (r *postRenderer) formatRow(cells []string, widths []int, alignments []extast.Alignment, base lipgloss.Style) string {
	const gap = "  "
	var parts []string
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}

		visible := lipgloss.Width(cell)
		if visible > width {
			cell = ansi.Truncate(cell, width, "…")
			visible = lipgloss.Width(cell)
		}
		padding := width - visible
		if padding < 0 {
			padding = 0
		}

		var alignment extast.Alignment
		if i < len(alignments) {
			alignment = alignments[i]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell += strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return base.Render(strings.Join(parts, gap))
}

// StripHTMLTags removes HTML tags, keeping only text content. Applied
// to raw HTML inside post bodies, and to stored markup before it is
// placed in the compose editor when editing an existing post.
func StripHTMLTags(html string) string {
	var out strings.Builder
	inTag := false
	for _, c := range html {
		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case !inTag:
			out.WriteRune(c)
		}
	}
	return out.String()
}
