// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DemoView renders a static gallery of the client's visual
// components: the color palette, box border styles, a menu mock, post
// list rows, and a markdown sample. Used by the demo subcommand to
// check how the theme survives a given terminal and font.
func DemoView(width int) string {
	theme := DefaultTheme
	if width < 40 {
		width = 40
	}

	var sections []string

	header := lipgloss.NewStyle().
		Foreground(theme.TitleForeground).
		Background(theme.ScreenBackground).
		Bold(true).
		Render(" ■ 텔보드 구성 요소 미리보기")
	sections = append(sections, header, "")

	// Palette swatches.
	swatches := []struct {
		label string
		color lipgloss.Color
	}{
		{"바탕", theme.ScreenBackground},
		{"본문", theme.NormalText},
		{"선택", theme.SelectedBackground},
		{"제목", theme.TitleForeground},
		{"테두리", theme.BorderColor},
		{"새글", theme.AccentNew},
		{"책갈피", theme.AccentBookmark},
		{"태그", theme.AccentTag},
		{"오류", theme.AccentError},
	}
	var palette strings.Builder
	for _, swatch := range swatches {
		palette.WriteString(lipgloss.NewStyle().
			Background(swatch.color).
			Foreground(theme.ScreenBackground).
			Render(" " + swatch.label + " "))
		palette.WriteString(" ")
	}
	sections = append(sections, sectionTitle(theme, "색상"), palette.String(), "")

	// Border styles.
	single := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1).
		Render("일반 테두리")
	double := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1).
		Render("이중 테두리")
	sections = append(sections, sectionTitle(theme, "테두리"),
		lipgloss.JoinHorizontal(lipgloss.Top, single, " ", double), "")

	// Menu widget mock.
	menuRows := []string{"1. 게시판", "2. 내 책갈피", "3. 설정"}
	var menu strings.Builder
	for index, row := range menuRows {
		line := "  " + row
		if index == 0 {
			line = lipgloss.NewStyle().
				Foreground(theme.SelectedForeground).
				Background(theme.SelectedBackground).
				Bold(true).
				Render("▶ " + row)
		}
		menu.WriteString(line + "\n")
	}
	menuBox := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 2).
		Render(strings.TrimRight(menu.String(), "\n"))
	sections = append(sections, sectionTitle(theme, "메뉴"), menuBox, "")

	// Post list rows.
	star := lipgloss.NewStyle().Foreground(theme.AccentBookmark).Render("★")
	count := lipgloss.NewStyle().Foreground(theme.AccentNew).Render("[3]")
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	row := fmt.Sprintf(" %s 첫 모임 후기 %s  %s", star, count, faint.Render("sysop · 08-30"))
	selectedRow := lipgloss.NewStyle().
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground).
		Render(" 다음 정기 모임 안내            운영자 · 08-29 ")
	sections = append(sections, sectionTitle(theme, "게시물 줄"), row, selectedRow, "")

	// Markdown sample.
	sample := "## 모임 공지\n\n" +
		"이번 주 **토요일** 저녁에 모입니다.\n\n" +
		"- 장소: 신촌\n" +
		"- 준비물: `노트북`\n\n" +
		"> 늦으면 미리 알려 주세요.\n"
	sections = append(sections, sectionTitle(theme, "마크다운"),
		renderPostMarkdown(sample, theme, width-4))

	return strings.Join(sections, "\n")
}

func sectionTitle(theme Theme, label string) string {
	return lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Bold(true).
		Render("── " + label + " ──")
}
