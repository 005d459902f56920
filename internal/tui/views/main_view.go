package views

import (
	"fmt"
	"strings"

	"imgview/internal/tui/common"
	"imgview/internal/tui/styles"
)

func RenderMainView(m common.ModelReader) string {
	st := m.Styles()
	var sb strings.Builder

	sb.WriteString(renderTitle(m, st))
	sb.WriteString("\n")

	if preview := m.Preview(); preview != "" {
		sb.WriteString(st.Frame.Render(preview))
	} else {
		sb.WriteString(st.Frame.Render(st.Muted.Render(placeholder(m))))
	}

	if line := RenderInfoLine(m); line != "" {
		sb.WriteString("\n" + st.Text.Render(line))
	}
	if status := m.StatusView(); status != "" {
		sb.WriteString("\n" + status)
	}
	if view, active := m.Prompt(); active {
		sb.WriteString("\n" + view)
	}
	sb.WriteString("\n\n" + m.HelpView())

	return st.App.Render(sb.String())
}

// RenderInfoLine returns e.g. "2 / 5  cat.png  800x600 png, 1.2 MB"
func RenderInfoLine(m common.ModelReader) string {
	state := m.State()
	path, ok := state.Current()
	if !ok {
		return ""
	}
	index, total := state.Position()
	line := fmt.Sprintf("%d / %d  %s", index, total, state.Name())
	if info := m.Info(); info.Path == path {
		line += "  " + info.String()
	}
	return line
}

func renderTitle(m common.ModelReader, st styles.Styles) string {
	title := st.Title.Render("imgview")
	if dir := m.Directory(); dir != "" {
		title += " " + st.Muted.Render(dir)
	}
	return title
}

func placeholder(m common.ModelReader) string {
	switch {
	case m.Directory() == "":
		return "Press o to open a folder"
	case m.State().Empty():
		return "No images in " + m.Directory()
	default:
		return "Cannot display " + m.State().Name()
	}
}
