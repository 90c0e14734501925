package pledge

import (
	"strconv"
	"strings"
)

// ExportText renders the pledge and its points as plain text.
func ExportText(p Pledge, points []string) string {
	lines := []string{}
	if p.Text != "" {
		lines = append(lines, "# "+p.Text)
	}
	if p.Explanation != "" {
		lines = append(lines, p.Explanation, "")
	}
	for i, pt := range points {
		lines = append(lines, strconv.Itoa(i+1)+". "+strings.TrimSpace(pt))
	}
	return strings.Join(lines, "\n")
}

// ShareText joins the share message and the campaign link.
func ShareText(text, link string) string {
	text = strings.TrimSpace(text)
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return text
	case text == "":
		return link
	}
	return text + " " + link
}
