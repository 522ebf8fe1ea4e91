package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/sunshine-terminal/internal/forecastlist"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

// Art is five lines tall, plus the card border
const todayRowHeight = 7

// renderRow renders a bound row with the layout its template calls for
func renderRow(row *forecastlist.Row, selected bool) string {
	if row.Template == forecastlist.TemplateToday {
		return renderTodayRow(row, selected)
	}
	return renderFutureRow(row, selected)
}

func renderTodayRow(row *forecastlist.Row, selected bool) string {
	art := todayArtStyle.Render(strings.Join(row.Icon.Lines, "\n"))

	info := lipgloss.JoinVertical(lipgloss.Left,
		todayDateStyle.Render(row.DateLabel),
		"",
		todayHighStyle.Render(row.High)+"  "+lowStyle.Render(row.Low),
		"",
		valueStyle.Render(row.Description),
	)

	style := todayRowStyle
	if selected {
		style = todaySelectedRowStyle
	}
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Center, art, info))
}

func renderFutureRow(row *forecastlist.Row, selected bool) string {
	icon := ""
	if len(row.Icon.Lines) > 0 {
		icon = row.Icon.Lines[0]
	}

	line := fmt.Sprintf("%s  %-14s  %-26s  %5s  %5s",
		lipgloss.NewStyle().Width(2).Render(icon),
		truncate(row.DateLabel, 14),
		truncate(row.Description, 26),
		row.High,
		row.Low,
	)

	if selected {
		return selectedRowStyle.Render(line)
	}
	return futureRowStyle.Render(line)
}

// renderDetail renders the selected day with its summary and map links
func renderDetail(record models.ForecastRecord, summary string) string {
	geo, osm := mapLinks(record)

	var sections []string
	sections = append(sections, titleStyle.Render(summary), "")
	sections = append(sections, detailLine("Condition", fmt.Sprintf("%d", record.WeatherConditionID)))
	if record.Coordinates != nil {
		sections = append(sections, detailLine("Coordinates",
			fmt.Sprintf("%.4f, %.4f", record.Coordinates.Latitude, record.Coordinates.Longitude)))
	}
	sections = append(sections,
		detailLine("Map", geo),
		detailLine("", osm),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func detailLine(label, value string) string {
	return labelStyle.Width(12).Render(label) + valueStyle.Render(value)
}

// mapLinks returns a geo: URI and an OpenStreetMap URL for the record,
// preferring coordinates over the location query.
func mapLinks(record models.ForecastRecord) (geo, osm string) {
	if c := record.Coordinates; c != nil {
		geo = fmt.Sprintf("geo:%.4f,%.4f", c.Latitude, c.Longitude)
		osm = fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.4f&mlon=%.4f#map=11/%.4f/%.4f",
			c.Latitude, c.Longitude, c.Latitude, c.Longitude)
		return geo, osm
	}
	q := url.QueryEscape(record.LocationSetting)
	return "geo:0,0?q=" + q, "https://www.openstreetmap.org/search?query=" + q
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
