package captions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WriteSRT renders entries back out in SubRip form.
func WriteSRT(entries []CaptionEntry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatSRTTimecode(e.Start), formatSRTTimecode(e.End), e.Text)
	}
	return b.String()
}

// WriteVTT renders entries back out as WebVTT.
func WriteVTT(entries []CaptionEntry) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", formatVTTTimecode(e.Start), formatVTTTimecode(e.End), e.Text)
	}
	return b.String()
}

func formatSRTTimecode(seconds float64) string {
	return formatTimecode(seconds, ",")
}

func formatVTTTimecode(seconds float64) string {
	return formatTimecode(seconds, ".")
}

func formatTimecode(seconds float64, msSep string) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(seconds*1000 + 0.5)
	ms := totalMs % 1000
	totalSeconds := totalMs / 1000
	s := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	m := totalMinutes % 60
	h := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, msSep, ms)
}

// jsonEntry is one row of the documented JSON output form.
type jsonEntry struct {
	Index   int     `json:"index"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

type jsonDocument struct {
	Version  int         `json:"version"`
	Language string      `json:"language"`
	Duration float64     `json:"duration"`
	Engine   string      `json:"engine"`
	Entries  []jsonEntry `json:"entries"`
}

// WriteJSON renders entries in the documented
// {version, language, duration, engine, entries} wire form.
func WriteJSON(entries []CaptionEntry, language, engine string) ([]byte, error) {
	doc := jsonDocument{Version: 1, Language: language, Engine: engine}
	var duration float64
	for i, e := range entries {
		doc.Entries = append(doc.Entries, jsonEntry{Index: i, Start: e.Start, End: e.End, Text: e.Text, Speaker: e.Speaker})
		if e.End > duration {
			duration = e.End
		}
	}
	doc.Duration = duration
	return json.MarshalIndent(doc, "", "  ")
}

// WritePlainText renders speaker-labeled plain-text blocks, one entry per
// paragraph.
func WritePlainText(entries []CaptionEntry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Speaker != "" {
			fmt.Fprintf(&b, "%s: %s\n\n", e.Speaker, e.Text)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", e.Text)
	}
	return b.String()
}
