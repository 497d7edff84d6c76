package captions

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var inlineTagPattern = regexp.MustCompile(`<[^>]*>`)

// ParseSRT parses a SubRip (.srt) file body into caption entries.
func ParseSRT(content string) ([]CaptionEntry, error) {
	blocks := splitBlocks(content)
	entries := make([]CaptionEntry, 0, len(blocks))
	for _, block := range blocks {
		lines := nonEmptyLines(block)
		if len(lines) < 2 {
			continue
		}
		timecodeLine := lines[0]
		if strings.Contains(lines[0], "-->") {
			// no index line present
		} else if len(lines) >= 2 && strings.Contains(lines[1], "-->") {
			timecodeLine = lines[1]
			lines = lines[1:]
		} else {
			continue
		}
		start, end, err := parseSRTTimecodeLine(timecodeLine)
		if err != nil {
			return nil, err
		}
		text := strings.Join(lines[1:], "\n")
		entries = append(entries, CaptionEntry{
			ID:    uuid.NewString(),
			Start: start,
			End:   end,
			Text:  stripInlineTags(text),
		})
	}
	SortEntries(entries)
	return entries, nil
}

// ParseVTT parses a WebVTT (.vtt) file body into caption entries,
// skipping the header and any NOTE blocks.
func ParseVTT(content string) ([]CaptionEntry, error) {
	blocks := splitBlocks(content)
	entries := make([]CaptionEntry, 0, len(blocks))
	for i, block := range blocks {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		if i == 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
			lines = lines[1:]
		}
		if len(lines) == 0 {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(lines[0]), "NOTE") {
			continue
		}
		timecodeIdx := 0
		if !strings.Contains(lines[0], "-->") {
			if len(lines) < 2 || !strings.Contains(lines[1], "-->") {
				continue
			}
			timecodeIdx = 1
		}
		start, end, err := parseVTTTimecodeLine(lines[timecodeIdx])
		if err != nil {
			return nil, err
		}
		text := strings.Join(lines[timecodeIdx+1:], "\n")
		if text == "" {
			continue
		}
		entries = append(entries, CaptionEntry{
			ID:    uuid.NewString(),
			Start: start,
			End:   end,
			Text:  stripInlineTags(text),
		})
	}
	SortEntries(entries)
	return entries, nil
}

func stripInlineTags(s string) string {
	return inlineTagPattern.ReplaceAllString(s, "")
}

func splitBlocks(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(normalized, "\n\n")
}

func nonEmptyLines(block string) []string {
	scanner := bufio.NewScanner(strings.NewReader(block))
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseSRTTimecodeLine parses "HH:MM:SS,mmm --> HH:MM:SS,mmm".
func parseSRTTimecodeLine(line string) (start, end float64, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("captions: malformed SRT timecode line %q", line)
	}
	start, err = parseSRTTimecode(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseSRTTimecode(strings.TrimSpace(strings.Fields(parts[1])[0]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseSRTTimecode(tc string) (float64, error) {
	tc = strings.ReplaceAll(tc, ",", ".")
	return parseHMSTimecode(tc)
}

// parseVTTTimecodeLine parses "HH:MM:SS.mmm --> HH:MM:SS.mmm" or the
// shorter "MM:SS.mmm --> MM:SS.mmm" form.
func parseVTTTimecodeLine(line string) (start, end float64, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("captions: malformed VTT timecode line %q", line)
	}
	start, err = parseHMSTimecode(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseHMSTimecode(strings.TrimSpace(strings.Fields(parts[1])[0]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseHMSTimecode accepts both "HH:MM:SS.mmm" and "MM:SS.mmm".
func parseHMSTimecode(tc string) (float64, error) {
	fields := strings.Split(tc, ":")
	var hours, minutes int
	var secondsField string
	switch len(fields) {
	case 3:
		h, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("captions: invalid hours in %q: %w", tc, err)
		}
		m, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("captions: invalid minutes in %q: %w", tc, err)
		}
		hours, minutes, secondsField = h, m, fields[2]
	case 2:
		m, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("captions: invalid minutes in %q: %w", tc, err)
		}
		minutes, secondsField = m, fields[1]
	default:
		return 0, fmt.Errorf("captions: unrecognized timecode %q", tc)
	}
	seconds, err := strconv.ParseFloat(secondsField, 64)
	if err != nil {
		return 0, fmt.Errorf("captions: invalid seconds in %q: %w", tc, err)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}
