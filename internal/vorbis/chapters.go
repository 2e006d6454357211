package vorbis

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/simonhull/audiotag/internal/types"
)

// Chapters extracts chapters from CHAPTER comments:
//
//	CHAPTER001=00:00:00.000
//	CHAPTER001NAME=Introduction
//	CHAPTER002=00:05:23.500
//	CHAPTER002NAME=The Beginning
//
// Chapters without a valid timestamp are dropped. The last chapter ends at
// duration, which may be zero when unknown.
func (c *Comments) Chapters(duration time.Duration) []types.Chapter {
	type mark struct {
		number int
		start  time.Duration
		title  string
		timed  bool
	}
	marks := make(map[int]*mark)
	get := func(n int) *mark {
		if marks[n] == nil {
			marks[n] = &mark{number: n}
		}
		return marks[n]
	}

	for key, values := range c.Fields.All() {
		if !strings.HasPrefix(key, "CHAPTER") || len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0].Value)
		rest := strings.TrimPrefix(key, "CHAPTER")

		if numStr, ok := strings.CutSuffix(rest, "NAME"); ok {
			if n, err := strconv.Atoi(numStr); err == nil {
				get(n).title = value
			}
			continue
		}

		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		start, err := parseChapterTimestamp(value)
		if err != nil {
			continue
		}
		m := get(n)
		m.start = start
		m.timed = true
	}

	var list []mark
	for _, m := range marks {
		if m.timed {
			list = append(list, *m)
		}
	}
	if len(list) == 0 {
		return nil
	}
	slices.SortFunc(list, func(a, b mark) int {
		return cmp.Compare(a.number, b.number)
	})

	chapters := make([]types.Chapter, len(list))
	for i, m := range list {
		end := duration
		if i < len(list)-1 {
			end = list[i+1].start
		}
		title := m.title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", m.number)
		}
		chapters[i] = types.Chapter{Index: i + 1, Title: title, StartTime: m.start, EndTime: end}
	}
	return chapters
}

// parseChapterTimestamp parses HH:MM:SS.mmm, MM:SS.mmm or SS.mmm.
func parseChapterTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(ts, ":")

	var hours, minutes int
	var seconds float64
	var err error

	switch len(parts) {
	case 3:
		if hours, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid hours in timestamp: %s", ts)
		}
		parts = parts[1:]
		fallthrough
	case 2:
		if minutes, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid minutes in timestamp: %s", ts)
		}
		parts = parts[1:]
		fallthrough
	case 1:
		if seconds, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds in timestamp: %s", ts)
		}
	default:
		return 0, fmt.Errorf("invalid timestamp format: %s", ts)
	}

	if hours < 0 || minutes < 0 || minutes >= 60 || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("timestamp values out of range: %s", ts)
	}

	total := float64(hours*3600+minutes*60) + seconds
	return time.Duration(total * float64(time.Second)), nil
}
