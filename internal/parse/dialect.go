package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Header dialects seen in real exports, tried in order. First match
// wins, so a line is always read the same way.
//
//	[1/16/19, 10:13:43 PM] Maria: text      bracket, slash date
//	[16.01.19, 22:13:43] Jakob: text        bracket, dot date
//	16.01.19, 22:13 - Jakob: text           dash separator
//
// Seconds and AM/PM are optional everywhere. A matching shape whose
// remainder has no "Name: " prefix is a system line.
type dialect struct {
	name  string
	re    *regexp.Regexp
	slash bool // slash dates honor the configured day/month order
}

var dialects = []dialect{
	{
		name:  "bracket-slash",
		re:    regexp.MustCompile(`^\[(?P<d1>\d{1,2})/(?P<d2>\d{1,2})/(?P<y>\d{2,4}),?\s+(?P<h>\d{1,2}):(?P<min>\d{2})(?::(?P<s>\d{2}))?\s?(?P<ap>[APap][Mm])?\]\s?(?P<rest>.*)$`),
		slash: true,
	},
	{
		name: "bracket-dot",
		re:   regexp.MustCompile(`^\[(?P<d1>\d{1,2})\.(?P<d2>\d{1,2})\.(?P<y>\d{2,4}),?\s+(?P<h>\d{1,2}):(?P<min>\d{2})(?::(?P<s>\d{2}))?\s?(?P<ap>[APap][Mm])?\]\s?(?P<rest>.*)$`),
	},
	{
		name: "dash",
		re:   regexp.MustCompile(`^(?P<d1>\d{1,2})(?P<sep>[./])(?P<d2>\d{1,2})[./](?P<y>\d{2,4}),?\s+(?P<h>\d{1,2}):(?P<min>\d{2})(?::(?P<s>\d{2}))?\s?(?P<ap>[APap][Mm])?\s?-\s?(?P<rest>.*)$`),
	},
}

type headerKind int

const (
	headerNone headerKind = iota
	headerMessage
	headerSystem
	headerBadTime
)

type header struct {
	ts     time.Time
	sender string
	body   string
}

func (p *Parser) matchHeader(line string) (header, headerKind) {
	for _, d := range dialects {
		m := d.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		parts := captures(d.re, m)
		slash := d.slash || parts["sep"] == "/"
		ts, err := p.buildTime(parts, slash)
		if err != nil {
			return header{}, headerBadTime
		}
		sender, body, ok := splitSender(parts["rest"])
		if !ok {
			return header{ts: ts, body: parts["rest"]}, headerSystem
		}
		return header{ts: ts, sender: sender, body: body}, headerMessage
	}
	return header{}, headerNone
}

func captures(re *regexp.Regexp, m []string) map[string]string {
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" && m[i] != "" {
			out[name] = m[i]
		}
	}
	return out
}

// splitSender splits "Name: text" into sender and body. Senders never
// contain a colon, so a colon in the candidate rejects the split. The
// "~" decoration some exports put before group member names is dropped.
func splitSender(rest string) (string, string, bool) {
	var sender, body string
	if idx := strings.Index(rest, ": "); idx >= 0 {
		sender, body = rest[:idx], rest[idx+2:]
	} else if strings.HasSuffix(rest, ":") {
		sender, body = rest[:len(rest)-1], ""
	} else {
		return "", "", false
	}
	sender = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sender), "~"))
	if sender == "" || strings.Contains(sender, ":") {
		return "", "", false
	}
	return sender, body, true
}

var errBadTimestamp = errors.New("bad timestamp")

// buildTime assembles a local timestamp from captured header fields.
// Dot dates are day-first. Slash dates follow the configured order and
// fall back to the swapped reading when the primary one is invalid.
func (p *Parser) buildTime(parts map[string]string, slash bool) (time.Time, error) {
	year := atoi(parts["y"])
	if year < 100 {
		if year >= 70 {
			year += 1900
		} else {
			year += 2000
		}
	}

	hour := atoi(parts["h"])
	minute := atoi(parts["min"])
	sec := atoi(parts["s"])
	switch strings.ToUpper(parts["ap"]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 12 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, errBadTimestamp
	}

	day, month := atoi(parts["d1"]), atoi(parts["d2"])
	if slash && p.order == MonthFirst {
		day, month = month, day
	}

	if t, ok := makeDate(year, month, day, hour, minute, sec); ok {
		return t, nil
	}
	if t, ok := makeDate(year, day, month, hour, minute, sec); ok {
		return t, nil
	}
	return time.Time{}, errBadTimestamp
}

// makeDate builds a date and rejects values time.Date would silently
// normalize, like Feb 30.
func makeDate(y, mo, d, h, min, s int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, h, min, s, 0, time.Local)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
