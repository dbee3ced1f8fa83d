package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"rekapbot/models"
)

// ParsedTeams is the result of parsing a recap message.
type ParsedTeams struct {
	TeamK models.Roster
	TeamB models.Roster
}

// HasEntries reports whether at least one roster line parsed.
func (p *ParsedTeams) HasEntries() bool {
	return len(p.TeamK) > 0 || len(p.TeamB) > 0
}

// playerLinePattern matches "<name> <amount>[k] [LF] [P]" with the flags in
// any order and case. The amount may carry grouping separators.
var playerLinePattern = regexp.MustCompile(`(?i)^([\w\s]+?)\s+([\d.,]+k?)\s*((?:LF|P|\s)*)$`)

// ParseRecap scans a free-text message for "K:" / "B:" team markers and
// collects the roster lines that follow each marker. Lines that do not match
// the grammar are skipped; the parse is best-effort. Returns nil only when
// neither marker appears.
func ParseRecap(text string) *ParsedTeams {
	teams := &ParsedTeams{}
	var current *models.Roster
	markerSeen := false

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)

		switch strings.ToUpper(line) {
		case "K:":
			current = &teams.TeamK
			markerSeen = true
			continue
		case "B:":
			current = &teams.TeamB
			markerSeen = true
			continue
		}

		if current == nil || line == "" {
			continue
		}

		match := playerLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		amount, ok := parseAmount(match[2])
		if !ok {
			continue
		}

		flags := strings.Fields(strings.ToUpper(match[3]))
		entry := models.PlayerEntry{
			Name:      strings.TrimSpace(match[1]),
			Amount:    amount,
			IsLastWin: containsFlag(flags, "LF"),
			IsPending: containsFlag(flags, "P"),
		}
		*current = append(*current, entry)
	}

	if !markerSeen {
		return nil
	}
	return teams
}

// parseAmount normalizes a stake token. A trailing "k" multiplies by 1000
// ("5k" -> 5000, "2.5k" -> 2500); otherwise "." and "," are treated as
// grouping separators ("10.000" -> 10000).
func parseAmount(raw string) (int64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))

	if strings.HasSuffix(s, "k") {
		s = strings.ReplaceAll(strings.TrimSuffix(s, "k"), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int64(math.Round(f * 1000)), true
	}

	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

// FormatTally renders the running tally for a recap: both team totals and,
// when they differ, which team still needs how much to equalize.
func FormatTally(totalK, totalB int64) string {
	var b strings.Builder
	b.WriteString("Current recap\n")
	fmt.Fprintf(&b, "K: %s\n", FormatAmount(totalK))
	fmt.Fprintf(&b, "B: %s\n", FormatAmount(totalB))

	if totalK != totalB {
		trailing, deficit := "K", totalB-totalK
		if totalK > totalB {
			trailing, deficit = "B", totalK-totalB
		}
		fmt.Fprintf(&b, "Team %s needs %s to equalize\n", trailing, FormatAmount(deficit))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatAmount renders an int64 amount with dot grouping separators,
// matching the notation used in recap messages.
func FormatAmount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
