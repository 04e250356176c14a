package grid

import (
	"strconv"
	"strings"
)

const keySep = ","

// Key encodes a grid coordinate as "x,y".
func Key(x, y int) string {
	return strconv.Itoa(x) + keySep + strconv.Itoa(y)
}

// ParseKey decodes a key produced by Key. Parsing is permissive: a key
// without a separator yields (0, 0), and each part is read as the longest
// leading integer, defaulting to 0. Two malformed keys can therefore
// collide on (0, 0).
func ParseKey(key string) (int, int) {
	parts := strings.Split(key, keySep)
	if len(parts) < 2 {
		return 0, 0
	}
	return leadingInt(parts[0]), leadingInt(parts[1])
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
