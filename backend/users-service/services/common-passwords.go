package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CommonPasswords is a case-insensitive set of passwords too common to accept.
// A nil set rejects nothing.
type CommonPasswords struct {
	entries map[string]struct{}
}

// ReadCommonPasswords parses one password per line. Blank lines and lines
// starting with '#' are skipped.
func ReadCommonPasswords(r io.Reader) (*CommonPasswords, error) {
	set := &CommonPasswords{entries: map[string]struct{}{}}
	lines := bufio.NewScanner(r)
	for lines.Scan() {
		entry := strings.TrimSpace(lines.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		set.entries[strings.ToLower(entry)] = struct{}{}
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func LoadCommonPasswords(path string) (*CommonPasswords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set, err := ReadCommonPasswords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return set, nil
}

func (c *CommonPasswords) Contains(password string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[strings.ToLower(password)]
	return ok
}

func (c *CommonPasswords) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
