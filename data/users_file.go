package data

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ParseUsers reads accounts in users file format, one per line:
//
//	id:mask[,mask...]:flags:level[:bcrypt-hash]
//
// The level is free text, for example "master" or "100".
// Blank lines and lines starting with # are skipped.
func ParseUsers(r io.Reader) ([]*Account, error) {
	var accounts []*Account
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.SplitN(line, ":", 5)
		if len(fields) < 4 {
			return nil, errors.Errorf("data: users line %d: expected "+
				"id:mask:flags:level", lineNo)
		}

		a, err := NewAccount(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "data: users line %d", lineNo)
		}
		if seen[a.ID] {
			return nil, errors.Errorf("data: users line %d: duplicate id %s",
				lineNo, a.ID)
		}
		seen[a.ID] = true

		for _, mask := range strings.Split(fields[1], ",") {
			if mask = strings.TrimSpace(mask); len(mask) > 0 {
				a.AddMask(mask)
			}
		}

		a.Flags = fields[2]
		a.Level = fields[3]
		if len(fields) == 5 && len(fields[4]) > 0 {
			a.Password = []byte(fields[4])
		}

		accounts = append(accounts, a)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "data: reading users")
	}
	return accounts, nil
}
