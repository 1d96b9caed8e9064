// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clients

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var codeRe = regexp.MustCompile(`^CL(\d+)`)

// code returns the digits of a leading CL<digits> code without leading
// zeros, and whether the name has one.
func code(name string) (string, bool) {
	m := codeRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	digits := strings.TrimLeft(m[1], "0")
	return digits, true
}

// compareCodes orders two digit strings numerically without overflow.
func compareCodes(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Sort orders clients by the number in a leading CL<digits> code, with
// coded names before uncoded ones. Ties and uncoded names are ordered by
// Portuguese collation.
func Sort(list []Client) {
	col := collate.New(language.BrazilianPortuguese)

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Name, list[j].Name
		ca, okA := code(a)
		cb, okB := code(b)

		switch {
		case okA && okB:
			if c := compareCodes(ca, cb); c != 0 {
				return c < 0
			}
		case okA:
			return true
		case okB:
			return false
		}
		return col.CompareString(a, b) < 0
	})
}
