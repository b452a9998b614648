// Package coins maps task effort to coin rewards and splits rewards across
// the people who share a task.
package coins

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dukerupert/choreboard/internal/assign"
)

const (
	MinEffort = 1
	MaxEffort = 5
)

// Policy maps an effort level to a coin amount.
type Policy map[int]int

// Default returns the stock effort table.
func Default() Policy {
	return Policy{1: 5, 2: 10, 3: 15, 4: 20, 5: 25}
}

// For returns the coin value of a task with the given effort. Missing or
// invalid entries fall back to effort*5.
func (p Policy) For(effort int) int {
	if v, ok := p[effort]; ok && v >= 0 && effort >= MinEffort && effort <= MaxEffort {
		return v
	}
	if effort < 0 {
		return 0
	}
	return effort * 5
}

// Validate rejects tables with keys outside 1-5 or negative amounts.
func (p Policy) Validate() error {
	for effort, amount := range p {
		if effort < MinEffort || effort > MaxEffort {
			return fmt.Errorf("effort %d out of range %d-%d", effort, MinEffort, MaxEffort)
		}
		if amount < 0 {
			return fmt.Errorf("coins for effort %d must be >= 0", effort)
		}
	}
	return nil
}

// MarshalJSON encodes the table with string keys, e.g. {"1":5}.
func (p Policy) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(p))
	for k, v := range p {
		m[strconv.Itoa(k)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a table with string keys. Keys that are not integers
// are dropped so they fall back to the default formula.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Policy, len(m))
	for k, v := range m {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[n] = v
	}
	*p = out
	return nil
}

// Share returns the coins userID earns for completing a task worth total
// under policy p. Splits use floor division; remainders are not paid out.
// Overseers outside the assignee set receive an even share.
func Share(p assign.Policy, total int, userID int64) int {
	switch p := p.(type) {
	case assign.FirstCome:
		return total
	case assign.Shared:
		return evenShare(total, len(p.Assignees))
	case assign.Custom:
		pct, ok := p.Percentages[userID]
		if !ok {
			return evenShare(total, len(p.Percentages))
		}
		return total * pct / 100
	default:
		return 0
	}
}

func evenShare(total, n int) int {
	if n <= 0 {
		return total
	}
	return total / n
}
