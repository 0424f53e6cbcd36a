package sampling

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// ErrStrataInvalid blocks a stratified draw while any stratum fails validation.
var ErrStrataInvalid = errors.New("stratified sample blocked: fix invalid sample sizes first")

// Draw selects a sample from population according to cfg.
//
// Systematic sampling walks population in the order given, so the result
// depends on the active sort. Stratified sampling draws every stratum of
// every level independently from the same population and returns the
// union, deduplicated on row content over headers, in the order drawn.
func Draw(cfg Config, population []table.Row, headers []string, rng *rand.Rand) ([]table.Row, error) {
	switch cfg.Method {
	case MethodRandom, "":
		return pick(population, cfg.RandomTarget(len(population)), rng), nil
	case MethodSystematic:
		return systematic(population, cfg.SystematicInterval), nil
	case MethodStratified:
		return stratified(cfg.Levels, population, headers, rng)
	}
	return nil, fmt.Errorf("unknown sampling method %q", cfg.Method)
}

func systematic(population []table.Row, k int) []table.Row {
	if k < 1 {
		return nil
	}
	out := make([]table.Row, 0, len(population)/k+1)
	for i := 0; i < len(population); i += k {
		out = append(out, population[i])
	}
	return out
}

// pick draws n distinct rows uniformly with a partial Fisher-Yates shuffle.
func pick(rows []table.Row, n int, rng *rand.Rand) []table.Row {
	n = clamp(n, len(rows))
	if n == 0 {
		return nil
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	out := make([]table.Row, n)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = rows[idx[i]]
	}
	return out
}

// CheckStrata validates every stratum size against its membership in
// population, the counts a draw would use.
func CheckStrata(levels []Level, population []table.Row) []StratumError {
	var out []StratumError
	for i := range levels {
		l := levels[i].clone()
		l.recountOnly(population)
		out = append(out, l.errors()...)
	}
	return out
}

// recountOnly refreshes counts from current membership without touching
// sizes or the strata list, then revalidates.
func (l *Level) recountOnly(population []table.Row) {
	l.normalize()
	members := l.Members(population)
	for i := range l.Categorical {
		l.Categorical[i].Count = len(members[i])
	}
	for i := range l.Numeric {
		l.Numeric[i].Count = len(members[i])
	}
	l.validate()
}

func stratified(levels []Level, population []table.Row, headers []string, rng *rand.Rand) ([]table.Row, error) {
	if errs := CheckStrata(levels, population); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrStrataInvalid, errs[0])
	}
	var candidates []table.Row
	for i := range levels {
		l := levels[i].clone()
		l.normalize()
		if l.Unset() {
			continue
		}
		members := l.Members(population)
		for j, group := range members {
			size := l.sizeAt(j)
			candidates = append(candidates, pick(group, ResolveSize(size, len(group)), rng)...)
		}
	}
	seen := make(map[string]struct{}, len(candidates))
	out := make([]table.Row, 0, len(candidates))
	for _, r := range candidates {
		k := table.RowKey(r, headers)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

func (l *Level) sizeAt(i int) SampleSize {
	if l.ColumnType == table.Numeric {
		return l.Numeric[i].SampleSize
	}
	return l.Categorical[i].SampleSize
}
